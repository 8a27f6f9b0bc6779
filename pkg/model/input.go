package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"reflect"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

var (
	ErrMalformedInput = errors.New("malformed input")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

type TimeSlot string

type Course struct {
	Id       string `json:"id"`
	Students int    `json:"students,omitempty"` // Zero means enrollment is not tracked
}

type Professor struct {
	Id           string     `json:"id"`
	Availability []TimeSlot `json:"availability"`
}

type Room struct {
	Id       string `json:"id"`
	Capacity int    `json:"capacity"`
}

type Constraints struct {
	RoomConstraints map[string]string `json:"roomConstraints,omitempty"` // Course -> required room
	NoOverlap       [][2]string       `json:"noOverlap,omitempty"`       // Unordered pairs of courses that cannot share a time slot
	RoomCapacity    map[string]int    `json:"roomCapacity,omitempty"`    // Course -> seats it takes from its room (genetic engine only)
}

// ModelInput is a problem instance. It's read-only once handed to a timetabler.
type ModelInput struct {
	Courses     []Course    `json:"courses"`
	Professors  []Professor `json:"professors"`
	Rooms       []Room      `json:"rooms"`
	TimeSlots   []TimeSlot  `json:"timeSlots"`
	Constraints Constraints `json:"constraints"`
}

type RawCourse struct {
	Id       string `mapstructure:"id" validate:"required"`
	Students int    `mapstructure:"students" validate:"gte=0"`
	Room     string `mapstructure:"room"`
}

type RawProfessor struct {
	Id           string   `mapstructure:"id" validate:"required"`
	Availability []string `mapstructure:"availability" validate:"dive,required"`
}

type RawRoom struct {
	Id       string `mapstructure:"id" validate:"required"`
	Capacity int    `mapstructure:"capacity" validate:"gte=0"`
}

type RawConstraints struct {
	RoomConstraints        map[string]string   `mapstructure:"roomConstraints" validate:"dive,keys,required,endkeys,required"`
	ProfessorAvailability  map[string][]string `mapstructure:"professorAvailability" validate:"dive,keys,required,endkeys,dive,required"`
	NoOverlap              [][]string          `mapstructure:"noOverlap" validate:"dive,len=2,dive,required"`
	RoomCapacityConstraint map[string]int      `mapstructure:"roomCapacityConstraints" validate:"dive,keys,required,endkeys,gte=0"`
}

type RawModelInput struct {
	Courses     []RawCourse    `mapstructure:"courses" validate:"dive"`
	Professors  []RawProfessor `mapstructure:"professors" validate:"dive"`
	Rooms       []RawRoom      `mapstructure:"rooms" validate:"dive"`
	TimeSlots   []string       `mapstructure:"timeSlots" validate:"dive,required"`
	Constraints RawConstraints `mapstructure:"constraints"`
}

var rawValidator = validator.New()

func InputFromJson(file string) (ModelInput, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return ModelInput{}, fmt.Errorf("cannot read input file: %w", err)
	}
	return InputFromJsonBytes(bytes)
}

func InputFromJsonBytes(bytes []byte) (ModelInput, error) {
	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return ModelInput{}, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	var rawInput RawModelInput
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: integralNumberHook,
		Result:     &rawInput,
	})
	if err != nil {
		return ModelInput{}, fmt.Errorf("cannot build decoder: %w", err)
	}
	if err := decoder.Decode(inputJson); err != nil {
		return ModelInput{}, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return ProcessRawInput(rawInput)
}

// integralNumberHook rejects JSON numbers with a fractional part bound for integer fields,
// which mapstructure would otherwise truncate.
func integralNumberHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.Float64 {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if number := data.(float64); number != math.Trunc(number) {
			return nil, fmt.Errorf("%v is not an integer", number)
		}
	}
	return data, nil
}

// ProcessRawInput turns a decoded document into a ModelInput. Fixed rooms declared on courses
// and availability declared under constraints are folded into the canonical fields.
func ProcessRawInput(rawInput RawModelInput) (ModelInput, error) {
	if err := rawValidator.Struct(rawInput); err != nil {
		return ModelInput{}, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	input := ModelInput{
		TimeSlots: lo.Map(rawInput.TimeSlots, func(slot string, _ int) TimeSlot { return TimeSlot(slot) }),
		Rooms:     lo.Map(rawInput.Rooms, func(room RawRoom, _ int) Room { return Room{Id: room.Id, Capacity: room.Capacity} }),
		Constraints: Constraints{
			RoomConstraints: make(map[string]string),
			RoomCapacity:    make(map[string]int),
		},
	}

	//** Manage courses and their fixed rooms
	for _, rawCourse := range rawInput.Courses {
		input.Courses = append(input.Courses, Course{Id: rawCourse.Id, Students: rawCourse.Students})
		if rawCourse.Room != "" {
			input.Constraints.RoomConstraints[rawCourse.Id] = rawCourse.Room
		}
	}
	for course, room := range rawInput.Constraints.RoomConstraints {
		if declared, ok := input.Constraints.RoomConstraints[course]; ok && declared != room {
			return ModelInput{}, fmt.Errorf("%w: course \"%v\" requires both room \"%v\" and room \"%v\"", ErrMalformedInput, course, declared, room)
		}
		input.Constraints.RoomConstraints[course] = room
	}

	//** Manage professors' availability
	extraAvailability := rawInput.Constraints.ProfessorAvailability
	for professor := range extraAvailability {
		if !lo.ContainsBy(rawInput.Professors, func(rawProfessor RawProfessor) bool { return rawProfessor.Id == professor }) {
			return ModelInput{}, fmt.Errorf("%w: availability declared for unknown professor \"%v\"", ErrMalformedInput, professor)
		}
	}
	for _, rawProfessor := range rawInput.Professors {
		slots := lo.Uniq(slices.Concat(rawProfessor.Availability, extraAvailability[rawProfessor.Id]))
		input.Professors = append(input.Professors, Professor{
			Id:           rawProfessor.Id,
			Availability: lo.Map(slots, func(slot string, _ int) TimeSlot { return TimeSlot(slot) }),
		})
	}

	//** Manage pairwise constraints
	for _, pair := range rawInput.Constraints.NoOverlap {
		input.Constraints.NoOverlap = append(input.Constraints.NoOverlap, [2]string{pair[0], pair[1]})
	}
	for course, seats := range rawInput.Constraints.RoomCapacityConstraint {
		input.Constraints.RoomCapacity[course] = seats
	}

	if err := input.Validate(); err != nil {
		return ModelInput{}, err
	}
	return input, nil
}

// Validate checks referential integrity. Every engine calls it before searching.
func (input ModelInput) Validate() error {
	malformed := func(format string, args ...any) error {
		return fmt.Errorf("%w: %v", ErrMalformedInput, fmt.Sprintf(format, args...))
	}

	if duplicate, ok := firstDuplicate(lo.Map(input.Courses, func(course Course, _ int) string { return course.Id })); ok {
		return malformed("duplicate course \"%v\"", duplicate)
	}
	if duplicate, ok := firstDuplicate(lo.Map(input.Professors, func(professor Professor, _ int) string { return professor.Id })); ok {
		return malformed("duplicate professor \"%v\"", duplicate)
	}
	if duplicate, ok := firstDuplicate(lo.Map(input.Rooms, func(room Room, _ int) string { return room.Id })); ok {
		return malformed("duplicate room \"%v\"", duplicate)
	}
	if duplicate, ok := firstDuplicate(input.TimeSlots); ok {
		return malformed("duplicate time slot \"%v\"", duplicate)
	}

	courses := lo.SliceToMap(input.Courses, func(course Course) (string, Course) { return course.Id, course })
	rooms := lo.SliceToMap(input.Rooms, func(room Room) (string, bool) { return room.Id, true })
	slots := lo.SliceToMap(input.TimeSlots, func(slot TimeSlot) (TimeSlot, bool) { return slot, true })

	for _, course := range input.Courses {
		if course.Id == "" {
			return malformed("course with empty id")
		} else if course.Students < 0 {
			return malformed("course \"%v\" has a negative student count", course.Id)
		}
	}
	for _, room := range input.Rooms {
		if room.Id == "" {
			return malformed("room with empty id")
		} else if room.Capacity < 0 {
			return malformed("room \"%v\" has a negative capacity", room.Id)
		}
	}
	for _, professor := range input.Professors {
		if professor.Id == "" {
			return malformed("professor with empty id")
		}
		for _, slot := range professor.Availability {
			if !slots[slot] {
				return malformed("professor \"%v\" is available at unknown time slot \"%v\"", professor.Id, slot)
			}
		}
	}

	for course, room := range input.Constraints.RoomConstraints {
		if _, ok := courses[course]; !ok {
			return malformed("room constraint references unknown course \"%v\"", course)
		} else if !rooms[room] {
			return malformed("course \"%v\" requires unknown room \"%v\"", course, room)
		}
	}
	for _, pair := range input.Constraints.NoOverlap {
		for _, course := range pair {
			if _, ok := courses[course]; !ok {
				return malformed("no-overlap pair %v references unknown course \"%v\"", pair, course)
			}
		}
		if pair[0] == pair[1] {
			return malformed("no-overlap pair %v pairs a course with itself", pair)
		}
	}
	for course, seats := range input.Constraints.RoomCapacity {
		if _, ok := courses[course]; !ok {
			return malformed("room capacity constraint references unknown course \"%v\"", course)
		} else if seats < 0 {
			return malformed("course \"%v\" requires a negative capacity", course)
		}
	}

	return nil
}

// ProfessorAvailability returns the professor -> available slots view of the instance.
func (input ModelInput) ProfessorAvailability() map[string][]TimeSlot {
	return lo.SliceToMap(input.Professors, func(professor Professor) (string, []TimeSlot) {
		return professor.Id, professor.Availability
	})
}

func firstDuplicate[T comparable](values []T) (T, bool) {
	seen := make(map[T]bool, len(values))
	for _, value := range values {
		if seen[value] {
			return value, true
		}
		seen[value] = true
	}
	var zero T
	return zero, false
}
