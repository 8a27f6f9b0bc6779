package model

import (
	"slices"

	"github.com/samber/lo"
)

// instance is the integer-indexed view of a ModelInput shared by every engine
type instance struct {
	input ModelInput

	courses    []string
	professors []string
	rooms      []Room
	slots      []TimeSlot

	courseIndex    map[string]int
	professorIndex map[string]int
	roomIndex      map[string]int
	slotIndex      map[TimeSlot]int

	fixedRoom   []int    // Required room per course, -1 if none
	available   [][]bool // available[professor][slot]
	availableAt [][]int  // Professors available per slot, in input order
	partners    [][]int  // No-overlap partners per course, in constraint order
	pairs       [][2]int // No-overlap pairs
	students    []int    // Enrollment per course
	seats       []int    // Seats taken from the room per course (genetic engine)
}

func newInstance(input ModelInput) (*instance, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	inst := &instance{
		input:      input,
		courses:    lo.Map(input.Courses, func(course Course, _ int) string { return course.Id }),
		professors: lo.Map(input.Professors, func(professor Professor, _ int) string { return professor.Id }),
		rooms:      slices.Clone(input.Rooms),
		slots:      slices.Clone(input.TimeSlots),
	}

	inst.courseIndex = indexOf(inst.courses)
	inst.professorIndex = indexOf(inst.professors)
	inst.roomIndex = indexOf(lo.Map(inst.rooms, func(room Room, _ int) string { return room.Id }))
	inst.slotIndex = indexOf(inst.slots)

	//** Fixed rooms, enrollment and seats
	inst.fixedRoom = make([]int, len(inst.courses))
	inst.students = make([]int, len(inst.courses))
	inst.seats = make([]int, len(inst.courses))
	for course, id := range inst.courses {
		inst.fixedRoom[course] = -1
		if room, ok := input.Constraints.RoomConstraints[id]; ok {
			inst.fixedRoom[course] = inst.roomIndex[room]
		}
		inst.students[course] = input.Courses[course].Students
		inst.seats[course] = input.Constraints.RoomCapacity[id]
	}

	//** Availability
	inst.available = make([][]bool, len(inst.professors))
	inst.availableAt = make([][]int, len(inst.slots))
	for professor, definition := range input.Professors {
		inst.available[professor] = make([]bool, len(inst.slots))
		for _, slot := range definition.Availability {
			inst.available[professor][inst.slotIndex[slot]] = true
		}
	}
	for slot := range inst.slots {
		for professor := range inst.professors {
			if inst.available[professor][slot] {
				inst.availableAt[slot] = append(inst.availableAt[slot], professor)
			}
		}
	}

	//** No-overlap pairs
	inst.partners = make([][]int, len(inst.courses))
	for _, pair := range input.Constraints.NoOverlap {
		course1, course2 := inst.courseIndex[pair[0]], inst.courseIndex[pair[1]]
		inst.pairs = append(inst.pairs, [2]int{course1, course2})
		if !slices.Contains(inst.partners[course1], course2) {
			inst.partners[course1] = append(inst.partners[course1], course2)
		}
		if !slices.Contains(inst.partners[course2], course1) {
			inst.partners[course2] = append(inst.partners[course2], course1)
		}
	}

	return inst, nil
}

func (inst *instance) assignment(professor, room, slot int) Assignment {
	return Assignment{
		Professor: inst.professors[professor],
		Room:      inst.rooms[room].Id,
		TimeSlot:  inst.slots[slot],
	}
}

// baselineEnergy is the energy spent if every room were booked during every slot
func (inst *instance) baselineEnergy() uint64 {
	return lo.SumBy(inst.rooms, func(room Room) uint64 { return uint64(room.Capacity) }) * uint64(len(inst.slots))
}

// unscheduled lists, in input order, the courses that have no entry in the schedule
func (inst *instance) unscheduled(schedule *Schedule) []string {
	return lo.Filter(inst.courses, func(course string, _ int) bool {
		_, ok := schedule.Get(course)
		return !ok
	})
}

func indexOf[T comparable](values []T) map[T]int {
	return lo.SliceToMap(lo.Range(len(values)), func(i int) (T, int) { return values[i], i })
}
