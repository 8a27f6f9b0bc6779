package model

import (
	"encoding/json"
	"maps"
	"slices"
)

type Assignment struct {
	Professor string   `json:"professor"`
	Room      string   `json:"room"`
	TimeSlot  TimeSlot `json:"timeSlot"`
}

type slotKey struct {
	owner string // Room or professor id
	slot  TimeSlot
}

// Schedule maps courses to assignments. Room and professor usage per time slot are counted
// rather than flagged, so soft-scored schedules with double bookings are representable too.
type Schedule struct {
	entries        map[string]Assignment
	roomUsage      map[slotKey]int
	professorUsage map[slotKey]int
}

func NewSchedule() *Schedule {
	return &Schedule{
		entries:        make(map[string]Assignment),
		roomUsage:      make(map[slotKey]int),
		professorUsage: make(map[slotKey]int),
	}
}

// Assign places the course, replacing any previous assignment it had.
func (schedule *Schedule) Assign(course string, assignment Assignment) {
	schedule.Unassign(course)
	schedule.entries[course] = assignment
	schedule.roomUsage[slotKey{assignment.Room, assignment.TimeSlot}]++
	schedule.professorUsage[slotKey{assignment.Professor, assignment.TimeSlot}]++
}

func (schedule *Schedule) Unassign(course string) {
	assignment, ok := schedule.entries[course]
	if !ok {
		return
	}
	delete(schedule.entries, course)
	decrement(schedule.roomUsage, slotKey{assignment.Room, assignment.TimeSlot})
	decrement(schedule.professorUsage, slotKey{assignment.Professor, assignment.TimeSlot})
}

func (schedule *Schedule) Get(course string) (Assignment, bool) {
	assignment, ok := schedule.entries[course]
	return assignment, ok
}

func (schedule *Schedule) Len() int {
	return len(schedule.entries)
}

// RoomUsage returns how many courses occupy the room during the slot.
func (schedule *Schedule) RoomUsage(room string, slot TimeSlot) int {
	return schedule.roomUsage[slotKey{room, slot}]
}

// ProfessorUsage returns how many courses the professor teaches during the slot.
func (schedule *Schedule) ProfessorUsage(professor string, slot TimeSlot) int {
	return schedule.professorUsage[slotKey{professor, slot}]
}

// Courses returns the scheduled courses in lexicographic order.
func (schedule *Schedule) Courses() []string {
	return slices.Sorted(maps.Keys(schedule.entries))
}

func (schedule *Schedule) Entries() map[string]Assignment {
	return maps.Clone(schedule.entries)
}

func (schedule *Schedule) Clone() *Schedule {
	return &Schedule{
		entries:        maps.Clone(schedule.entries),
		roomUsage:      maps.Clone(schedule.roomUsage),
		professorUsage: maps.Clone(schedule.professorUsage),
	}
}

func (schedule *Schedule) MarshalJSON() ([]byte, error) {
	return json.Marshal(schedule.entries)
}

func (schedule *Schedule) UnmarshalJSON(data []byte) error {
	var entries map[string]Assignment
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	*schedule = *NewSchedule()
	for course, assignment := range entries {
		schedule.Assign(course, assignment)
	}
	return nil
}

func decrement(usage map[slotKey]int, key slotKey) {
	if usage[key] <= 1 {
		delete(usage, key)
		return
	}
	usage[key]--
}
