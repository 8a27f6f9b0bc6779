package model

import (
	"math"

	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
)

type unassignableError struct {
}

func (err unassignableError) Error() string {
	return "not all courses can be matched to a distinct resource"
}

// Verify replays every entry of a finished schedule, in course input order, against the hard checks.
// Enrollment is not a hard rule, so it's not checked.
func Verify(schedule *Schedule, modelInput ModelInput) bool {
	inst, err := newInstance(modelInput)
	if err != nil || schedule == nil || schedule.Len() != len(inst.courses) {
		return false
	}
	evaluator := newPredicateEvaluator(inst)

	replayed := NewSchedule()
	for course, id := range inst.courses {
		assignment, ok := schedule.Get(id)
		if !ok {
			return false
		}

		professor, knownProfessor := inst.professorIndex[assignment.Professor]
		room, knownRoom := inst.roomIndex[assignment.Room]
		slot, knownSlot := inst.slotIndex[assignment.TimeSlot]
		if !knownProfessor || !knownRoom || !knownSlot {
			return false
		}

		// Check that:
		// - Room honours the fixed-room requirement
		// - Professor is available and not already teaching in the slot
		// - Room is not already taken in the slot
		// - No no-overlap partner shares the slot
		if !evaluator.Valid(replayed, course, professor, room, slot) {
			return false
		}
		replayed.Assign(id, assignment)
	}
	return true
}

// EnergySavings is the share of the baseline energy (every room booked in every slot) the schedule does not use.
func EnergySavings(schedule *Schedule, modelInput ModelInput) (float64, error) {
	inst, err := newInstance(modelInput)
	if err != nil {
		return 0, err
	}
	return energySavings(inst.scheduleEnergy(schedule), inst.baselineEnergy())
}

func energySavings(used, baseline uint64) (float64, error) {
	if baseline == 0 {
		return 0, ErrZeroBaseline
	}
	savings := (float64(baseline) - float64(used)) / float64(baseline) * 100
	return math.Round(savings*100) / 100, nil
}

// scheduleEnergy sums the capacity of the room behind every entry
func (inst *instance) scheduleEnergy(schedule *Schedule) uint64 {
	if schedule == nil {
		return 0
	}
	return lo.SumBy(lo.Values(schedule.Entries()), func(assignment Assignment) uint64 {
		room, ok := inst.roomIndex[assignment.Room]
		if !ok {
			return 0
		}
		return uint64(inst.rooms[room].Capacity)
	})
}

// matchingPrecheck looks for a necessary condition of feasibility: every course must get a distinct
// (room, slot) cell and a distinct (professor, slot) cell among the ones it could statically use.
func matchingPrecheck(inst *instance, evaluator predicateEvaluator) error {
	roomCells := make([][2]int, 0, len(inst.rooms)*len(inst.slots))
	professorCells := make([][2]int, 0, len(inst.professors)*len(inst.slots))
	for slot := range inst.slots {
		for room := range inst.rooms {
			roomCells = append(roomCells, [2]int{room, slot})
		}
		for _, professor := range inst.availableAt[slot] {
			professorCells = append(professorCells, [2]int{professor, slot})
		}
	}

	courses := lo.Range(len(inst.courses))
	roomNeighbors := func(course int, cell [2]int) bool {
		return evaluator.RoomAllowed(course, cell[0]) && len(inst.availableAt[cell[1]]) > 0
	}
	professorNeighbors := func(course int, cell [2]int) bool {
		return lo.ContainsBy(lo.Range(len(inst.rooms)), func(room int) bool { return evaluator.RoomAllowed(course, room) })
	}

	if err := assignCells(courses, roomCells, roomNeighbors); err != nil {
		return err
	}
	return assignCells(courses, professorCells, professorNeighbors)
}

func assignCells(courses []int, cells [][2]int, related func(course int, cell [2]int) bool) error {
	if len(courses) == 0 {
		return nil
	} else if len(cells) < len(courses) {
		return unassignableError{}
	}

	// Build neighbors predicate based on relationships
	neighbors := func(courseAny any, cellAny any) (bool, error) {
		return related(courseAny.(int), cellAny.([2]int)), nil
	}

	// Transform courses and cells to slices of any
	coursesAny, cellsAny := lo.Map(courses, func(course int, _ int) any { return course }), lo.Map(cells, func(cell [2]int, _ int) any { return cell })

	graph, err := bipartitegraph.NewBipartiteGraph(coursesAny, cellsAny, neighbors)
	if err != nil {
		return err
	}

	// Check the matching is a maximum one
	if len(graph.LargestMatching()) < len(courses) {
		return unassignableError{}
	}
	return nil
}
