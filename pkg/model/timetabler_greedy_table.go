package model

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// greedyTableTimetabler fills a (course, room, slot) feasibility table and then hands every course
// the first feasible cell nobody took yet. Rooms are visited from the smallest to the largest.
type greedyTableTimetabler struct {
	logger *zap.Logger
}

func NewGreedyTableTimetabler(opts ...Option) Timetabler {
	return &greedyTableTimetabler{logger: buildOptions(opts).logger}
}

func (timetabler *greedyTableTimetabler) Build(ctx context.Context, modelInput ModelInput) (Result, error) {
	start := time.Now()

	inst, err := newInstance(modelInput)
	if err != nil {
		return Result{}, err
	}
	evaluator := newPredicateEvaluator(inst)

	//** Greedy order: smallest rooms first, ties keep input order
	rooms := lo.Range(len(inst.rooms))
	slices.SortStableFunc(rooms, func(room1, room2 int) int {
		return cmp.Compare(inst.rooms[room1].Capacity, inst.rooms[room2].Capacity)
	})

	courses, slots := uint64(len(inst.courses)), uint64(len(inst.slots))
	if courses == 0 || len(rooms) == 0 || slots == 0 {
		return partialResult(inst, NewSchedule(), start, "greedy-table", timetabler.logger), nil
	}
	indexer := newIndexer(courses, uint64(len(rooms)), slots)
	table := make([]bool, indexer.Size())

	// Conflicting courses are only ever marked earlier, since later rows are still empty
	markedAt := func(course, slot int) bool {
		return lo.SomeBy(lo.Range(len(rooms)), func(position int) bool {
			return table[indexer.Index(uint64(course), uint64(position), uint64(slot))]
		})
	}

	//** Build the table
	for course := range inst.courses {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		for position, room := range rooms {
			if !evaluator.Fits(course, room) {
				continue
			}
			for slot := range inst.slots {
				// A course is available whenever at least one professor is
				if len(inst.availableAt[slot]) == 0 {
					continue
				}
				if lo.SomeBy(inst.partners[course], func(partner int) bool { return markedAt(partner, slot) }) {
					continue
				}
				table[indexer.Index(uint64(course), uint64(position), uint64(slot))] = true
			}
		}
	}

	//** Assign greedily, one cell per course
	schedule := NewSchedule()
	for index := range indexer.Size() {
		course, position, slot := indexer.Attributes(index)
		id, room := inst.courses[course], rooms[position]
		if !table[index] || isScheduled(schedule, id) {
			continue
		}
		if schedule.RoomUsage(inst.rooms[room].Id, inst.slots[slot]) > 0 {
			continue
		}

		// Professor occupancy never rejects a cell: a busy professor is double-booked and Verify reports it
		professor, found := lo.Find(inst.availableAt[slot], func(professor int) bool {
			return evaluator.ProfessorFree(schedule, professor, int(slot))
		})
		if !found {
			professor = inst.availableAt[slot][0]
		}
		schedule.Assign(id, inst.assignment(professor, room, int(slot)))
	}

	return partialResult(inst, schedule, start, "greedy-table", timetabler.logger), nil
}

func (timetabler *greedyTableTimetabler) Verify(schedule *Schedule, modelInput ModelInput) bool {
	return Verify(schedule, modelInput)
}

func isScheduled(schedule *Schedule, course string) bool {
	_, ok := schedule.Get(course)
	return ok
}
