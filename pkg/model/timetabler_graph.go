package model

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type traversal int

const (
	breadthFirst traversal = iota
	depthFirst
)

func (order traversal) String() string {
	if order == depthFirst {
		return "depth-first"
	}
	return "breadth-first"
}

// graphTimetabler walks the conflict graph (courses linked by no-overlap pairs) and places each course
// on the first (slot, room, professor) that fits. It never backtracks: a course without such a triple stays unscheduled.
type graphTimetabler struct {
	order  traversal
	logger *zap.Logger
}

func NewBreadthFirstTimetabler(opts ...Option) Timetabler {
	return &graphTimetabler{order: breadthFirst, logger: buildOptions(opts).logger}
}

func NewDepthFirstTimetabler(opts ...Option) Timetabler {
	return &graphTimetabler{order: depthFirst, logger: buildOptions(opts).logger}
}

func (timetabler *graphTimetabler) Build(ctx context.Context, modelInput ModelInput) (Result, error) {
	start := time.Now()

	inst, err := newInstance(modelInput)
	if err != nil {
		return Result{}, err
	}
	evaluator := newPredicateEvaluator(inst)
	schedule := NewSchedule()

	visit := func(course int) {
		professor, room, slot, ok := firstFit(inst, evaluator, schedule, course)
		if ok {
			schedule.Assign(inst.courses[course], inst.assignment(professor, room, slot))
		}
	}

	visited := make([]bool, len(inst.courses))
	for root := range inst.courses {
		if visited[root] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		switch timetabler.order {
		case breadthFirst:
			breadthFirstWalk(inst, root, visited, visit)
		case depthFirst:
			depthFirstWalk(inst, root, visited, visit)
		}
	}

	return partialResult(inst, schedule, start, timetabler.order.String(), timetabler.logger), nil
}

func (timetabler *graphTimetabler) Verify(schedule *Schedule, modelInput ModelInput) bool {
	return Verify(schedule, modelInput)
}

func breadthFirstWalk(inst *instance, root int, visited []bool, visit func(course int)) {
	queue := []int{root}
	visited[root] = true
	for len(queue) > 0 {
		course := queue[0]
		queue = queue[1:]

		visit(course)
		for _, neighbor := range inst.partners[course] {
			if !visited[neighbor] {
				visited[neighbor] = true
				queue = append(queue, neighbor)
			}
		}
	}
}

// depthFirstWalk keeps an explicit stack of (course, next neighbor) frames; courses are visited in preorder
func depthFirstWalk(inst *instance, root int, visited []bool, visit func(course int)) {
	type frame struct {
		course, next int
	}

	visited[root] = true
	visit(root)
	stack := []*frame{{course: root}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next == len(inst.partners[top.course]) {
			stack = stack[:len(stack)-1]
			continue
		}

		neighbor := inst.partners[top.course][top.next]
		top.next++
		if visited[neighbor] {
			continue
		}
		visited[neighbor] = true
		visit(neighbor)
		stack = append(stack, &frame{course: neighbor})
	}
}

// firstFit scans slots not taken by a scheduled partner, then rooms the course fits in (and is allowed to use),
// then professors available at the slot. Room and professor occupancy are not considered.
// It returns the (professor, room, slot) found.
func firstFit(inst *instance, evaluator predicateEvaluator, schedule *Schedule, course int) (int, int, int, bool) {
	for slot := range inst.slots {
		if !evaluator.OverlapFree(schedule, course, slot) {
			continue
		}
		for room := range inst.rooms {
			if !evaluator.Fits(course, room) || !evaluator.RoomAllowed(course, room) {
				continue
			}
			if available := inst.availableAt[slot]; len(available) > 0 {
				return available[0], room, slot, true
			}
		}
	}
	return 0, 0, 0, false
}

// partialResult scores a possibly incomplete schedule by its energy savings
func partialResult(inst *instance, schedule *Schedule, start time.Time, strategy string, logger *zap.Logger) Result {
	stats := Stats{
		EnergyUsed:     inst.scheduleEnergy(schedule),
		BaselineEnergy: inst.baselineEnergy(),
	}
	savings, err := energySavings(stats.EnergyUsed, stats.BaselineEnergy)
	if err != nil {
		logger.Warn("energy savings undefined", zap.String("strategy", strategy), zap.Error(err))
	}
	stats.Duration = time.Since(start)

	unscheduled := inst.unscheduled(schedule)
	logger.Info("heuristic search finished",
		zap.String("strategy", strategy),
		zap.Int("scheduled", schedule.Len()),
		zap.Strings("unscheduled", unscheduled),
	)

	return Result{Schedule: schedule, Score: savings, Unscheduled: unscheduled, Stats: stats}
}
