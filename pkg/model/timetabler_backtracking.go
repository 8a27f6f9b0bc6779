package model

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

const contextCheckInterval = 1024

type ExactOptions struct {
	MaxSteps         uint64        `mapstructure:"max_steps"` // Zero disables the cap
	Timeout          time.Duration `mapstructure:"timeout"`   // Zero disables the deadline
	MatchingPrecheck bool          `mapstructure:"matching_precheck"`
}

func DefaultExactOptions() ExactOptions {
	return ExactOptions{
		MaxSteps:         10_000_000,
		MatchingPrecheck: true,
	}
}

type backtrackingTimetabler struct {
	exact  ExactOptions
	logger *zap.Logger
}

// NewBacktrackingTimetabler returns the exact engine: courses are placed in input order, trying
// time slots, then rooms, then professors, and undoing the latest commit whenever a course runs out of candidates.
func NewBacktrackingTimetabler(exact ExactOptions, opts ...Option) Timetabler {
	return &backtrackingTimetabler{
		exact:  exact,
		logger: buildOptions(opts).logger,
	}
}

// choicePoint is one level of the search: a course and the candidates it has left to try
type choicePoint struct {
	course     int
	candidates [][]uint64 // (slot, room, professor)
	next       int
	committed  bool
}

// energyLedger records the energy each committed course adds so a backtrack removes exactly that amount
type energyLedger struct {
	entries []uint64
	used    uint64
}

func (ledger *energyLedger) push(energy uint64) {
	ledger.entries = append(ledger.entries, energy)
	ledger.used += energy
}

func (ledger *energyLedger) pop() {
	last := len(ledger.entries) - 1
	ledger.used -= ledger.entries[last]
	ledger.entries = ledger.entries[:last]
}

func (timetabler *backtrackingTimetabler) Build(ctx context.Context, modelInput ModelInput) (Result, error) {
	start := time.Now()

	inst, err := newInstance(modelInput)
	if err != nil {
		return Result{}, err
	}
	evaluator := newPredicateEvaluator(inst)

	if timetabler.exact.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timetabler.exact.Timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrSearchLimit, err)
	}

	stats := Stats{BaselineEnergy: inst.baselineEnergy()}

	if timetabler.exact.MatchingPrecheck {
		if err := matchingPrecheck(inst, evaluator); errors.As(err, &unassignableError{}) {
			stats.Duration = time.Since(start)
			timetabler.logger.Info("instance rejected by matching pre-check", zap.Int("courses", len(inst.courses)))
			return Result{Unscheduled: inst.courses, Stats: stats}, nil
		} else if err != nil {
			return Result{}, err
		}
	}

	//** Candidates per course, statically filtered and kept in slot > room > professor order
	generator := newPermutationGenerator(uint64(len(inst.slots)), uint64(len(inst.rooms)), uint64(len(inst.professors)))
	candidates := make([][][]uint64, len(inst.courses))
	for course := range inst.courses {
		candidates[course] = generator.ConstrainedPermutations([]func(permutation []uint64) bool{
			func(permutation []uint64) bool {
				return permutation[1] == math.MaxUint64 || evaluator.RoomAllowed(course, int(permutation[1]))
			},
			func(permutation []uint64) bool {
				return permutation[2] == math.MaxUint64 || evaluator.ProfessorAvailable(int(permutation[2]), int(permutation[0]))
			},
		})
	}

	schedule := NewSchedule()
	ledger := &energyLedger{}

	//** Search
	stack := make([]*choicePoint, 0, len(inst.courses))
	if len(inst.courses) > 0 {
		stack = append(stack, &choicePoint{course: 0, candidates: candidates[0]})
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]

		// Coming back to a committed choice point means every deeper course failed
		if top.committed {
			schedule.Unassign(inst.courses[top.course])
			ledger.pop()
			top.committed = false
			stats.Backtracks++
		}

		for top.next < len(top.candidates) && !top.committed {
			candidate := top.candidates[top.next]
			top.next++

			stats.Steps++
			if err := timetabler.checkLimits(ctx, stats.Steps); err != nil {
				timetabler.logger.Warn("exact search interrupted", zap.Uint64("steps", stats.Steps), zap.Error(err))
				return Result{}, err
			}

			slot, room, professor := int(candidate[0]), int(candidate[1]), int(candidate[2])
			if evaluator.Valid(schedule, top.course, professor, room, slot) {
				schedule.Assign(inst.courses[top.course], inst.assignment(professor, room, slot))
				ledger.push(uint64(inst.rooms[room].Capacity))
				top.committed = true
			}
		}

		if !top.committed {
			stack = stack[:len(stack)-1]
			continue
		}
		if top.course+1 == len(inst.courses) {
			break
		}
		stack = append(stack, &choicePoint{course: top.course + 1, candidates: candidates[top.course+1]})
	}

	stats.Duration = time.Since(start)

	if len(stack) == 0 && len(inst.courses) > 0 {
		timetabler.logger.Info("no feasible schedule", zap.Uint64("steps", stats.Steps), zap.Uint64("backtracks", stats.Backtracks))
		return Result{Unscheduled: inst.courses, Stats: stats}, nil
	}

	stats.EnergyUsed = ledger.used
	savings, err := energySavings(ledger.used, stats.BaselineEnergy)
	if err != nil {
		timetabler.logger.Warn("energy savings undefined", zap.Error(err))
	}
	timetabler.logger.Info("schedule found",
		zap.Uint64("steps", stats.Steps),
		zap.Uint64("backtracks", stats.Backtracks),
		zap.Float64("savings", savings),
	)

	return Result{Schedule: schedule, Score: savings, Unscheduled: []string{}, Stats: stats}, nil
}

func (timetabler *backtrackingTimetabler) checkLimits(ctx context.Context, steps uint64) error {
	if timetabler.exact.MaxSteps > 0 && steps > timetabler.exact.MaxSteps {
		return fmt.Errorf("%w: more than %v steps", ErrSearchLimit, timetabler.exact.MaxSteps)
	}
	if steps%contextCheckInterval == 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrSearchLimit, err)
		}
	}
	return nil
}

func (timetabler *backtrackingTimetabler) Verify(schedule *Schedule, modelInput ModelInput) bool {
	return Verify(schedule, modelInput)
}
