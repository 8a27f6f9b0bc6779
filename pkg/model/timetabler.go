package model

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

var (
	ErrSearchLimit  = errors.New("search limit reached")
	ErrZeroBaseline = errors.New("baseline energy is zero")
)

// Timetabler is a search strategy over a ModelInput. An infeasible instance yields a Result
// whose Schedule is nil together with a nil error.
type Timetabler interface {
	Build(
		ctx context.Context,
		modelInput ModelInput,
	) (Result, error)

	Verify(
		schedule *Schedule,
		modelInput ModelInput,
	) bool
}

type Result struct {
	Schedule    *Schedule
	Score       float64  // Energy savings percentage, or best fitness for the genetic engine
	Unscheduled []string // Courses the strategy could not place, in input order
	Stats       Stats
}

// Feasible reports whether the strategy produced a schedule at all.
func (result Result) Feasible() bool {
	return result.Schedule != nil
}

// Complete reports whether every course was placed.
func (result Result) Complete() bool {
	return result.Schedule != nil && len(result.Unscheduled) == 0
}

type Stats struct {
	Steps          uint64 `json:"steps,omitempty"`      // Candidates tried by the exact engine
	Backtracks     uint64 `json:"backtracks,omitempty"` // Commits undone by the exact engine
	Generations    int    `json:"generations,omitempty"`
	Evaluations    int    `json:"evaluations,omitempty"` // Fitness evaluations
	EnergyUsed     uint64 `json:"energyUsed"`
	BaselineEnergy uint64 `json:"baselineEnergy"`
	// Best fitness after each generation
	History  []float64     `json:"history,omitempty"`
	Duration time.Duration `json:"duration"`
}

type options struct {
	logger *zap.Logger
}

type Option func(*options)

func WithLogger(logger *zap.Logger) Option {
	return func(options *options) {
		if logger != nil {
			options.logger = logger
		}
	}
}

func buildOptions(opts []Option) options {
	result := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&result)
	}
	return result
}

//** Entry points

// SolveExact runs the backtracking engine with default limits. A nil schedule means the instance is infeasible.
func SolveExact(ctx context.Context, input ModelInput) (*Schedule, float64, error) {
	result, err := NewBacktrackingTimetabler(DefaultExactOptions()).Build(ctx, input)
	if err != nil {
		return nil, 0, err
	}
	return result.Schedule, result.Score, nil
}

// SolveGenetic runs the genetic engine with default penalty weights.
func SolveGenetic(ctx context.Context, input ModelInput, populationSize int, mutationRate float64, generations int) (*Schedule, float64, error) {
	config := DefaultGeneticConfig()
	config.PopulationSize = populationSize
	config.MutationRate = mutationRate
	config.Generations = generations

	timetabler, err := NewGeneticTimetabler(config)
	if err != nil {
		return nil, 0, err
	}
	result, err := timetabler.Build(ctx, input)
	if err != nil {
		return nil, 0, err
	}
	return result.Schedule, result.Score, nil
}

func SolveBreadthFirst(ctx context.Context, input ModelInput) (*Schedule, []string, error) {
	return solvePartial(ctx, NewBreadthFirstTimetabler(), input)
}

func SolveDepthFirst(ctx context.Context, input ModelInput) (*Schedule, []string, error) {
	return solvePartial(ctx, NewDepthFirstTimetabler(), input)
}

func SolveGreedyTable(ctx context.Context, input ModelInput) (*Schedule, []string, error) {
	return solvePartial(ctx, NewGreedyTableTimetabler(), input)
}

func solvePartial(ctx context.Context, timetabler Timetabler, input ModelInput) (*Schedule, []string, error) {
	result, err := timetabler.Build(ctx, input)
	if err != nil {
		return nil, nil, err
	}
	return result.Schedule, result.Unscheduled, nil
}
