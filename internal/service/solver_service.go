package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/limaJavier/timetabling-csp/internal/config"
	"github.com/limaJavier/timetabling-csp/pkg/model"
)

var ErrUnknownStrategy = errors.New("unknown strategy")

// Run is the outcome of one solve, as reported by the CLI, the benchmark and the HTTP API.
type Run struct {
	ID          string          `json:"runId"`
	Strategy    string          `json:"strategy"`
	Feasible    bool            `json:"feasible"`
	Complete    bool            `json:"complete"`
	Verified    bool            `json:"verified"` // Complete and free of hard-rule violations
	Score       float64         `json:"score"`
	Schedule    *model.Schedule `json:"schedule,omitempty"`
	Unscheduled []string        `json:"unscheduled"`
	Stats       model.Stats     `json:"stats"`
}

type SolverService interface {
	Solve(ctx context.Context, strategy string, input model.ModelInput) (*Run, error)
	Verify(schedule *model.Schedule, input model.ModelInput) (bool, error)
}

type solverService struct {
	cfg    *config.Config
	logger *zap.Logger
}

func NewSolverService(cfg *config.Config, logger *zap.Logger) SolverService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &solverService{cfg: cfg, logger: logger}
}

func (s *solverService) timetabler(strategy string, logger *zap.Logger) (model.Timetabler, error) {
	withLogger := model.WithLogger(logger)

	switch strategy {
	case config.StrategyExact:
		return model.NewBacktrackingTimetabler(s.cfg.Exact, withLogger), nil
	case config.StrategyGenetic:
		return model.NewGeneticTimetabler(s.cfg.Genetic, withLogger)
	case config.StrategyBreadthFirst:
		return model.NewBreadthFirstTimetabler(withLogger), nil
	case config.StrategyDepthFirst:
		return model.NewDepthFirstTimetabler(withLogger), nil
	case config.StrategyGreedyTable:
		return model.NewGreedyTableTimetabler(withLogger), nil
	default:
		return nil, fmt.Errorf("%w: %q (expected one of %v)", ErrUnknownStrategy, strategy, config.Strategies)
	}
}

func (s *solverService) Solve(ctx context.Context, strategy string, input model.ModelInput) (*Run, error) {
	run := &Run{ID: uuid.NewString(), Strategy: strategy}
	logger := s.logger.With(zap.String("run_id", run.ID), zap.String("strategy", strategy))

	timetabler, err := s.timetabler(strategy, logger)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := timetabler.Build(ctx, input)
	if err != nil {
		logger.Warn("solve failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
		return nil, err
	}

	run.Feasible = result.Feasible()
	run.Complete = result.Complete()
	run.Verified = run.Complete && timetabler.Verify(result.Schedule, input)
	run.Score = result.Score
	run.Schedule = result.Schedule
	run.Unscheduled = result.Unscheduled
	run.Stats = result.Stats

	logger.Info("solve finished",
		zap.Duration("duration", time.Since(start)),
		zap.Bool("feasible", run.Feasible),
		zap.Bool("verified", run.Verified),
		zap.Float64("score", run.Score),
		zap.Int("unscheduled", len(run.Unscheduled)),
	)
	return run, nil
}

func (s *solverService) Verify(schedule *model.Schedule, input model.ModelInput) (bool, error) {
	if err := input.Validate(); err != nil {
		return false, err
	}
	return model.Verify(schedule, input), nil
}
