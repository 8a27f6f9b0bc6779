package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/limaJavier/timetabling-csp/internal/config"
	"github.com/limaJavier/timetabling-csp/pkg/model"
)

func newTestService() SolverService {
	cfg := &config.Config{
		Genetic: model.DefaultGeneticConfig(),
		Exact:   model.DefaultExactOptions(),
	}
	cfg.Genetic.Generations = 20
	return NewSolverService(cfg, zap.NewNop())
}

func scenario(t *testing.T) model.ModelInput {
	t.Helper()
	input, err := model.InputFromJson("../../test/instances/scenario.json")
	require.NoError(t, err)
	return input
}

func TestSolveEveryStrategy(t *testing.T) {
	svc := newTestService()

	for _, strategy := range config.Strategies {
		t.Run(strategy, func(t *testing.T) {
			//** Act
			run, err := svc.Solve(context.Background(), strategy, scenario(t))

			//** Assert
			require.NoError(t, err)
			assert.Equal(t, strategy, run.Strategy)
			_, err = uuid.Parse(run.ID)
			assert.NoError(t, err)
			assert.True(t, run.Feasible)
			assert.Equal(t, run.Complete, len(run.Unscheduled) == 0)
		})
	}
}

func TestSolveExactIsVerified(t *testing.T) {
	run, err := newTestService().Solve(context.Background(), config.StrategyExact, scenario(t))

	require.NoError(t, err)
	assert.True(t, run.Verified)
	assert.Equal(t, 55.56, run.Score)
}

func TestSolveUnknownStrategy(t *testing.T) {
	_, err := newTestService().Solve(context.Background(), "annealing", scenario(t))

	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestSolveRunsHaveDistinctIds(t *testing.T) {
	svc := newTestService()

	first, err := svc.Solve(context.Background(), config.StrategyGreedyTable, scenario(t))
	require.NoError(t, err)
	second, err := svc.Solve(context.Background(), config.StrategyGreedyTable, scenario(t))
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestVerify(t *testing.T) {
	//** Arrange
	svc := newTestService()
	input := scenario(t)
	run, err := svc.Solve(context.Background(), config.StrategyExact, input)
	require.NoError(t, err)

	broken := input
	broken.TimeSlots = nil

	//** Act
	valid, err := svc.Verify(run.Schedule, input)
	_, brokenErr := svc.Verify(run.Schedule, broken)

	//** Assert
	require.NoError(t, err)
	assert.True(t, valid)
	assert.ErrorIs(t, brokenErr, model.ErrMalformedInput)
}
