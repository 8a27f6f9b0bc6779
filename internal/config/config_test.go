package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limaJavier/timetabling-csp/pkg/model"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	//** Act
	cfg, err := Load(writeConfig(t, "log:\n  level: debug\n"))

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, StrategyExact, cfg.Search.Strategy)
	assert.Equal(t, model.DefaultGeneticConfig().Weights, cfg.Genetic.Weights)
	assert.Equal(t, 100, cfg.Genetic.PopulationSize)
	assert.Equal(t, 30*time.Second, cfg.Exact.Timeout)
	assert.True(t, cfg.Exact.MatchingPrecheck)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadFileAndEnvironment(t *testing.T) {
	//** Arrange
	path := writeConfig(t, `
search:
  strategy: genetic
  seed: 99
genetic:
  population_size: 20
  weights:
    capacity: 1.5
exact:
  timeout: 2s
`)
	t.Setenv("TIMETABLING_GENETIC_GENERATIONS", "15")
	t.Setenv("TIMETABLING_SERVER_PORT", "9090")

	//** Act
	cfg, err := Load(path)

	//** Assert
	require.NoError(t, err)
	assert.Equal(t, StrategyGenetic, cfg.Search.Strategy)
	assert.Equal(t, int64(99), cfg.Genetic.Seed)
	assert.Equal(t, 20, cfg.Genetic.PopulationSize)
	assert.Equal(t, 15, cfg.Genetic.Generations)
	assert.Equal(t, 1.5, cfg.Genetic.Weights.Capacity)
	assert.Equal(t, 5.0, cfg.Genetic.Weights.Conflict)
	assert.Equal(t, 2*time.Second, cfg.Exact.Timeout)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	scenarios := map[string]string{
		"unknown strategy": "search:\n  strategy: simulated-annealing\n",
		"odd population":   "genetic:\n  population_size: 3\n",
		"zero weights":     "genetic:\n  weights:\n    fixed_room: 0\n    availability: 0\n    conflict: 0\n    professor_clash: 0\n    capacity: 0\n",
		"port":             "server:\n  port: 70000\n",
	}

	for name, content := range scenarios {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))

			assert.ErrorIs(t, err, model.ErrInvalidConfig)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

	assert.Error(t, err)
}
