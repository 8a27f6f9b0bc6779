package config

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/viper"

	"github.com/limaJavier/timetabling-csp/pkg/model"
)

// Strategy names accepted by search.strategy, the CLI and the HTTP API
const (
	StrategyExact        = "exact"
	StrategyGenetic      = "genetic"
	StrategyBreadthFirst = "bfs"
	StrategyDepthFirst   = "dfs"
	StrategyGreedyTable  = "greedy"
)

var Strategies = []string{StrategyExact, StrategyGenetic, StrategyBreadthFirst, StrategyDepthFirst, StrategyGreedyTable}

type Config struct {
	Search  SearchConfig        `mapstructure:"search"`
	Genetic model.GeneticConfig `mapstructure:"genetic"`
	Exact   model.ExactOptions  `mapstructure:"exact"`
	Log     LogConfig           `mapstructure:"log"`
	Server  ServerConfig        `mapstructure:"server"`
}

type SearchConfig struct {
	Strategy string `mapstructure:"strategy"`
	Seed     int64  `mapstructure:"seed"` // Overrides genetic.seed when set
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

type ServerConfig struct {
	Port         int   `mapstructure:"port"`
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`
}

// Load reads defaults, then the optional YAML file, then TIMETABLING_* environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()

	genetic := model.DefaultGeneticConfig()
	exact := model.DefaultExactOptions()

	//** Defaults
	v.SetDefault("search.strategy", StrategyExact)
	v.SetDefault("search.seed", 0)

	v.SetDefault("genetic.population_size", genetic.PopulationSize)
	v.SetDefault("genetic.mutation_rate", genetic.MutationRate)
	v.SetDefault("genetic.generations", genetic.Generations)
	v.SetDefault("genetic.base_fitness", genetic.BaseFitness)
	v.SetDefault("genetic.seed", genetic.Seed)
	v.SetDefault("genetic.workers", genetic.Workers)
	v.SetDefault("genetic.weights.fixed_room", genetic.Weights.FixedRoom)
	v.SetDefault("genetic.weights.availability", genetic.Weights.Availability)
	v.SetDefault("genetic.weights.conflict", genetic.Weights.Conflict)
	v.SetDefault("genetic.weights.professor_clash", genetic.Weights.ProfessorClash)
	v.SetDefault("genetic.weights.capacity", genetic.Weights.Capacity)

	v.SetDefault("exact.max_steps", exact.MaxSteps)
	v.SetDefault("exact.timeout", "30s")
	v.SetDefault("exact.matching_precheck", exact.MatchingPrecheck)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_body_bytes", 1<<20)

	//** Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	//** Environment
	v.SetEnvPrefix("TIMETABLING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("cannot read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("cannot decode config: %w", err)
	}
	if cfg.Search.Seed != 0 {
		cfg.Genetic.Seed = cfg.Search.Seed
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if !IsStrategy(c.Search.Strategy) {
		return fmt.Errorf("%w: unknown search.strategy %q (expected one of %v)", model.ErrInvalidConfig, c.Search.Strategy, Strategies)
	}
	if err := c.Genetic.Validate(); err != nil {
		return err
	}
	if c.Exact.Timeout < 0 {
		return fmt.Errorf("%w: exact.timeout must not be negative", model.ErrInvalidConfig)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port must lie in 1-65535", model.ErrInvalidConfig)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: server.max_body_bytes must be positive", model.ErrInvalidConfig)
	}
	return nil
}

func IsStrategy(name string) bool {
	return lo.Contains(Strategies, name)
}
