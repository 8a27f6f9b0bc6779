package model

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

const progressInterval = 10

type PenaltyWeights struct {
	FixedRoom      float64 `mapstructure:"fixed_room" json:"fixedRoom"`
	Availability   float64 `mapstructure:"availability" json:"availability"`
	Conflict       float64 `mapstructure:"conflict" json:"conflict"`
	ProfessorClash float64 `mapstructure:"professor_clash" json:"professorClash"` // Per course beyond the first in a (professor, slot)
	Capacity       float64 `mapstructure:"capacity" json:"capacity"`              // Per seat of overflow in a (room, slot)
}

type GeneticConfig struct {
	PopulationSize int            `mapstructure:"population_size"`
	MutationRate   float64        `mapstructure:"mutation_rate"`
	Generations    int            `mapstructure:"generations"`
	BaseFitness    float64        `mapstructure:"base_fitness"`
	Weights        PenaltyWeights `mapstructure:"weights"`
	Seed           int64          `mapstructure:"seed"`
	Workers        int            `mapstructure:"workers"` // Zero means one per CPU
}

func DefaultGeneticConfig() GeneticConfig {
	return GeneticConfig{
		PopulationSize: 100,
		MutationRate:   0.1,
		Generations:    100,
		BaseFitness:    10,
		Weights: PenaltyWeights{
			FixedRoom:      5,
			Availability:   5,
			Conflict:       5,
			ProfessorClash: 5,
			Capacity:       5,
		},
		Seed: 1,
	}
}

func (config GeneticConfig) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	weights := []float64{config.Weights.FixedRoom, config.Weights.Availability, config.Weights.Conflict, config.Weights.ProfessorClash, config.Weights.Capacity}
	switch {
	case config.PopulationSize <= 0:
		return invalid("population size must be positive, got %v", config.PopulationSize)
	case config.PopulationSize%2 != 0:
		return invalid("population size must be even, got %v", config.PopulationSize)
	case config.Generations <= 0:
		return invalid("generations must be positive, got %v", config.Generations)
	case config.MutationRate < 0 || config.MutationRate > 1:
		return invalid("mutation rate must lie in [0, 1], got %v", config.MutationRate)
	case config.Workers < 0:
		return invalid("workers must not be negative, got %v", config.Workers)
	case lo.SomeBy(weights, func(weight float64) bool { return weight < 0 }):
		return invalid("penalty weights must not be negative, got %+v", config.Weights)
	case lo.EveryBy(weights, func(weight float64) bool { return weight == 0 }):
		return invalid("at least one penalty weight must be positive")
	}
	return nil
}

// FitnessBreakdown counts the violations behind a fitness score.
type FitnessBreakdown struct {
	Fitness          float64 `json:"fitness"`
	WrongRoom        int     `json:"wrongRoom"`
	Unavailable      int     `json:"unavailable"`
	Conflicts        int     `json:"conflicts"`
	ProfessorClashes int     `json:"professorClashes"` // Excess courses over all (professor, slot) pairs
	CapacityOverflow int     `json:"capacityOverflow"` // Excess seats over all (room, slot) pairs
}

// gene is one course's (professor, room, slot) triple; a chromosome holds one gene per course in input order
type gene struct {
	professor, room, slot int
}

type chromosome []gene

type geneticTimetabler struct {
	config GeneticConfig
	logger *zap.Logger
}

func NewGeneticTimetabler(config GeneticConfig, opts ...Option) (Timetabler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Workers == 0 {
		config.Workers = runtime.NumCPU()
	}
	return &geneticTimetabler{
		config: config,
		logger: buildOptions(opts).logger,
	}, nil
}

// geneticRun holds the state of one Build call
type geneticRun struct {
	config    GeneticConfig
	inst      *instance
	evaluator predicateEvaluator
	rng       *rand.Rand
}

func (timetabler *geneticTimetabler) Build(ctx context.Context, modelInput ModelInput) (Result, error) {
	start := time.Now()

	inst, err := newInstance(modelInput)
	if err != nil {
		return Result{}, err
	}
	if len(inst.courses) > 0 && (len(inst.rooms) == 0 || len(inst.slots) == 0 || len(inst.professors) == 0) {
		return Result{}, fmt.Errorf("%w: the genetic engine needs at least one room, time slot and professor", ErrMalformedInput)
	}

	run := &geneticRun{
		config:    timetabler.config,
		inst:      inst,
		evaluator: newPredicateEvaluator(inst),
		rng:       rand.New(rand.NewSource(timetabler.config.Seed)),
	}
	stats := Stats{BaselineEnergy: inst.baselineEnergy()}

	population := make([]chromosome, run.config.PopulationSize)
	for i := range population {
		population[i] = run.randomChromosome()
	}
	fitness := run.evaluatePopulation(population)
	stats.Evaluations += len(population)

	var best chromosome
	bestFitness := 0.0

	for generation := range run.config.Generations {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("%w: %w", ErrSearchLimit, err)
		}

		//** Offspring replace the whole population
		offspring := make([]chromosome, 0, len(population))
		for range len(population) / 2 {
			parent1, parent2 := run.selection(population, fitness)
			child1, child2 := run.crossover(parent1, parent2)
			offspring = append(offspring, run.mutate(child1), run.mutate(child2))
		}
		population = offspring
		fitness = run.evaluatePopulation(population)
		stats.Evaluations += len(population)

		//** Track the best chromosome ever seen
		for i, value := range fitness {
			if best == nil || value > bestFitness {
				best, bestFitness = population[i], value
			}
		}
		stats.History = append(stats.History, bestFitness)
		stats.Generations++

		if (generation+1)%progressInterval == 0 {
			timetabler.logger.Debug("genetic progress", zap.Int("generation", generation+1), zap.Float64("best_fitness", bestFitness))
		}
	}

	schedule := run.decode(best)
	stats.EnergyUsed = inst.scheduleEnergy(schedule)
	stats.Duration = time.Since(start)

	timetabler.logger.Info("genetic search finished",
		zap.Int("generations", stats.Generations),
		zap.Int("evaluations", stats.Evaluations),
		zap.Float64("best_fitness", bestFitness),
	)

	return Result{Schedule: schedule, Score: bestFitness, Unscheduled: []string{}, Stats: stats}, nil
}

func (timetabler *geneticTimetabler) Verify(schedule *Schedule, modelInput ModelInput) bool {
	return Verify(schedule, modelInput)
}

//** Operators

// randomGene honours a fixed room and prefers a professor available at the drawn slot, falling back to any professor
func (run *geneticRun) randomGene(course int) gene {
	room := run.inst.fixedRoom[course]
	if room < 0 {
		room = run.rng.Intn(len(run.inst.rooms))
	}
	slot := run.rng.Intn(len(run.inst.slots))

	var professor int
	if available := run.inst.availableAt[slot]; len(available) > 0 {
		professor = available[run.rng.Intn(len(available))]
	} else {
		professor = run.rng.Intn(len(run.inst.professors))
	}

	return gene{professor: professor, room: room, slot: slot}
}

func (run *geneticRun) randomChromosome() chromosome {
	individual := make(chromosome, len(run.inst.courses))
	for course := range individual {
		individual[course] = run.randomGene(course)
	}
	return individual
}

// selection draws two parents with replacement, weighting each by its fitness shifted to be positive
func (run *geneticRun) selection(population []chromosome, fitness []float64) (chromosome, chromosome) {
	offset := 0.0
	if minimum := lo.Min(fitness); minimum <= 0 {
		offset = 1 - minimum
	}

	cumulative := make([]float64, len(fitness))
	total := 0.0
	for i, value := range fitness {
		total += value + offset
		cumulative[i] = total
	}

	draw := func() chromosome {
		target := run.rng.Float64() * total
		i := sort.Search(len(cumulative), func(i int) bool { return cumulative[i] > target })
		return population[min(i, len(population)-1)]
	}
	return draw(), draw()
}

// crossover is uniform: each course comes from one parent in the first child and from the other in the second
func (run *geneticRun) crossover(parent1, parent2 chromosome) (chromosome, chromosome) {
	child1, child2 := make(chromosome, len(parent1)), make(chromosome, len(parent1))
	for course := range parent1 {
		if run.rng.Float64() < 0.5 {
			child1[course], child2[course] = parent1[course], parent2[course]
		} else {
			child1[course], child2[course] = parent2[course], parent1[course]
		}
	}
	return child1, child2
}

func (run *geneticRun) mutate(individual chromosome) chromosome {
	for course := range individual {
		if run.rng.Float64() < run.config.MutationRate {
			individual[course] = run.randomGene(course)
		}
	}
	return individual
}

//** Fitness

// evaluatePopulation scores every chromosome on a pool of workers; scores are written by position
func (run *geneticRun) evaluatePopulation(population []chromosome) []float64 {
	fitness := make([]float64, len(population))
	workers := max(1, min(run.config.Workers, len(population)))

	indices := make(chan int)
	done := make(chan struct{})
	for range workers {
		go func() {
			for i := range indices {
				fitness[i] = run.fitness(population[i]).Fitness
			}
			done <- struct{}{}
		}()
	}

	for i := range population {
		indices <- i
	}
	close(indices)

	for range workers {
		<-done
	}
	return fitness
}

func (run *geneticRun) fitness(individual chromosome) FitnessBreakdown {
	inst := run.inst
	breakdown := FitnessBreakdown{}

	professorLoad := make(map[[2]int]int)
	roomLoad := make(map[[2]int]int)
	for course, assigned := range individual {
		if !run.evaluator.RoomAllowed(course, assigned.room) {
			breakdown.WrongRoom++
		}
		if !run.evaluator.ProfessorAvailable(assigned.professor, assigned.slot) {
			breakdown.Unavailable++
		}
		professorLoad[[2]int{assigned.professor, assigned.slot}]++
		roomLoad[[2]int{assigned.room, assigned.slot}] += inst.seats[course]
	}

	for _, pair := range inst.pairs {
		if individual[pair[0]].slot == individual[pair[1]].slot {
			breakdown.Conflicts++
		}
	}
	for _, load := range professorLoad {
		breakdown.ProfessorClashes += max(0, load-1)
	}
	for key, seats := range roomLoad {
		breakdown.CapacityOverflow += max(0, seats-inst.rooms[key[0]].Capacity)
	}

	weights := run.config.Weights
	breakdown.Fitness = run.config.BaseFitness -
		weights.FixedRoom*float64(breakdown.WrongRoom) -
		weights.Availability*float64(breakdown.Unavailable) -
		weights.Conflict*float64(breakdown.Conflicts) -
		weights.ProfessorClash*float64(breakdown.ProfessorClashes) -
		weights.Capacity*float64(breakdown.CapacityOverflow)
	return breakdown
}

func (run *geneticRun) decode(individual chromosome) *Schedule {
	schedule := NewSchedule()
	for course, assigned := range individual {
		schedule.Assign(run.inst.courses[course], run.inst.assignment(assigned.professor, assigned.room, assigned.slot))
	}
	return schedule
}

// EvaluateFitness scores a complete schedule the way the genetic engine scores its chromosomes.
func EvaluateFitness(schedule *Schedule, modelInput ModelInput, config GeneticConfig) (FitnessBreakdown, error) {
	if err := config.Validate(); err != nil {
		return FitnessBreakdown{}, err
	}
	inst, err := newInstance(modelInput)
	if err != nil {
		return FitnessBreakdown{}, err
	}
	if schedule == nil {
		return FitnessBreakdown{}, fmt.Errorf("%w: no schedule to evaluate", ErrMalformedInput)
	}

	individual := make(chromosome, len(inst.courses))
	for course, id := range inst.courses {
		assignment, ok := schedule.Get(id)
		if !ok {
			return FitnessBreakdown{}, fmt.Errorf("%w: course \"%v\" is not scheduled", ErrMalformedInput, id)
		}
		professor, knownProfessor := inst.professorIndex[assignment.Professor]
		room, knownRoom := inst.roomIndex[assignment.Room]
		slot, knownSlot := inst.slotIndex[assignment.TimeSlot]
		if !knownProfessor || !knownRoom || !knownSlot {
			return FitnessBreakdown{}, fmt.Errorf("%w: course \"%v\" has an unknown assignment %+v", ErrMalformedInput, id, assignment)
		}
		individual[course] = gene{professor: professor, room: room, slot: slot}
	}
	if extra, ok := lo.Find(schedule.Courses(), func(course string) bool {
		_, known := inst.courseIndex[course]
		return !known
	}); ok {
		return FitnessBreakdown{}, fmt.Errorf("%w: unknown course \"%v\" in schedule", ErrMalformedInput, extra)
	}

	run := &geneticRun{config: config, inst: inst, evaluator: newPredicateEvaluator(inst)}
	return run.fitness(individual), nil
}
