package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/limaJavier/timetabling-csp/internal/config"
	"github.com/limaJavier/timetabling-csp/internal/service"
	"github.com/limaJavier/timetabling-csp/pkg/model"
)

const (
	defaultTestDirectory = "../../test/instances/"
	defaultOutFile       = "benchmark_results.csv"
)

type ResultType int

const (
	solved ResultType = iota
	partial
	infeasible
	timeout
)

var resultTypes = map[ResultType]string{
	solved:     "solved",
	partial:    "partial",
	infeasible: "infeasible",
	timeout:    "timeout",
}

type TestMetadata struct {
	Name       string
	Input      model.ModelInput
	Courses    int
	Professors int
	Rooms      int
	TimeSlots  int
	NoOverlap  int
}

type BenchmarkResult struct {
	Strategy string
	Test     TestMetadata
	Duration time.Duration
	Result   ResultType
	Run      *service.Run // Nil on timeout
}

func main() {
	directoryPtr := flag.String("dir", defaultTestDirectory, "Directory holding the JSON instances")
	outFilePtr := flag.String("out", defaultOutFile, "Path of the CSV file to write")
	configPathPtr := flag.String("config", "", "Path to a YAML configuration file")
	timeoutPtr := flag.Duration("timeout", time.Minute, "Time limit of every single run")
	flag.Parse()

	cfg, err := config.Load(*configPathPtr)
	if err != nil {
		log.Fatalf("cannot load configuration: %v", err)
	}
	solver := service.NewSolverService(cfg, zap.NewNop())

	tests, err := getTests(*directoryPtr)
	if err != nil {
		log.Fatalf("cannot collect tests: %v", err)
	}
	results := make([]BenchmarkResult, 0, len(tests)*len(config.Strategies))

	for _, test := range tests {
		for _, strategy := range config.Strategies {
			fmt.Printf("Benchmarking test \"%v\" with strategy \"%v\"\n", test.Name, strategy)
			results = append(results, measure(solver, strategy, test, *timeoutPtr))
		}
	}

	file, err := os.Create(*outFilePtr)
	if err != nil {
		log.Fatalf("cannot create CSV file: %v", err)
	}
	defer file.Close()

	if err := toCsv(file, results); err != nil {
		log.Fatalf("cannot write CSV file: %v", err)
	}
}

func getTests(directory string) ([]TestMetadata, error) {
	testFiles, err := filepath.Glob(filepath.Join(directory, "*.json"))
	if err != nil {
		return nil, err
	}

	tests := make([]TestMetadata, 0, len(testFiles))
	for _, filename := range testFiles {
		input, err := model.InputFromJson(filename)
		if err != nil {
			return nil, fmt.Errorf("cannot parse input file \"%v\": %w", filename, err)
		}

		tests = append(tests, TestMetadata{
			Name:       filepath.Base(filename),
			Input:      input,
			Courses:    len(input.Courses),
			Professors: len(input.Professors),
			Rooms:      len(input.Rooms),
			TimeSlots:  len(input.TimeSlots),
			NoOverlap:  len(input.Constraints.NoOverlap),
		})
	}
	return tests, nil
}

func measure(solver service.SolverService, strategy string, test TestMetadata, limit time.Duration) BenchmarkResult {
	ctx, cancel := context.WithTimeout(context.Background(), limit)
	defer cancel()

	start := time.Now()
	run, err := solver.Solve(ctx, strategy, test.Input)
	duration := time.Since(start)

	result, err := resultOf(run, err)
	if err != nil {
		log.Fatalf("an error occurred at test \"%v\" using strategy \"%v\": %v", test.Name, strategy, err)
	}
	return BenchmarkResult{
		Strategy: strategy,
		Test:     test,
		Duration: duration,
		Result:   result,
		Run:      run,
	}
}

func resultOf(run *service.Run, err error) (ResultType, error) {
	switch {
	case errors.Is(err, model.ErrSearchLimit):
		return timeout, nil
	case err != nil:
		return 0, err
	case !run.Feasible:
		return infeasible, nil
	case !run.Complete:
		return partial, nil
	default:
		return solved, nil
	}
}

func toCsv(w io.Writer, results []BenchmarkResult) error {
	writer := csv.NewWriter(w)

	header := []string{"Strategy", "Test", "Courses", "Professors", "Rooms", "TimeSlots", "NoOverlap", "Duration(ms)", "Result", "Verified", "Score", "Unscheduled", "Steps", "Backtracks", "Generations"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("cannot write CSV header: %w", err)
	}

	for _, result := range results {
		if err := writer.Write(record(result)); err != nil {
			return fmt.Errorf("cannot write CSV record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func record(result BenchmarkResult) []string {
	run := lo.FromPtrOr(result.Run, service.Run{})
	return []string{
		result.Strategy,
		result.Test.Name,
		strconv.Itoa(result.Test.Courses),
		strconv.Itoa(result.Test.Professors),
		strconv.Itoa(result.Test.Rooms),
		strconv.Itoa(result.Test.TimeSlots),
		strconv.Itoa(result.Test.NoOverlap),
		strconv.FormatInt(result.Duration.Milliseconds(), 10),
		resultTypes[result.Result],
		strconv.FormatBool(run.Verified),
		strconv.FormatFloat(run.Score, 'f', 2, 64),
		strconv.Itoa(len(run.Unscheduled)),
		strconv.FormatUint(run.Stats.Steps, 10),
		strconv.FormatUint(run.Stats.Backtracks, 10),
		strconv.Itoa(run.Stats.Generations),
	}
}
