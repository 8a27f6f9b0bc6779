package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/limaJavier/timetabling-csp/internal/config"
	"github.com/limaJavier/timetabling-csp/internal/export"
	"github.com/limaJavier/timetabling-csp/internal/logger"
	"github.com/limaJavier/timetabling-csp/internal/service"
	"github.com/limaJavier/timetabling-csp/pkg/model"
)

// Exit codes
const (
	exitSolved     = 10
	exitUnverified = 15
	exitInfeasible = 20
)

func main() {
	// Define arguments
	strategyPtr := flag.String("strategy", "", fmt.Sprintf("Strategy to build the timetable. Allowed values are: %v; when empty, search.strategy from the configuration is used (\"exact\" by default)", strings.Join(config.Strategies, ", ")))
	filePathPtr := flag.String("file", "", "Path to the input file")
	outFilePathPtr := flag.String("out", "", "Path to the file where the output will be written; if empty, it'll be written into the Standard Output")
	configPathPtr := flag.String("config", "", "Path to a YAML configuration file; if empty, ./config/config.yaml or ./config.yaml is used when present")
	formatPtr := flag.String("format", "json", "Output format: \"json\" or \"xlsx\" (xlsx requires -out)")
	seedPtr := flag.Int64("seed", 0, "Seed of the genetic strategy; 0 keeps the configured seed")
	flag.Parse()
	filePath := *filePathPtr
	outFile := *outFilePathPtr
	format := strings.ToLower(*formatPtr)

	cfg, err := config.Load(*configPathPtr)
	if err != nil {
		log.Fatalf("cannot load configuration: %v", err)
	}
	if *strategyPtr != "" {
		cfg.Search.Strategy = strings.ToLower(*strategyPtr)
	}
	if *seedPtr != 0 {
		cfg.Genetic.Seed = *seedPtr
	}

	// Validate arguments
	if !config.IsStrategy(cfg.Search.Strategy) {
		log.Fatalf("%v is not a valid strategy", cfg.Search.Strategy)
	} else if filePath == "" {
		log.Fatal("an input file must be specified")
	} else if format != "json" && format != "xlsx" {
		log.Fatalf("%v is not a valid format", format)
	} else if format == "xlsx" && outFile == "" {
		log.Fatal("an output file must be specified for the xlsx format")
	}

	zapLogger, err := logger.NewLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("cannot build logger: %v", err)
	}

	// Extract input
	input, err := model.InputFromJson(filePath)
	if err != nil {
		log.Fatalf("cannot parse input file: %v", err)
	}

	// Build timetable
	solver := service.NewSolverService(cfg, zapLogger)
	run, err := solver.Solve(context.Background(), cfg.Search.Strategy, input)
	if err != nil {
		log.Fatalf("an error occurred during timetable construction: %v", err)
	}
	_ = zapLogger.Sync()

	printStats(os.Stderr, run)
	if !run.Feasible {
		os.Exit(exitInfeasible)
	}

	if err := write(run, input, format, outFile); err != nil {
		log.Fatalf("an error occurred while writing the output: %v", err)
	}

	// A complete schedule must pass every hard rule
	if run.Complete && !run.Verified {
		os.Exit(exitUnverified)
	}
	os.Exit(exitSolved)
}

func write(run *service.Run, input model.ModelInput, format, outFile string) error {
	if format == "xlsx" {
		buf, err := export.Workbook(run.Schedule, input, run.Unscheduled)
		if err != nil {
			return err
		}
		return os.WriteFile(outFile, buf.Bytes(), 0666)
	}

	// Verify outfile is empty, if so then write the results to the Standard Output
	if outFile == "" {
		return export.JSON(os.Stdout, run)
	}
	file, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer file.Close()
	return export.JSON(file, run)
}

func printStats(w io.Writer, run *service.Run) {
	fmt.Fprintf(w, "Strategy: %v\n", run.Strategy)
	fmt.Fprintf(w, "Score: %v\n", run.Score)
	fmt.Fprintf(w, "Unscheduled: %v\n", len(run.Unscheduled))
	fmt.Fprintf(w, "Steps: %v\n", run.Stats.Steps)
	fmt.Fprintf(w, "Duration: %v\n", run.Stats.Duration)
}
