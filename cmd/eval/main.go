// Command eval scores the question answering of a kgqa engine against a
// dataset of texts and expected facts.
//
// Builtin dataset:
//
//	go run ./cmd/eval
//
// Custom dataset with a config file and a JSON report:
//
//	go run ./cmd/eval \
//	  --dataset ./testdata/companies.yaml \
//	  --config ./kgqa.yaml \
//	  --output ./report.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/bbiangul/kgqa"
	"github.com/bbiangul/kgqa/eval"
)

func main() {
	var (
		datasetPath = flag.String("dataset", "", "Path to a YAML dataset (default: builtin)")
		configPath  = flag.String("config", "", "Path to config file (YAML or JSON)")
		outputFile  = flag.String("output", "", "Path to write the JSON report")
		minPass     = flag.Float64("min-pass", 0, "Exit non-zero when the pass rate (0-1) is lower")
	)
	flag.Parse()

	if err := run(*datasetPath, *configPath, *outputFile, *minPass); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(datasetPath, configPath, outputFile string, minPass float64) error {
	cfg := kgqa.DefaultConfig()
	if configPath != "" {
		loaded, err := kgqa.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	cfg.ApplyEnv()

	logger, closer, err := kgqa.NewLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(logger)

	ds := eval.BuiltinDataset()
	if datasetPath != "" {
		if ds, err = eval.LoadDataset(datasetPath); err != nil {
			return err
		}
	}

	engine, err := kgqa.New(cfg)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	defer engine.Close()

	report, err := eval.NewEvaluator(engine).Run(context.Background(), ds)
	if err != nil {
		return err
	}
	fmt.Print(eval.FormatReport(report))

	if outputFile != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		if err := os.WriteFile(outputFile, data, 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		slog.Info("report written", "path", outputFile)
	}

	if report.TotalTests > 0 {
		rate := float64(report.Passed) / float64(report.TotalTests)
		if rate < minPass {
			return fmt.Errorf("pass rate %.2f below %.2f", rate, minPass)
		}
	}
	return nil
}
