// Command matcheval runs every matching strategy over a labeled dataset and
// reports precision/recall/F1 per strategy, so threshold changes can be
// judged against real titles before they ship.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"game-deals-service/internal/app"
	"game-deals-service/internal/config"
	"game-deals-service/internal/evaldata"
	"game-deals-service/internal/logging"
	"game-deals-service/internal/matching"
)

const appVersion = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("matcheval", flag.ContinueOnError)
	datasetPath := fs.String("dataset", "", "path to the labeled dataset JSON (required)")
	reportPath := fs.String("out", "", "write the full comparison report to this JSON file")
	provider := fs.String("provider", "", "candidate source: cheapshark or fixture (default from PROVIDER env)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *datasetPath == "" {
		fmt.Fprintln(os.Stderr, "matcheval: -dataset is required")
		fs.Usage()
		return 2
	}

	cfg := config.Load()
	if *provider != "" {
		cfg.Provider = *provider
	}
	logger := logging.NewLogger(logging.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "matcheval",
		Version: appVersion,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dataset, err := evaldata.LoadDataset(*datasetPath)
	if err != nil {
		logging.Error(logger, "loading dataset failed", err)
		return 1
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logging.Error(logger, "wiring failed", err)
		return 1
	}
	defer func() {
		_ = a.Shutdown(context.Background())
	}()

	if addr, err := a.ServeMetrics(); err != nil {
		logging.Warn(logger, "metrics listener failed, continuing without scrapes", "error", err)
	} else if addr != "" {
		logging.Info(logger, "metrics listening", "addr", addr)
	}

	report, err := a.Runner.Run(ctx, dataset)
	if err != nil {
		logging.Error(logger, "evaluation failed", err)
		return 1
	}

	printReport(os.Stdout, report)

	if *reportPath != "" {
		if err := evaldata.WriteReport(*reportPath, report); err != nil {
			logging.Error(logger, "writing report failed", err)
			return 1
		}
		logging.Info(logger, "report written", "path", *reportPath)
	}
	return 0
}

func printReport(out *os.File, report matching.Comparison) {
	fmt.Fprintf(out, "%-8s %5s %5s %5s %10s %8s %8s\n", "strategy", "tp", "fp", "fn", "precision", "recall", "f1")
	for _, e := range report.Evaluations {
		fmt.Fprintf(out, "%-8s %5d %5d %5d %10.3f %8.3f %8.3f\n",
			e.Strategy, e.TruePositives, e.FalsePositives, e.FalseNegatives, e.Precision, e.Recall, e.F1)
	}
	fmt.Fprintf(out, "\nbest f1: %s (%.3f)  best precision: %s (%.3f)  best recall: %s (%.3f)\n",
		report.BestF1.Strategy, report.BestF1.Value,
		report.BestPrecision.Strategy, report.BestPrecision.Value,
		report.BestRecall.Strategy, report.BestRecall.Value)
}
