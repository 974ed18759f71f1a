// Command edaflow runs the EDA pipeline over a CSV file and prints the
// report as JSON. It can also list and show reports kept in a persistent
// store.
//
// Usage:
//
//	edaflow [-env file] data.csv
//	edaflow -list 20
//	edaflow -show <run-id>
//
// Settings come from the environment and an optional .env file; see
// internal/config. Without OPENAI_API_KEY the narrative is templated.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/leofalp/edaflow/core/client/middleware"
	"github.com/leofalp/edaflow/core/dataset"
	"github.com/leofalp/edaflow/core/narrative"
	"github.com/leofalp/edaflow/core/report"
	"github.com/leofalp/edaflow/core/stats"
	"github.com/leofalp/edaflow/core/validation"
	"github.com/leofalp/edaflow/core/viz"
	"github.com/leofalp/edaflow/internal/config"
	"github.com/leofalp/edaflow/patterns/pipeline"
	"github.com/leofalp/edaflow/providers/ai/openai"
	"github.com/leofalp/edaflow/providers/observability/slogobs"
	"github.com/leofalp/edaflow/providers/renderer"
	"github.com/leofalp/edaflow/providers/reportstore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "edaflow: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	flags := flag.NewFlagSet("edaflow", flag.ContinueOnError)
	envFile := flags.String("env", ".env", "dotenv file merged into the environment")
	listLimit := flags.Int("list", 0, "list the newest N stored reports instead of running")
	showRunID := flags.String("show", "", "print a stored report by run ID instead of running")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		return err
	}

	logOptions := []slogobs.Option{
		slogobs.WithFormat(slogobs.ParseFormat(cfg.LogFormat)),
		slogobs.WithLevel(slogobs.ParseLevel(cfg.LogLevel)),
		slogobs.WithOutput(os.Stderr),
	}
	logger := slogobs.NewLogger(logOptions...)
	observer := slogobs.New(slogobs.WithLogger(logger))

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	switch {
	case *showRunID != "":
		rep, err := store.Load(ctx, *showRunID)
		if err != nil {
			return err
		}
		return writeJSON(stdout, rep)

	case *listLimit > 0:
		entries, err := store.List(ctx, *listLimit)
		if err != nil {
			return err
		}
		return writeJSON(stdout, entries)
	}

	if flags.NArg() != 1 {
		return errors.New("expected exactly one CSV file argument")
	}
	ds, err := loadDataset(flags.Arg(0))
	if err != nil {
		return err
	}

	orchestrator, err := buildOrchestrator(cfg, logger, observer, store)
	if err != nil {
		return err
	}

	rep, err := orchestrator.Run(ctx, ds)
	if err != nil {
		return err
	}
	logger.Info("run finished",
		slog.String("run_id", rep.RunID),
		slog.Any("failed_stages", rep.Failed()),
		slog.String("store", string(cfg.Store)),
	)
	return writeJSON(stdout, rep)
}

func loadDataset(path string) (*dataset.Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()
	return readCSV(file)
}

func buildOrchestrator(cfg config.Config, logger *slog.Logger, observer *slogobs.Observer, store reportstore.Store) (*pipeline.Orchestrator, error) {
	narrator, err := buildNarrator(cfg, logger, observer)
	if err != nil {
		return nil, err
	}

	return pipeline.New(
		validation.New(
			validation.WithMaxMissingFraction(cfg.MaxMissingFraction),
			validation.WithMaxDuplicateFraction(cfg.MaxDuplicateFraction),
		),
		stats.New(),
		viz.New(renderer.NewStatic(cfg.ArtifactBaseURL)),
		narrator,
		pipeline.WithMaxRetries(cfg.MaxRetries),
		pipeline.WithStageTimeout(report.StageNarrative, cfg.NarrativeStageTimeout()),
		pipeline.WithObserver(observer),
		pipeline.WithSink(store),
	)
}

func buildNarrator(cfg config.Config, logger *slog.Logger, observer *slogobs.Observer) (pipeline.Narrator, error) {
	if !cfg.HasLanguageModel() {
		logger.Warn("OPENAI_API_KEY not set, narrative will be templated")
		return narrative.Templated{}, nil
	}

	provider := openai.New().WithAPIKey(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		provider = provider.WithBaseURL(cfg.OpenAIBaseURL)
	}

	agent, err := narrative.New(provider,
		narrative.WithModel(cfg.Model),
		narrative.WithAttemptTimeout(cfg.NarrativeTimeout),
		narrative.WithLogger(logger, middleware.LogLevelStandard),
		narrative.WithObserver(observer),
	)
	if err != nil {
		return nil, err
	}
	return agent, nil
}

func writeJSON(output io.Writer, value any) error {
	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
