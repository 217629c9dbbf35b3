package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"cycleload/internal/config"
	"cycleload/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	verbose := flag.Bool("verbose", false, "enable debug-level logging")
	flag.Parse()

	logger, err := newLogger(*verbose)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	cfg, err := config.Load(*configPath)
	if errors.Is(err, config.ErrNoConfig) {
		fmt.Printf("No config file found at %s. Create one with your athlete thresholds and data paths, then re-run.\n", *configPath)
		return nil
	}
	if err != nil {
		sugar.Errorw("loading configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p := &pipeline.Pipeline{Config: cfg, Logger: sugar}
	result, err := p.Run(ctx)
	if err != nil {
		sugar.Errorw("pipeline run failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Processed %d new activit(y/ies), skipped %d.\n", result.ActivitiesFetched, result.ActivitiesSkipped)
	fmt.Printf("Training load: CTL %.1f  ATL %.1f  TSB %.1f  ACWR %.2f\n",
		result.TrainingLoad.CTL, result.TrainingLoad.ATL, result.TrainingLoad.TSB, result.TrainingLoad.ACWR)
	if len(result.Errors) > 0 {
		fmt.Printf("%d activities were skipped due to errors; see the log for details.\n", len(result.Errors))
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = ""
	return cfg.Build()
}
