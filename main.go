package main

import (
	"context"
	"os"

	"marketplace-trends/config"
	"marketplace-trends/services"
	"marketplace-trends/storage"
	"marketplace-trends/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(cfg.Debug)

	logger.Info("=== Marketplace trend consolidation starting ===")
	logger.Info("Config — source: %s | output: %s (%s) | review cap: %d | breakout: %.0f | workers: %d",
		cfg.SourceRoot, cfg.OutputDir, cfg.OutputFormat, cfg.ReviewThreshold, cfg.BreakoutRevenue, cfg.LoadConcurrency)

	writer, err := storage.NewWriter(cfg.OutputFormat)
	if err != nil {
		logger.Error("Invalid OUTPUT_FORMAT: %v", err)
		os.Exit(1)
	}

	pipeline := services.NewPipeline(logger, services.PipelineOptions{
		SourceRoot:      cfg.SourceRoot,
		OutputDir:       cfg.OutputDir,
		BreakoutRevenue: cfg.BreakoutRevenue,
		Loader: services.LoaderOptions{
			ReviewThreshold: cfg.ReviewThreshold,
			Concurrency:     cfg.LoadConcurrency,
			SkipBadFiles:    cfg.SkipBadFiles,
		},
	}, writer)

	res, err := pipeline.Run(context.Background())
	if err != nil {
		logger.Error("Run failed: %v", err)
		os.Exit(1)
	}

	services.NewReporter(os.Stdout).Print(res.Summary)
}
