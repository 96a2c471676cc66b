package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace-trends/config"
	"marketplace-trends/scraper/salesfinder"
	"marketplace-trends/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	from, to := salesfinder.LastWeekRange(time.Now())
	urls := salesfinder.BuildURLs(cfg.ReportURLTemplate, cfg.ReportCategories, from, to)

	logger.Info("=== Opening %d category reports for %s — %s ===",
		len(urls), from.Format("2006-01-02"), to.Format("2006-01-02"))
	logger.Info("Save the exports under %s", cfg.SourceRoot)

	opener := salesfinder.New(cfg, logger)
	if err := opener.Open(ctx, urls); err != nil {
		logger.Error("Could not open reports: %v", err)
		os.Exit(1)
	}
}
