package services

import (
	"context"
	"fmt"
	"path/filepath"

	"marketplace-trends/models"
	"marketplace-trends/storage"
	"marketplace-trends/utils"
)

const topN = 10

// PipelineOptions configures one consolidation run.
type PipelineOptions struct {
	SourceRoot      string
	OutputDir       string
	BreakoutRevenue float64
	Loader          LoaderOptions
}

// Result is everything a run derives before it is written out.
type Result struct {
	Combined *models.CombinedTable
	Sellers  []models.SellerCount
	Summary  *models.RunSummary
}

// Pipeline wires scanning, loading, aggregation, pivoting, joining, metrics,
// ranking and export together.
type Pipeline struct {
	logger  *utils.Logger
	opts    PipelineOptions
	scanner *Scanner
	loader  *Loader
	writer  storage.TableWriter
}

// NewPipeline creates a Pipeline exporting through writer.
func NewPipeline(logger *utils.Logger, opts PipelineOptions, writer storage.TableWriter) *Pipeline {
	return &Pipeline{
		logger:  logger,
		opts:    opts,
		scanner: NewScanner(logger),
		loader:  NewLoader(logger, opts.Loader),
		writer:  writer,
	}
}

// Run builds both tables and writes them to the output directory.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	res, err := p.Build(ctx)
	if err != nil {
		return nil, err
	}
	if err := p.Export(res); err != nil {
		return nil, err
	}
	return res, nil
}

// Build runs every stage up to, but not including, export.
func (p *Pipeline) Build(ctx context.Context) (*Result, error) {
	snapshots, err := p.scanner.Scan(p.opts.SourceRoot)
	if err != nil {
		return nil, err
	}

	summary := &models.RunSummary{Files: len(snapshots)}
	for _, s := range snapshots {
		if s.Date == nil {
			summary.UndatedFiles++
		}
	}

	loaded, err := p.loader.Load(ctx, snapshots)
	if err != nil {
		return nil, err
	}
	summary.SkippedFiles = loaded.Skipped
	summary.RowsRead = loaded.RowsRead
	summary.RowsKept = len(loaded.Records)

	aggregated, undated := Aggregate(loaded.Records)
	if undated > 0 {
		p.logger.Warn("[pipeline] Dropped %d rows from files without a date range in their name", undated)
	}
	summary.Aggregated = len(aggregated)
	p.logger.Info("[pipeline] Aggregated %d rows into %d product-week records", len(loaded.Records)-undated, len(aggregated))

	price := Pivot(aggregated, models.MetricPrice)
	revenue := Pivot(aggregated, models.MetricRevenue)
	stock := Pivot(aggregated, models.MetricStock)
	p.logger.Debug("[pipeline] Weeks — price: %d | revenue: %d | stock: %d",
		len(price.Labels), len(revenue.Labels), len(stock.Labels))

	combined := Join(BuildMetadata(aggregated), price, revenue, stock, JoinOptions{
		HasCategory: loaded.Present[models.ColCategory],
		HasSeller:   loaded.Present[models.ColSeller],
	})
	summary.Products = len(combined.Rows)

	if len(combined.RevenueWeeks) < 2 {
		p.logger.Warn("[pipeline] Only %d revenue week(s) found, activity filter and momentum skipped",
			len(combined.RevenueWeeks))
	}
	combined = FilterActive(combined)
	ApplyMetrics(combined)
	RankByMomentum(combined.Rows)
	summary.ActiveRows = len(combined.Rows)

	sellers := BreakoutSellers(combined.Rows, p.opts.BreakoutRevenue)

	summary.TopMomentum = head(combined.Rows, topN)
	if len(sellers) > topN {
		summary.TopSellers = sellers[:topN]
	} else {
		summary.TopSellers = sellers
	}

	p.logger.Info("[pipeline] %d products, %d active in the last two weeks, %d sellers with breakout products",
		summary.Products, summary.ActiveRows, len(sellers))

	return &Result{Combined: combined, Sellers: sellers, Summary: summary}, nil
}

// Export writes the consolidated table and the seller summary.
func (p *Pipeline) Export(res *Result) error {
	for _, t := range []*models.Table{CombinedToTable(res.Combined), SellersToTable(res.Sellers)} {
		path := filepath.Join(p.opts.OutputDir, t.Name+p.writer.Ext())
		if err := p.writer.Write(path, t); err != nil {
			return fmt.Errorf("pipeline: export %s: %w", t.Name, err)
		}
		p.logger.Info("[pipeline] Wrote %d rows to %s", len(t.Rows), path)
		res.Summary.OutputPaths = append(res.Summary.OutputPaths, path)
	}
	return nil
}

func head(rows []*models.CombinedRow, n int) []*models.CombinedRow {
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}
