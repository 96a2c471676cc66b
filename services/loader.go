package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"marketplace-trends/models"
	"marketplace-trends/storage"
	"marketplace-trends/utils"
)

// ErrMissingIDColumn is returned for a snapshot without a product id column.
var ErrMissingIDColumn = errors.New("product id column missing")

// LoaderOptions tunes how snapshots are read and filtered.
type LoaderOptions struct {
	// ReviewThreshold drops rows whose review count is >= this value.
	ReviewThreshold int
	// Concurrency bounds how many files are read at once.
	Concurrency int
	// SkipBadFiles logs and excludes unreadable files instead of failing the run.
	SkipBadFiles bool
}

// Loader reads snapshots into one unified record set.
type Loader struct {
	logger *utils.Logger
	opts   LoaderOptions
	read   func(path string) (*storage.Sheet, error)
}

// NewLoader creates a Loader reading files through the storage package.
func NewLoader(logger *utils.Logger, opts LoaderOptions) *Loader {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Loader{logger: logger, opts: opts, read: storage.ReadFile}
}

type fileResult struct {
	records []*models.UnifiedRecord
	present map[string]bool
	skipped bool

	// ambiguous counts numeric cells left empty because "1,234" could not
	// be read safely.
	ambiguous int
}

// Load reads every snapshot, keeps the known columns, tags rows with the
// snapshot date and drops rows at or above the review threshold. Files are
// read in parallel but results are assembled in snapshot order, so the
// record order is the canonical (file path, row index) order.
func (l *Loader) Load(ctx context.Context, snapshots []models.Snapshot) (*models.LoadResult, error) {
	results := make([]fileResult, len(snapshots))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.Concurrency)

	for i, snap := range snapshots {
		i, snap := i, snap
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := l.loadFile(snap)
			if err != nil {
				if !l.opts.SkipBadFiles {
					return err
				}
				l.logger.Warn("[loader] Excluding %s: %v", snap.Path, err)
				results[i] = fileResult{skipped: true}
				return nil
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &models.LoadResult{Present: make(map[string]bool)}
	var all []*models.UnifiedRecord
	for i, res := range results {
		if res.skipped {
			out.Skipped = append(out.Skipped, snapshots[i].Path)
			continue
		}
		for col := range res.present {
			out.Present[col] = true
		}
		all = append(all, res.records...)
	}
	out.RowsRead = len(all)
	out.Records = FilterByReviews(all, l.opts.ReviewThreshold)

	l.logger.Info("[loader] Loaded %d rows from %d files, %d kept below %d reviews",
		out.RowsRead, len(snapshots)-len(out.Skipped), len(out.Records), l.opts.ReviewThreshold)
	return out, nil
}

func (l *Loader) loadFile(snap models.Snapshot) (fileResult, error) {
	sheet, err := l.read(snap.Path)
	if err != nil {
		return fileResult{}, fmt.Errorf("loader: %w", err)
	}
	res, err := normalizeSheet(sheet, snap)
	if err != nil {
		return fileResult{}, fmt.Errorf("loader: %s: %w", snap.Path, err)
	}
	l.logger.Debug("[loader] %s: %d rows, columns %v", snap.Path, len(res.records), presentList(res.present))
	for _, col := range models.KnownColumns {
		if !res.present[col] {
			l.logger.Debug("[loader] %s has no %q column", snap.Path, col)
		}
	}
	if res.ambiguous > 0 {
		l.logger.Warn("[loader] %s: %d numeric cells like \"15,000\" are ambiguous and were left empty",
			snap.Path, res.ambiguous)
	}
	if !res.present[models.ColReviews] && len(res.records) > 0 {
		l.logger.Warn("[loader] %s has no %q column, all its rows fail the review filter",
			snap.Path, models.ColReviews)
	}
	return res, nil
}

// normalizeSheet maps a raw sheet onto the known column set. Columns the
// sheet lacks stay nil on every row; rows with an empty product id are dropped.
func normalizeSheet(sheet *storage.Sheet, snap models.Snapshot) (fileResult, error) {
	res := fileResult{present: make(map[string]bool)}
	if len(sheet.Header) == 0 && len(sheet.Rows) == 0 {
		return res, nil
	}

	idx := make(map[string]int, len(models.KnownColumns))
	for i, h := range sheet.Header {
		name := normaliseHeader(h)
		if _, known := knownHeaders[name]; !known {
			continue
		}
		if _, dup := idx[name]; !dup {
			idx[name] = i
			res.present[name] = true
		}
	}
	if _, ok := idx[models.ColSKU]; !ok {
		return res, ErrMissingIDColumn
	}

	cell := func(row []string, col string) (string, bool) {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return "", ok
		}
		return row[i], true
	}

	number := func(v string) *float64 {
		if isAmbiguousNumber(v) {
			res.ambiguous++
		}
		return parseNumber(v)
	}

	res.records = make([]*models.UnifiedRecord, 0, len(sheet.Rows))
	for r, row := range sheet.Rows {
		id, _ := cell(row, models.ColSKU)
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}

		rec := &models.UnifiedRecord{
			ListingRow:  models.ListingRow{ProductID: id},
			Date:        snap.Date,
			SourceIndex: snap.Index,
			RowIndex:    r,
		}
		if v, ok := cell(row, models.ColTitle); ok {
			rec.Title = parseText(v)
		}
		if v, ok := cell(row, models.ColCategory); ok {
			rec.Category = parseText(v)
		}
		if v, ok := cell(row, models.ColSeller); ok {
			rec.Seller = parseText(v)
		}
		if v, ok := cell(row, models.ColPrice); ok {
			rec.Price = number(v)
		}
		if v, ok := cell(row, models.ColRevenue); ok {
			rec.Revenue = number(v)
		}
		if v, ok := cell(row, models.ColStock); ok {
			rec.Stock = number(v)
		}
		if v, ok := cell(row, models.ColReviews); ok {
			if isAmbiguousNumber(v) {
				res.ambiguous++
			}
			rec.Reviews = parseCount(v)
		}
		res.records = append(res.records, rec)
	}
	return res, nil
}

// FilterByReviews keeps records with a known review count below threshold.
func FilterByReviews(records []*models.UnifiedRecord, threshold int) []*models.UnifiedRecord {
	kept := make([]*models.UnifiedRecord, 0, len(records))
	for _, r := range records {
		if r.Reviews != nil && *r.Reviews < int64(threshold) {
			kept = append(kept, r)
		}
	}
	return kept
}

func presentList(present map[string]bool) []string {
	var cols []string
	for _, c := range models.KnownColumns {
		if present[c] {
			cols = append(cols, c)
		}
	}
	return cols
}
