package services

import (
	"sort"
	"time"

	"marketplace-trends/models"
)

type aggKey struct {
	id   string
	date int64
}

type accumulator struct {
	rec        *models.AggregatedRecord
	priceSum   float64
	priceN     int
	revenueSum float64
	revenueN   int
	stockSum   float64
	stockN     int
}

// SortCanonical stably orders records by (source file index, row index).
func SortCanonical(records []*models.UnifiedRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.SourceIndex != b.SourceIndex {
			return a.SourceIndex < b.SourceIndex
		}
		return a.RowIndex < b.RowIndex
	})
}

// Aggregate collapses duplicate (product id, date) records: price and stock
// are averaged, revenue summed, reviews maximised, and title, category and
// seller take the first non-missing value in canonical order. Missing values
// never take part in a reduction; a column missing on every duplicate stays
// missing. Records without a date cannot be placed on the time axis and are
// dropped; their count is returned.
//
// The result is ordered by product id, then date.
func Aggregate(records []*models.UnifiedRecord) ([]*models.AggregatedRecord, int) {
	ordered := make([]*models.UnifiedRecord, len(records))
	copy(ordered, records)
	SortCanonical(ordered)

	groups := make(map[aggKey]*accumulator)
	undated := 0

	for _, r := range ordered {
		if r.Date == nil {
			undated++
			continue
		}
		key := aggKey{id: r.ProductID, date: dateKey(*r.Date)}
		acc, ok := groups[key]
		if !ok {
			acc = &accumulator{rec: &models.AggregatedRecord{
				ProductID: r.ProductID,
				Date:      *r.Date,
			}}
			groups[key] = acc
		}
		acc.add(r)
	}

	out := make([]*models.AggregatedRecord, 0, len(groups))
	for _, acc := range groups {
		out = append(out, acc.finish())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, undated
}

func (a *accumulator) add(r *models.UnifiedRecord) {
	rec := a.rec
	if rec.Title == nil {
		rec.Title = r.Title
	}
	if rec.Category == nil {
		rec.Category = r.Category
	}
	if rec.Seller == nil {
		rec.Seller = r.Seller
	}
	if r.Reviews != nil && (rec.Reviews == nil || *r.Reviews > *rec.Reviews) {
		v := *r.Reviews
		rec.Reviews = &v
	}
	if r.Price != nil {
		a.priceSum += *r.Price
		a.priceN++
	}
	if r.Revenue != nil {
		a.revenueSum += *r.Revenue
		a.revenueN++
	}
	if r.Stock != nil {
		a.stockSum += *r.Stock
		a.stockN++
	}
}

func (a *accumulator) finish() *models.AggregatedRecord {
	rec := a.rec
	if a.priceN > 0 {
		rec.Price = floatPtr(a.priceSum / float64(a.priceN))
	}
	if a.revenueN > 0 {
		rec.Revenue = floatPtr(a.revenueSum)
	}
	if a.stockN > 0 {
		rec.Stock = floatPtr(a.stockSum / float64(a.stockN))
	}
	return rec
}

func floatPtr(f float64) *float64 { return &f }

// dateKey is the map key used for a snapshot date.
func dateKey(t time.Time) int64 { return t.Unix() }
