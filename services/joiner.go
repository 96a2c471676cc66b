package services

import (
	"math"
	"sort"

	"marketplace-trends/models"
)

// Metadata is the static description of one product.
type Metadata struct {
	Title    *string
	Category *string
	Seller   *string
}

// BuildMetadata takes, per product, the first non-missing title, category
// and seller across its aggregated records in date order.
func BuildMetadata(records []*models.AggregatedRecord) map[string]*Metadata {
	ordered := make([]*models.AggregatedRecord, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].ProductID != ordered[j].ProductID {
			return ordered[i].ProductID < ordered[j].ProductID
		}
		return ordered[i].Date.Before(ordered[j].Date)
	})

	meta := make(map[string]*Metadata)
	for _, r := range ordered {
		m, ok := meta[r.ProductID]
		if !ok {
			m = &Metadata{}
			meta[r.ProductID] = m
		}
		if m.Title == nil {
			m.Title = r.Title
		}
		if m.Category == nil {
			m.Category = r.Category
		}
		if m.Seller == nil {
			m.Seller = r.Seller
		}
	}
	return meta
}

// JoinOptions says which optional metadata columns the output carries.
type JoinOptions struct {
	HasCategory bool
	HasSeller   bool
}

// Join outer-joins metadata with the three wide tables on product id. The
// row set is the union of ids of all four inputs, in ascending id order.
// Every week cell a product has no value for is set to 0; metadata stays nil
// when unknown. Derived metrics start as NaN.
func Join(meta map[string]*Metadata, price, revenue, stock *models.WideTable, opts JoinOptions) *models.CombinedTable {
	ids := make(map[string]struct{}, len(meta))
	for id := range meta {
		ids[id] = struct{}{}
	}
	for _, t := range []*models.WideTable{price, revenue, stock} {
		for id := range t.Values {
			ids[id] = struct{}{}
		}
	}
	sorted := make([]string, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	table := &models.CombinedTable{
		PriceWeeks:   price.Labels,
		RevenueWeeks: revenue.Labels,
		StockWeeks:   stock.Labels,
		HasCategory:  opts.HasCategory,
		HasSeller:    opts.HasSeller,
		Rows:         make([]*models.CombinedRow, 0, len(sorted)),
	}

	for _, id := range sorted {
		row := &models.CombinedRow{
			ProductID:  id,
			Price:      fillZero(price, id),
			Revenue:    fillZero(revenue, id),
			Stock:      fillZero(stock, id),
			Momentum:   math.NaN(),
			Volatility: math.NaN(),
		}
		if m, ok := meta[id]; ok {
			row.Title = m.Title
			if opts.HasCategory {
				row.Category = m.Category
			}
			if opts.HasSeller {
				row.Seller = m.Seller
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// fillZero returns the product's week values with every gap set to 0.
func fillZero(t *models.WideTable, id string) []float64 {
	out := make([]float64, len(t.Labels))
	for i, v := range t.Values[id] {
		if v != nil {
			out[i] = *v
		}
	}
	return out
}
