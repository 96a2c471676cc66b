package services

import (
	"math"
	"sort"

	"marketplace-trends/models"
)

// FilterActive keeps products that sold in each of the two most recent
// revenue weeks (both values strictly positive). With fewer than two revenue
// weeks there is nothing to compare and every row is kept.
func FilterActive(t *models.CombinedTable) *models.CombinedTable {
	n := len(t.RevenueWeeks)
	if n < 2 {
		return t
	}
	out := *t
	out.Rows = make([]*models.CombinedRow, 0, len(t.Rows))
	for _, row := range t.Rows {
		if row.Revenue[n-2] > 0 && row.Revenue[n-1] > 0 {
			out.Rows = append(out.Rows, row)
		}
	}
	return &out
}

// RankByMomentum sorts rows by momentum, highest first. NaN sorts last and
// ties keep their current order.
func RankByMomentum(rows []*models.CombinedRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Momentum, rows[j].Momentum
		if math.IsNaN(a) || math.IsNaN(b) {
			return !math.IsNaN(a) && math.IsNaN(b)
		}
		return a > b
	})
}

// IsBreakout reports whether the most recent revenue is above threshold and
// above the prior week's.
func IsBreakout(row *models.CombinedRow, threshold float64) bool {
	n := len(row.Revenue)
	if n < 2 {
		return false
	}
	last, prev := row.Revenue[n-1], row.Revenue[n-2]
	return last > threshold && last > prev
}

// BreakoutSellers counts breakout products per seller, most first, ties by
// seller name. Rows without a seller are not counted.
func BreakoutSellers(rows []*models.CombinedRow, threshold float64) []models.SellerCount {
	counts := make(map[string]int)
	for _, row := range rows {
		if row.Seller == nil || !IsBreakout(row, threshold) {
			continue
		}
		counts[*row.Seller]++
	}

	out := make([]models.SellerCount, 0, len(counts))
	for seller, n := range counts {
		out = append(out, models.SellerCount{Seller: seller, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Seller < out[j].Seller
	})
	return out
}

// CombinedToTable lays the consolidated table out for export: SKU, title,
// optional category and seller, price, revenue and stock weeks, then the
// two derived metrics.
func CombinedToTable(t *models.CombinedTable) *models.Table {
	header := []string{models.ColSKU, models.ColTitle}
	if t.HasCategory {
		header = append(header, models.ColCategory)
	}
	if t.HasSeller {
		header = append(header, models.ColSeller)
	}
	for _, w := range t.PriceWeeks {
		header = append(header, models.MetricPrice.Column(w))
	}
	for _, w := range t.RevenueWeeks {
		header = append(header, models.MetricRevenue.Column(w))
	}
	for _, w := range t.StockWeeks {
		header = append(header, models.MetricStock.Column(w))
	}
	header = append(header, models.ColMomentum, models.ColVolatility)

	out := &models.Table{Name: CombinedTableName, Header: header, Rows: make([][]any, 0, len(t.Rows))}
	for _, r := range t.Rows {
		cells := make([]any, 0, len(header))
		cells = append(cells, r.ProductID, r.Title)
		if t.HasCategory {
			cells = append(cells, r.Category)
		}
		if t.HasSeller {
			cells = append(cells, r.Seller)
		}
		for _, series := range [][]float64{r.Price, r.Revenue, r.Stock} {
			for _, v := range series {
				cells = append(cells, v)
			}
		}
		cells = append(cells, r.Momentum, r.Volatility)
		out.Rows = append(out.Rows, cells)
	}
	return out
}

// SellersToTable lays the breakout summary out for export.
func SellersToTable(sellers []models.SellerCount) *models.Table {
	out := &models.Table{
		Name:   SellerTableName,
		Header: []string{models.ColSeller, models.ColSellerHits},
		Rows:   make([][]any, 0, len(sellers)),
	}
	for _, s := range sellers {
		out.Rows = append(out.Rows, []any{s.Seller, s.Count})
	}
	return out
}
