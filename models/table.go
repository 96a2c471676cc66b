package models

import (
	"fmt"
	"time"
)

// Metric names one pivoted numeric series.
type Metric string

const (
	MetricPrice   Metric = "Цена"
	MetricRevenue Metric = "Оборот"
	MetricStock   Metric = "Остаток"
)

// Derived metric column headers.
const (
	ColMomentum   = "Динамика оборота (%)"
	ColVolatility = "Динамика цены (%)"
	ColSellerHits = "Новых успешных товаров"
)

// WeekLabel returns the relative label for the i-th of n ascending dates.
func WeekLabel(i, n int) string {
	return fmt.Sprintf("Week -%d", n-i)
}

// Column returns the output header of a week column of this metric.
func (m Metric) Column(label string) string {
	return string(m) + " " + label
}

// WideTable is one metric pivoted by product id. Labels and Dates are
// ascending (oldest first); each Values slice is aligned with them and a
// nil entry means the product was not observed that week.
type WideTable struct {
	Metric Metric
	Dates  []time.Time
	Labels []string
	Values map[string][]*float64
}

// CombinedRow is one product of the consolidated table. Week slices are
// aligned with the table's label slices and are always fully populated.
type CombinedRow struct {
	ProductID  string
	Title      *string
	Category   *string
	Seller     *string
	Price      []float64
	Revenue    []float64
	Stock      []float64
	Momentum   float64
	Volatility float64
}

// CombinedTable is the consolidated per-product time series.
type CombinedTable struct {
	PriceWeeks   []string
	RevenueWeeks []string
	StockWeeks   []string
	HasCategory  bool
	HasSeller    bool
	Rows         []*CombinedRow
}

// SellerCount is one line of the breakout summary.
type SellerCount struct {
	Seller string
	Count  int
}

// Table is a generic tabular payload handed to the writers. Cells hold
// string, *string, int, int64 or float64 values; nil pointers and NaN are
// written as empty cells.
type Table struct {
	Name   string
	Header []string
	Rows   [][]any
}

// RunSummary holds what the terminal report prints after a run.
type RunSummary struct {
	Files        int
	UndatedFiles int
	SkippedFiles []string
	RowsRead     int
	RowsKept     int
	Aggregated   int
	Products     int
	ActiveRows   int
	TopMomentum  []*CombinedRow
	TopSellers   []SellerCount
	OutputPaths  []string
}
