package models

import "time"

// Known column headers of a salesfinder category export.
const (
	ColSKU      = "SKU"
	ColTitle    = "Товар"
	ColPrice    = "Цена"
	ColReviews  = "Отзывы"
	ColRevenue  = "Выручка за 7 дн"
	ColCategory = "Категория"
	ColSeller   = "Продавец"
	ColStock    = "Текущий остаток (шт)"
)

// KnownColumns is the fixed column set retained from every snapshot.
var KnownColumns = []string{
	ColSKU, ColTitle, ColPrice, ColReviews, ColRevenue, ColCategory, ColSeller, ColStock,
}

// Snapshot is one discovered export file. Date is nil when the filename
// carries no recognizable date range.
type Snapshot struct {
	Path  string
	Date  *time.Time
	Index int
}

// ListingRow is one product line of a snapshot. A nil field means the
// column was absent from the file or the cell was empty; it is never zero.
type ListingRow struct {
	ProductID string
	Title     *string
	Price     *float64
	Reviews   *int64
	Revenue   *float64
	Category  *string
	Seller    *string
	Stock     *float64
}

// UnifiedRecord is a ListingRow tagged with its snapshot date and its
// position in the canonical (file path, row index) order.
type UnifiedRecord struct {
	ListingRow
	Date        *time.Time
	SourceIndex int
	RowIndex    int
}

// AggregatedRecord is the single row per (product id, date).
type AggregatedRecord struct {
	ProductID string
	Date      time.Time
	Title     *string
	Price     *float64
	Reviews   *int64
	Revenue   *float64
	Category  *string
	Seller    *string
	Stock     *float64
}

// LoadResult is the unified record set plus what was seen while loading it.
type LoadResult struct {
	Records []*UnifiedRecord
	// Present holds every known column that appeared in at least one snapshot.
	Present map[string]bool
	// Skipped lists files excluded in hardened mode.
	Skipped []string
	// RowsRead counts rows before the review filter.
	RowsRead int
}
