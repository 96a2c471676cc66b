package services

import (
	"sort"
	"time"

	"marketplace-trends/models"
)

// WeekLabels labels n ascending dates: the oldest is "Week -n", the most
// recent "Week -1".
func WeekLabels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = models.WeekLabel(i, n)
	}
	return labels
}

// metricValue selects the pivoted value of a record.
func metricValue(m models.Metric) func(*models.AggregatedRecord) *float64 {
	switch m {
	case models.MetricPrice:
		return func(r *models.AggregatedRecord) *float64 { return r.Price }
	case models.MetricRevenue:
		return func(r *models.AggregatedRecord) *float64 { return r.Revenue }
	case models.MetricStock:
		return func(r *models.AggregatedRecord) *float64 { return r.Stock }
	}
	return func(*models.AggregatedRecord) *float64 { return nil }
}

// Pivot spreads one metric into a product × week table. The week axis is
// built from the dates at which this metric has values, so two metrics can
// number their weeks differently when a column is missing from a snapshot.
func Pivot(records []*models.AggregatedRecord, metric models.Metric) *models.WideTable {
	value := metricValue(metric)

	seen := make(map[int64]time.Time)
	for _, r := range records {
		if value(r) != nil {
			seen[dateKey(r.Date)] = r.Date
		}
	}
	dates := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	pos := make(map[int64]int, len(dates))
	for i, d := range dates {
		pos[dateKey(d)] = i
	}

	t := &models.WideTable{
		Metric: metric,
		Dates:  dates,
		Labels: WeekLabels(len(dates)),
		Values: make(map[string][]*float64),
	}
	for _, r := range records {
		v := value(r)
		if v == nil {
			continue
		}
		row, ok := t.Values[r.ProductID]
		if !ok {
			row = make([]*float64, len(dates))
			t.Values[r.ProductID] = row
		}
		row[pos[dateKey(r.Date)]] = v
	}
	return t
}
