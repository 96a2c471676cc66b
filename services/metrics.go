package services

import (
	"math"

	"marketplace-trends/models"
)

// Momentum is the percentage change from prev to last, rounded to 2
// decimals. A zero prev yields ±Inf (or NaN when last is also zero); the
// value is reported as is.
func Momentum(prev, last float64) float64 {
	return round2((last - prev) / prev * 100)
}

// Volatility is the sample standard deviation of the non-zero prices,
// rounded to 2 decimals. Zero means "not observed" and is excluded. NaN when
// fewer than two observations remain.
func Volatility(prices []float64) float64 {
	var sum float64
	n := 0
	for _, p := range prices {
		if p != 0 {
			sum += p
			n++
		}
	}
	if n < 2 {
		return math.NaN()
	}
	mean := sum / float64(n)

	var sq float64
	for _, p := range prices {
		if p != 0 {
			d := p - mean
			sq += d * d
		}
	}
	return round2(math.Sqrt(sq / float64(n-1)))
}

// ApplyMetrics fills Momentum from the two most recent revenue weeks and
// Volatility from all price weeks of every row. With fewer than two revenue
// weeks momentum stays NaN.
func ApplyMetrics(t *models.CombinedTable) {
	n := len(t.RevenueWeeks)
	for _, row := range t.Rows {
		row.Momentum = math.NaN()
		if n >= 2 {
			row.Momentum = Momentum(row.Revenue[n-2], row.Revenue[n-1])
		}
		row.Volatility = Volatility(row.Price)
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
