package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"marketplace-trends/models"
)

func TestMomentum(t *testing.T) {
	tests := []struct {
		prev, last float64
		want       float64
	}{
		{100, 150, 50},
		{100, 50, -50},
		{300, 400, 33.33},
		{3, 1, -66.67},
		{200, 200, 0},
	}

	for _, tt := range tests {
		got := Momentum(tt.prev, tt.last)
		if got != tt.want {
			t.Errorf("Momentum(%v, %v) = %v; want %v", tt.prev, tt.last, got, tt.want)
		}
	}
}

func TestMomentumZeroPrior(t *testing.T) {
	assert.True(t, math.IsInf(Momentum(0, 50), 1), "growth from zero is +Inf")
	assert.True(t, math.IsNaN(Momentum(0, 0)), "0/0 is NaN")
}

func TestVolatility(t *testing.T) {
	assert.Equal(t, 0.0, Volatility([]float64{0, 20, 20, 20}), "zeros are not observations")
	assert.Equal(t, 7.07, Volatility([]float64{100, 110}))
	assert.Equal(t, 1.0, Volatility([]float64{1, 2, 3}))
	assert.True(t, math.IsNaN(Volatility([]float64{0, 0, 42})), "one sample is undefined")
	assert.True(t, math.IsNaN(Volatility(nil)))
}

func TestApplyMetrics(t *testing.T) {
	tbl := &models.CombinedTable{
		PriceWeeks:   []string{"Week -3", "Week -2", "Week -1"},
		RevenueWeeks: []string{"Week -3", "Week -2", "Week -1"},
		Rows: []*models.CombinedRow{
			{ProductID: "A", Price: []float64{0, 100, 110}, Revenue: []float64{999, 100, 150}},
		},
	}

	ApplyMetrics(tbl)
	assert.Equal(t, 50.0, tbl.Rows[0].Momentum, "only the two most recent weeks count")
	assert.Equal(t, 7.07, tbl.Rows[0].Volatility)
}

func TestApplyMetricsSingleRevenueWeek(t *testing.T) {
	tbl := &models.CombinedTable{
		RevenueWeeks: []string{"Week -1"},
		Rows:         []*models.CombinedRow{{ProductID: "A", Revenue: []float64{10}}},
	}

	ApplyMetrics(tbl)
	assert.True(t, math.IsNaN(tbl.Rows[0].Momentum))
	assert.True(t, math.IsNaN(tbl.Rows[0].Volatility))
}
