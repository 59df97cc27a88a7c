package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"StockForecast/internal/dashboard"
	"StockForecast/internal/model"
)

func TestRenderForecast(t *testing.T) {
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	ma50 := 101.0
	d := &dashboard.Dashboard{
		Ticker: "AAPL",
		Years:  1,
		Summary: &model.FrameSummary{
			LastDate: day, LastClose: 102.5, MA50: &ma50,
			High52w: 120, Low52w: 80, Position52w: 0.5,
			Alignment: []string{"MA50 above MA100: short-term momentum strengthening"},
		},
		Crossovers: []model.Crossover{{Date: day, Fast: 50, Slow: 100, Kind: model.MomentumUp}},
		Tail: []model.ForecastRow{
			{DS: day.AddDate(1, 0, 0), Trend: 110, YHatLower: 100, YHatUpper: 120, YHat: 111.25},
		},
	}

	out := renderForecast(d)
	assert.Contains(t, out, "AAPL")
	assert.Contains(t, out, "Last close 102.50 on 2024-06-03")
	assert.Contains(t, out, "MA50 101.00  MA100 -  MA200 -")
	assert.Contains(t, out, "Momentum strengthening on 2024-06-03")
	assert.Contains(t, out, "yhat_lower")
	assert.Contains(t, out, "2025-06-03")
	assert.Contains(t, out, "111.25")
}
