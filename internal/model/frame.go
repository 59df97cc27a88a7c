package model

import (
	"time"

	"github.com/moznion/go-optional"
)

// Moving average windows shown on the dashboard.
const (
	WindowMA50  = 50
	WindowMA100 = 100
	WindowMA200 = 200
)

// PriceRow is one trading day of the price frame plus its derived averages.
// An MA column is None until its window is full.
type PriceRow struct {
	Date   time.Time                `json:"date"`
	Open   float64                  `json:"open"`
	High   float64                  `json:"high"`
	Low    float64                  `json:"low"`
	Close  float64                  `json:"close"`
	Volume float64                  `json:"volume"`
	MA50   optional.Option[float64] `json:"ma50"`
	MA100  optional.Option[float64] `json:"ma100"`
	MA200  optional.Option[float64] `json:"ma200"`
}

// PriceFrame is the ascending-by-date table of daily rows for one ticker.
type PriceFrame struct {
	Symbol    string     `json:"symbol"`
	Source    string     `json:"source"`
	Rows      []PriceRow `json:"rows"`
	FetchedAt time.Time  `json:"fetched_at"`
}

// NewPriceFrame builds a frame from bars, truncating each bar time to its calendar date.
func NewPriceFrame(series *PriceSeries) *PriceFrame {
	rows := make([]PriceRow, len(series.Bars))
	for i, b := range series.Bars {
		rows[i] = PriceRow{
			Date:   DateOf(b.Time),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
			MA50:   optional.None[float64](),
			MA100:  optional.None[float64](),
			MA200:  optional.None[float64](),
		}
	}
	return &PriceFrame{
		Symbol:    series.Symbol,
		Source:    series.Source,
		Rows:      rows,
		FetchedAt: series.FetchedAt,
	}
}

// Closes returns the Close column.
func (f *PriceFrame) Closes() []float64 {
	out := make([]float64, len(f.Rows))
	for i, r := range f.Rows {
		out[i] = r.Close
	}
	return out
}

// Len returns the number of rows.
func (f *PriceFrame) Len() int { return len(f.Rows) }

// Last returns the most recent row and false when the frame is empty.
func (f *PriceFrame) Last() (PriceRow, bool) {
	if len(f.Rows) == 0 {
		return PriceRow{}, false
	}
	return f.Rows[len(f.Rows)-1], true
}

// DateOf strips the clock from t, keeping its calendar date in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
