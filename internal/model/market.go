package model

import "time"

// OHLCV represents a single daily candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries holds the raw bars returned by a fetcher for one request window.
type PriceSeries struct {
	Symbol    string
	Source    string
	Start     time.Time
	End       time.Time
	Bars      []OHLCV
	FetchedAt time.Time
}
