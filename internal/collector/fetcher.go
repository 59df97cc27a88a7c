package collector

import (
	"context"
	"time"

	"StockForecast/internal/model"
)

// Fetcher retrieves daily bars for a symbol between two calendar dates, both inclusive.
// Implementations return bars in ascending date order with one bar per date.
type Fetcher interface {
	FetchDaily(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error)
	Name() string
}
