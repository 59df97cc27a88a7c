package cache

import (
	"context"

	"StockForecast/internal/model"
)

// Store holds fetched bar series by key.
type Store interface {
	Get(ctx context.Context, key string) ([]model.OHLCV, bool, error)
	Set(ctx context.Context, key string, bars []model.OHLCV) error
	// Purge removes every entry for which keep returns false.
	Purge(ctx context.Context, keep func(key string) bool) error
	Name() string
}
