package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"StockForecast/internal/logger"
	"StockForecast/internal/model"
)

// LoadTimeout bounds a shared load once it no longer follows the caller's context.
const LoadTimeout = 60 * time.Second

// LoadFunc performs the uncached fetch.
type LoadFunc func(ctx context.Context) ([]model.OHLCV, error)

// Memo memoizes fetches by key. Concurrent misses on the same key share one load.
type Memo struct {
	store Store
	group singleflight.Group
	log   *logger.Logger
}

func NewMemo(store Store, log *logger.Logger) *Memo {
	return &Memo{store: store, log: log}
}

// Key builds the memo key for a ticker and request window. The end date is
// part of the key so a new calendar day fetches fresh history.
func Key(ticker string, start, end time.Time) string {
	return fmt.Sprintf("%s|%s|%s", ticker, start.Format("2006-01-02"), end.Format("2006-01-02"))
}

// KeyEndDate extracts the end-date part of a key built by Key.
func KeyEndDate(key string) string {
	i := strings.LastIndexByte(key, '|')
	if i < 0 {
		return ""
	}
	return key[i+1:]
}

// Do returns the cached value for key, calling load on a miss.
// A store read failure degrades to a fetch; a store write failure is logged.
func (m *Memo) Do(ctx context.Context, key string, load LoadFunc) ([]model.OHLCV, error) {
	if bars, ok, err := m.store.Get(ctx, key); err != nil {
		m.log.Warn("memo read failed, fetching", zap.String("key", key), zap.Error(err))
	} else if ok {
		m.log.Debug("memo hit", zap.String("key", key))
		return bars, nil
	}

	// The shared load outlives any single caller; each caller still stops
	// waiting when its own context ends.
	ch := m.group.DoChan(key, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), LoadTimeout)
		defer cancel()
		bars, err := load(lctx)
		if err != nil {
			return nil, err
		}
		if err := m.store.Set(lctx, key, bars); err != nil {
			m.log.Warn("memo write failed", zap.String("key", key), zap.Error(err))
		}
		return bars, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		m.log.Debug("memo miss", zap.String("key", key), zap.Bool("shared", res.Shared))
		return res.Val.([]model.OHLCV), nil
	}
}

// PurgeExceptEndDate drops every entry whose end date is not endDate.
func (m *Memo) PurgeExceptEndDate(ctx context.Context, endDate time.Time) error {
	want := endDate.Format("2006-01-02")
	return m.store.Purge(ctx, func(key string) bool {
		return KeyEndDate(key) == want
	})
}

// StoreName reports the backing store.
func (m *Memo) StoreName() string { return m.store.Name() }
