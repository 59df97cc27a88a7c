package collector

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"StockForecast/internal/apperr"
	"StockForecast/internal/cache"
	"StockForecast/internal/logger"
	"StockForecast/internal/model"
)

// MockFetcher returns deterministic bars for development and testing.
// Weekends are skipped; prices follow a slow drift with a yearly wave.
type MockFetcher struct {
	BasePrice float64
	Bars      []model.OHLCV // when set, returned as-is
	Err       error

	calls atomic.Int64
}

func (m *MockFetcher) Name() string { return "mock" }

// Calls returns how many times FetchDaily was invoked.
func (m *MockFetcher) Calls() int64 { return m.calls.Load() }

func (m *MockFetcher) FetchDaily(_ context.Context, _ string, start, end time.Time) ([]model.OHLCV, error) {
	m.calls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Bars != nil {
		return m.Bars, nil
	}
	return generateMockBars(m.BasePrice, start, end), nil
}

func generateMockBars(basePrice float64, start, end time.Time) []model.OHLCV {
	if basePrice == 0 {
		basePrice = 100
	}
	var bars []model.OHLCV
	for d, i := model.DateOf(start), 0; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		yearFrac := float64(d.YearDay()) / 365.25
		p := basePrice * (1 + float64(i)*0.0004 + 0.05*math.Sin(2*math.Pi*yearFrac))
		bars = append(bars, model.OHLCV{
			Time:   d,
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		})
		i++
	}
	return bars
}

// normalizeBars sorts bars ascending and keeps the last bar seen for each date.
func normalizeBars(bars []model.OHLCV) []model.OHLCV {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Time.Equal(b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

var tickerPattern = regexp.MustCompile(`^[A-Z0-9.\-^=]{1,15}$`)

// NormalizeTicker trims and upper-cases raw input and checks it looks like a ticker.
func NormalizeTicker(raw string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(raw))
	if !tickerPattern.MatchString(t) {
		return "", apperr.Newf(apperr.ErrCodeInvalidTicker, "invalid ticker %q", raw)
	}
	return t, nil
}

// Collector loads price frames through the memo.
type Collector struct {
	Fetcher Fetcher
	Memo    *cache.Memo
	Start   time.Time
	Now     func() time.Time

	log *logger.Logger
}

// NewCollector creates a new Collector fetching history from start to today.
func NewCollector(fetcher Fetcher, memo *cache.Memo, start time.Time, log *logger.Logger) *Collector {
	return &Collector{
		Fetcher: fetcher,
		Memo:    memo,
		Start:   start,
		Now:     time.Now,
		log:     log.Named("collector"),
	}
}

// Load returns the price frame for ticker covering [Start, today].
// Repeat calls on the same day are served from the memo.
func (c *Collector) Load(ctx context.Context, ticker string) (*model.PriceFrame, error) {
	symbol, err := NormalizeTicker(ticker)
	if err != nil {
		return nil, err
	}
	end := model.DateOf(c.Now())
	key := cache.Key(symbol, c.Start, end)

	bars, err := c.Memo.Do(ctx, key, func(ctx context.Context) ([]model.OHLCV, error) {
		started := time.Now()
		bars, err := c.Fetcher.FetchDaily(ctx, symbol, c.Start, end)
		if err != nil {
			return nil, err
		}
		c.log.Info("fetched history",
			zap.String("symbol", symbol),
			zap.String("source", c.Fetcher.Name()),
			zap.Int("bars", len(bars)),
			zap.Duration("took", time.Since(started)))
		return bars, nil
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		return nil, apperr.Newf(apperr.ErrCodeNoData, "no data found for %s", symbol)
	}

	return model.NewPriceFrame(&model.PriceSeries{
		Symbol:    symbol,
		Source:    c.Fetcher.Name(),
		Start:     c.Start,
		End:       end,
		Bars:      bars,
		FetchedAt: c.Now(),
	}), nil
}
