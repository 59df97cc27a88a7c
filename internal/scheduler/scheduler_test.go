package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"StockForecast/internal/apperr"
	"StockForecast/internal/cache"
	"StockForecast/internal/calculator"
	"StockForecast/internal/collector"
	"StockForecast/internal/dashboard"
	"StockForecast/internal/forecast"
	"StockForecast/internal/logger"
	"StockForecast/internal/mocks"
	"StockForecast/internal/model"
	"StockForecast/internal/recorder"
)

var (
	day0    = time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	testNow = time.Date(2024, 6, 28, 9, 0, 0, 0, time.UTC)
)

type staticLoader struct {
	bars map[string][]model.OHLCV
}

func (l *staticLoader) Load(_ context.Context, ticker string) (*model.PriceFrame, error) {
	bars, ok := l.bars[ticker]
	if !ok {
		return nil, apperr.Newf(apperr.ErrCodeNoData, "no data found for %s", ticker)
	}
	return model.NewPriceFrame(&model.PriceSeries{Symbol: ticker, Bars: bars}), nil
}

type fakeSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeSender) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return f.err
}

func barsFrom(closes []float64) []model.OHLCV {
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{Time: day0.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c}
	}
	return bars
}

// goldenCrossBars returns a falling-then-rising series cut so that MA50
// crosses above MA200 on its final bar.
func goldenCrossBars(t *testing.T) []model.OHLCV {
	t.Helper()
	var closes []float64
	for i := 0; i < 300; i++ {
		closes = append(closes, 300-float64(i))
	}
	for i := 0; i < 300; i++ {
		closes = append(closes, float64(i)*2)
	}
	frame := model.NewPriceFrame(&model.PriceSeries{Bars: barsFrom(closes)})
	calculator.ApplyMovingAverages(frame)
	for _, c := range calculator.DetectCrossovers(frame) {
		if c.Kind == model.GoldenCross {
			n := int(c.Date.Sub(day0).Hours()/24) + 1
			return barsFrom(closes[:n])
		}
	}
	t.Fatal("series has no golden cross")
	return nil
}

func flatBars(n int) []model.OHLCV {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 50
	}
	return barsFrom(closes)
}

func newTestScheduler(loader dashboard.Loader, memo *cache.Memo, sender Sender, rec recorder.Recorder, watchlist ...string) *Scheduler {
	s := NewScheduler(context.Background(), loader, memo, nil, sender, rec, watchlist, logger.NewNop())
	s.Now = func() time.Time { return testNow }
	return s
}

func TestPrewarm_AlertsOnceForCrossOnLastBar(t *testing.T) {
	ctrl := gomock.NewController(t)
	rec := mocks.NewMockRecorder(ctrl)
	rec.EXPECT().RecordAlert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, evt *recorder.AlertEvent) error {
			assert.Equal(t, "UP", evt.Ticker)
			assert.Equal(t, string(model.GoldenCross), evt.Kind)
			assert.True(t, evt.Delivered)
			return nil
		}).Times(1)

	loader := &staticLoader{bars: map[string][]model.OHLCV{
		"UP":   goldenCrossBars(t),
		"FLAT": flatBars(250),
	}}
	sender := &fakeSender{}
	s := newTestScheduler(loader, nil, sender, rec, "UP", "FLAT", "GONE")

	results := s.Prewarm(context.Background())
	require.Len(t, results, 3)
	assert.Len(t, results[0].Alerts, 1)
	assert.Empty(t, results[1].Alerts)
	assert.Equal(t, 250, results[1].Rows)
	assert.True(t, apperr.HasCode(results[2].Err, apperr.ErrCodeNoData))

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "UP: Golden Cross")

	// the same cross is not announced twice
	results = s.Prewarm(context.Background())
	assert.Empty(t, results[0].Alerts)
	assert.Len(t, sender.sent, 1)
}

func TestPrewarm_WithoutNotifierStillRecords(t *testing.T) {
	ctrl := gomock.NewController(t)
	rec := mocks.NewMockRecorder(ctrl)
	rec.EXPECT().RecordAlert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, evt *recorder.AlertEvent) error {
			assert.False(t, evt.Delivered)
			return nil
		})

	loader := &staticLoader{bars: map[string][]model.OHLCV{"UP": goldenCrossBars(t)}}
	s := newTestScheduler(loader, nil, nil, rec, "UP")
	results := s.Prewarm(context.Background())
	assert.Len(t, results[0].Alerts, 1)
}

func TestPrewarm_SendFailureMarksUndelivered(t *testing.T) {
	ctrl := gomock.NewController(t)
	rec := mocks.NewMockRecorder(ctrl)
	rec.EXPECT().RecordAlert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, evt *recorder.AlertEvent) error {
			assert.False(t, evt.Delivered)
			return nil
		})

	loader := &staticLoader{bars: map[string][]model.OHLCV{"UP": goldenCrossBars(t)}}
	s := newTestScheduler(loader, nil, &fakeSender{err: errors.New("offline")}, rec, "UP")
	s.Prewarm(context.Background())
}

func TestPrewarm_PurgesPastDays(t *testing.T) {
	store := cache.NewMemoryStore()
	memo := cache.NewMemo(store, logger.NewNop())
	ctx := context.Background()
	load := func(context.Context) ([]model.OHLCV, error) { return flatBars(3), nil }

	start := time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := memo.Do(ctx, cache.Key("AAPL", start, testNow.AddDate(0, 0, -1)), load)
	require.NoError(t, err)
	_, err = memo.Do(ctx, cache.Key("AAPL", start, model.DateOf(testNow)), load)
	require.NoError(t, err)
	require.Equal(t, 2, store.Len())

	s := newTestScheduler(&staticLoader{}, memo, nil, nil)
	s.Prewarm(ctx)
	assert.Equal(t, 1, store.Len())
}

func TestRegister(t *testing.T) {
	s := newTestScheduler(&staticLoader{}, nil, nil, nil)
	require.NoError(t, s.Register("0 30 6 * * 1-5"))
	assert.Len(t, s.Cron.Entries(), 1)
	assert.Error(t, s.Register("not a cron"))
}

func TestHandleCommand(t *testing.T) {
	c := collector.NewCollector(&collector.MockFetcher{BasePrice: 80},
		cache.NewMemo(cache.NewMemoryStore(), logger.NewNop()),
		time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), logger.NewNop())
	c.Now = func() time.Time { return testNow }
	svc := dashboard.NewService(c, nil, forecast.DefaultOptions(), 3, logger.NewNop())
	s := NewScheduler(context.Background(), c, nil, svc, nil, nil, nil, logger.NewNop())
	ctx := context.Background()

	assert.Contains(t, s.HandleCommand(ctx, "/summary aapl"), "<b>AAPL</b>")
	assert.Contains(t, s.HandleCommand(ctx, "/forecast aapl 2"), "forecast, 2 year(s)")
	assert.Contains(t, s.HandleCommand(ctx, "/forecast aapl two"), "whole number")
	assert.Contains(t, s.HandleCommand(ctx, "/summary <bad>"), "invalid ticker")
	assert.Contains(t, s.HandleCommand(ctx, "hello"), "/summary TICKER")
	assert.Contains(t, s.HandleCommand(ctx, "/summary"), "/summary TICKER")
}
