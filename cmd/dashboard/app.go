package main

import (
	"go.uber.org/zap"

	"StockForecast/internal/cache"
	"StockForecast/internal/collector"
	"StockForecast/internal/config"
	"StockForecast/internal/dashboard"
	"StockForecast/internal/forecast"
	"StockForecast/internal/logger"
	"StockForecast/internal/recorder"
)

// app holds the long-lived components shared by the subcommands.
type app struct {
	collector *collector.Collector
	memo      *cache.Memo
	service   *dashboard.Service
	recorder  recorder.Recorder
	closers   []func() error
}

func newApp(cfg *config.Config, log *logger.Logger) (*app, error) {
	a := &app{}

	var fetcher collector.Fetcher
	if cfg.DataSource.PolygonAPIKey != "" {
		pf, err := collector.NewPolygonFetcher(cfg.DataSource.PolygonAPIKey)
		if err != nil {
			return nil, err
		}
		fetcher = pf
	} else {
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	log.Info("data source", zap.String("fetcher", fetcher.Name()))

	var store cache.Store = cache.NewMemoryStore()
	if cfg.Cache.RedisAddr != "" {
		rs, err := cache.NewRedisStore(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB, cfg.Cache.TTL)
		if err != nil {
			log.Warn("redis unavailable, using in-memory cache", zap.Error(err))
		} else {
			store = rs
			a.closers = append(a.closers, rs.Close)
		}
	}
	a.memo = cache.NewMemo(store, log)
	a.collector = collector.NewCollector(fetcher, a.memo, cfg.StartTime(), log)

	a.recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn("init sqlite recorder failed, using noop", zap.Error(err))
		} else {
			a.recorder = sr
			a.closers = append(a.closers, sr.Close)
		}
	}

	opts := forecast.DefaultOptions()
	opts.IntervalWidth = cfg.Forecast.IntervalWidth
	opts.Changepoints = cfg.Forecast.Changepoints
	a.service = dashboard.NewService(a.collector, a.recorder, opts, cfg.Forecast.TailRows, log)
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
