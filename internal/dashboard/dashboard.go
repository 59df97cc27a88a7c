// Package dashboard assembles everything the page shows for one ticker.
package dashboard

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"StockForecast/internal/apperr"
	"StockForecast/internal/calculator"
	"StockForecast/internal/chart"
	"StockForecast/internal/forecast"
	"StockForecast/internal/logger"
	"StockForecast/internal/model"
	"StockForecast/internal/recorder"
)

// Loader returns the full daily price history for a ticker.
type Loader interface {
	Load(ctx context.Context, ticker string) (*model.PriceFrame, error)
}

// Dashboard is the result of one build.
type Dashboard struct {
	Ticker      string              `json:"ticker"`
	Years       int                 `json:"years"`
	HorizonDays int                 `json:"horizon_days"`
	Frame       *model.PriceFrame   `json:"frame"`
	Summary     *model.FrameSummary `json:"summary"`
	Crossovers  []model.Crossover   `json:"crossovers"`
	Tail        []model.ForecastRow `json:"forecast_tail"`
	Training    []model.TrainingRow `json:"-"`
	Forecast    []model.ForecastRow `json:"-"`
	Model       *forecast.Model     `json:"-"`
	BuiltAt     time.Time           `json:"built_at"`
}

// RecentCrossovers returns at most n of the latest crossover events, newest first.
func (d *Dashboard) RecentCrossovers(n int) []model.Crossover {
	out := make([]model.Crossover, 0, n)
	for i := len(d.Crossovers) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, d.Crossovers[i])
	}
	return out
}

// RenderChart writes the named figure as PNG.
func (d *Dashboard) RenderChart(w io.Writer, kind chart.Kind) error {
	switch kind {
	case chart.KindPrice:
		return chart.PriceChart(w, d.Frame)
	case chart.KindMA:
		return chart.MovingAverageChart(w, d.Frame)
	case chart.KindForecast:
		return chart.ForecastChart(w, d.Training, d.Forecast)
	default:
		return chart.ComponentChart(w, kind, d.Model, d.Forecast)
	}
}

// Service builds dashboards.
type Service struct {
	loader   Loader
	rec      recorder.Recorder
	opts     forecast.Options
	tailRows int
	log      *logger.Logger
}

// NewService creates a Service. A nil recorder disables history.
func NewService(loader Loader, rec recorder.Recorder, opts forecast.Options, tailRows int, log *logger.Logger) *Service {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if tailRows <= 0 {
		tailRows = forecast.DefaultTailRows
	}
	return &Service{
		loader:   loader,
		rec:      rec,
		opts:     opts,
		tailRows: tailRows,
		log:      log.Named("dashboard"),
	}
}

// Build loads ticker, computes moving averages and crossovers, fits the
// forecast and predicts years ahead.
func (s *Service) Build(ctx context.Context, ticker string, years int) (*Dashboard, error) {
	started := time.Now()
	years = forecast.ClampYears(years)
	horizon := forecast.HorizonDays(years)

	frame, err := s.loader.Load(ctx, ticker)
	if err != nil {
		return nil, err
	}
	s.log.Debug("loaded frame", zap.String("ticker", frame.Symbol), zap.Int("rows", frame.Len()))

	calculator.ApplyMovingAverages(frame)
	crossovers := calculator.DetectCrossovers(frame)
	summary, err := calculator.Summarize(frame)
	if err != nil {
		return nil, apperr.Wrapf(apperr.ErrCodeInternal, err, "summarize %s", frame.Symbol)
	}

	train := forecast.ToTrainingFrame(frame)
	m := forecast.New(s.opts)
	if err := m.Fit(train); err != nil {
		return nil, fmt.Errorf("forecast %s: %w", frame.Symbol, err)
	}
	future, err := m.MakeFutureFrame(horizon)
	if err != nil {
		return nil, fmt.Errorf("forecast %s: %w", frame.Symbol, err)
	}
	rows, err := m.Predict(future)
	if err != nil {
		return nil, fmt.Errorf("forecast %s: %w", frame.Symbol, err)
	}

	d := &Dashboard{
		Ticker:      frame.Symbol,
		Years:       years,
		HorizonDays: horizon,
		Frame:       frame,
		Summary:     summary,
		Crossovers:  crossovers,
		Tail:        forecast.Tail(rows, s.tailRows),
		Training:    train,
		Forecast:    rows,
		Model:       m,
		BuiltAt:     time.Now(),
	}

	took := time.Since(started)
	s.log.Info("dashboard built",
		zap.String("ticker", d.Ticker),
		zap.Int("rows", frame.Len()),
		zap.Int("crossovers", len(crossovers)),
		zap.Int("horizon_days", horizon),
		zap.Bool("yearly", m.YearlyEnabled()),
		zap.Bool("weekly", m.WeeklyEnabled()),
		zap.Duration("took", took))

	if err := s.rec.RecordRender(ctx, s.renderEvent(d, took)); err != nil {
		s.log.Warn("record render failed", zap.String("ticker", d.Ticker), zap.Error(err))
	}
	return d, nil
}

func (s *Service) renderEvent(d *Dashboard, took time.Duration) *recorder.RenderEvent {
	evt := &recorder.RenderEvent{
		Ticker:      d.Ticker,
		Source:      d.Frame.Source,
		Rows:        d.Frame.Len(),
		LastDate:    d.Summary.LastDate,
		LastClose:   d.Summary.LastClose,
		MA50:        d.Summary.MA50,
		MA100:       d.Summary.MA100,
		MA200:       d.Summary.MA200,
		HorizonDays: d.HorizonDays,
		Duration:    took,
	}
	if n := len(d.Crossovers); n > 0 {
		evt.LastCrossover = d.Crossovers[n-1].Label()
	}
	if n := len(d.Forecast); n > 0 {
		evt.FinalYHat = d.Forecast[n-1].YHat
	}
	return evt
}
