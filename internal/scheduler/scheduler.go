package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"StockForecast/internal/apperr"
	"StockForecast/internal/cache"
	"StockForecast/internal/calculator"
	"StockForecast/internal/dashboard"
	"StockForecast/internal/logger"
	"StockForecast/internal/model"
	"StockForecast/internal/notifier"
	"StockForecast/internal/recorder"
)

// Sender delivers a text message.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the background prewarm job and answers bot commands.
type Scheduler struct {
	Cron      *cron.Cron
	Loader    dashboard.Loader
	Memo      *cache.Memo
	Dashboard *dashboard.Service
	Notifier  Sender // nil disables alerts
	Recorder  recorder.Recorder
	Watchlist []string
	Now       func() time.Time
	Ctx       context.Context

	mu     sync.Mutex
	alerts map[string]struct{} // ticker|date|kind already sent
	log    *logger.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, loader dashboard.Loader, memo *cache.Memo, svc *dashboard.Service,
	sender Sender, rec recorder.Recorder, watchlist []string, log *logger.Logger) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Loader:    loader,
		Memo:      memo,
		Dashboard: svc,
		Notifier:  sender,
		Recorder:  rec,
		Watchlist: watchlist,
		Now:       time.Now,
		Ctx:       ctx,
		alerts:    make(map[string]struct{}),
		log:       log.Named("scheduler"),
	}
}

// Register adds the prewarm job on prewarmCron (six fields, with seconds).
func (s *Scheduler) Register(prewarmCron string) error {
	if _, err := s.Cron.AddFunc(prewarmCron, func() { s.Prewarm(s.Ctx) }); err != nil {
		return fmt.Errorf("register prewarm task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info("scheduler started", zap.Strings("watchlist", s.Watchlist))
}

// Stop stops the cron scheduler and waits for a running job.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// PrewarmResult reports one watchlist ticker.
type PrewarmResult struct {
	Ticker string
	Rows   int
	Alerts []model.Crossover
	Err    error
}

// Prewarm loads every watchlist ticker into the memo, alerts on crosses
// that landed on the latest bar and drops entries from earlier days.
func (s *Scheduler) Prewarm(ctx context.Context) []PrewarmResult {
	s.log.Info("running prewarm", zap.Int("tickers", len(s.Watchlist)))
	results := make([]PrewarmResult, 0, len(s.Watchlist))
	for _, ticker := range s.Watchlist {
		res := s.prewarmOne(ctx, ticker)
		if res.Err != nil {
			s.log.Error("prewarm failed", zap.String("ticker", ticker), zap.Error(res.Err))
		}
		results = append(results, res)
	}

	if s.Memo != nil {
		if err := s.Memo.PurgeExceptEndDate(ctx, model.DateOf(s.Now())); err != nil {
			s.log.Warn("purge memo failed", zap.Error(err))
		}
	}
	return results
}

func (s *Scheduler) prewarmOne(ctx context.Context, ticker string) PrewarmResult {
	res := PrewarmResult{Ticker: ticker}
	frame, err := s.Loader.Load(ctx, ticker)
	if err != nil {
		res.Err = err
		return res
	}
	res.Rows = frame.Len()

	calculator.ApplyMovingAverages(frame)
	latest := calculator.LatestOnLastRow(frame, calculator.DetectCrossovers(frame))
	if len(latest) == 0 {
		return res
	}
	summary, err := calculator.Summarize(frame)
	if err != nil {
		// alerts still go out, without the headline figures
		s.log.Warn("summarize failed", zap.String("ticker", frame.Symbol), zap.Error(err))
	}
	for _, c := range latest {
		if c.Kind != model.GoldenCross && c.Kind != model.DeathCross {
			continue
		}
		if !s.markAlert(frame.Symbol, c) {
			continue
		}
		res.Alerts = append(res.Alerts, c)
		s.alert(ctx, frame.Symbol, c, summary)
	}
	return res
}

// markAlert records c as sent and reports whether it was new.
func (s *Scheduler) markAlert(ticker string, c model.Crossover) bool {
	key := ticker + "|" + c.Date.Format("2006-01-02") + "|" + string(c.Kind)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.alerts[key]; seen {
		return false
	}
	s.alerts[key] = struct{}{}
	return true
}

func (s *Scheduler) alert(ctx context.Context, ticker string, c model.Crossover, summary *model.FrameSummary) {
	s.log.Info("crossover on latest bar", zap.String("ticker", ticker), zap.String("kind", string(c.Kind)))
	delivered := false
	if s.Notifier != nil {
		if err := s.Notifier.SendWithRetry(ctx, notifier.FormatCrossoverAlert(ticker, c, summary), 3); err != nil {
			s.log.Error("send alert failed", zap.String("ticker", ticker), zap.Error(err))
		} else {
			delivered = true
		}
	}
	if err := s.Recorder.RecordAlert(ctx, &recorder.AlertEvent{
		Ticker:    ticker,
		Kind:      string(c.Kind),
		Date:      c.Date,
		Delivered: delivered,
	}); err != nil {
		s.log.Error("record alert failed", zap.Error(err))
	}
}

// HandleCommand processes a bot command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.Help()
	}
	switch fields[0] {
	case "/summary":
		if len(fields) < 2 {
			return notifier.Help()
		}
		d, err := s.Dashboard.Build(ctx, fields[1], 1)
		if err != nil {
			return "❌ " + apperr.Message(err)
		}
		return notifier.FormatSummary(d.Ticker, d.Summary)
	case "/forecast":
		if len(fields) < 2 {
			return notifier.Help()
		}
		years := 1
		if len(fields) > 2 {
			n, err := strconv.Atoi(fields[2])
			if err != nil {
				return "❌ years must be a whole number"
			}
			years = n
		}
		d, err := s.Dashboard.Build(ctx, fields[1], years)
		if err != nil {
			return "❌ " + apperr.Message(err)
		}
		return notifier.FormatForecast(d.Ticker, d.Years, d.Tail)
	default:
		return notifier.Help()
	}
}
