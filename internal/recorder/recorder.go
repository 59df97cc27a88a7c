package recorder

import (
	"context"
	"time"
)

// RenderEvent is one dashboard build.
type RenderEvent struct {
	ID            string        `json:"id"`
	Timestamp     time.Time     `json:"timestamp"`
	Ticker        string        `json:"ticker"`
	Source        string        `json:"source"`
	Rows          int           `json:"rows"`
	LastDate      time.Time     `json:"last_date"`
	LastClose     float64       `json:"last_close"`
	MA50          *float64      `json:"ma50,omitempty"`
	MA100         *float64      `json:"ma100,omitempty"`
	MA200         *float64      `json:"ma200,omitempty"`
	LastCrossover string        `json:"last_crossover,omitempty"` // empty if none
	HorizonDays   int           `json:"horizon_days"`
	FinalYHat     float64       `json:"final_yhat"`
	Duration      time.Duration `json:"duration_ns"`
}

// AlertEvent records a crossover notification sent by the scheduler.
type AlertEvent struct {
	ID        string
	Timestamp time.Time
	Ticker    string
	Kind      string
	Date      time.Time
	Delivered bool
}

// Recorder persists dashboard history for later analysis.
type Recorder interface {
	RecordRender(ctx context.Context, evt *RenderEvent) error
	RecordAlert(ctx context.Context, evt *AlertEvent) error
	RecentRenders(ctx context.Context, ticker string, limit int) ([]RenderEvent, error)
	Close() error
}
