package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"StockForecast/internal/logger"
)

// SQLiteRecorder persists render and alert history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log *logger.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, now: time.Now}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info("sqlite recorder opened", zap.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS render_events (
			id             TEXT PRIMARY KEY,
			timestamp      INTEGER NOT NULL,
			ticker         TEXT NOT NULL,
			source         TEXT,
			row_count      INTEGER,
			last_date      TEXT,
			last_close     REAL,
			ma50           REAL,
			ma100          REAL,
			ma200          REAL,
			last_crossover TEXT,
			horizon_days   INTEGER,
			final_yhat     REAL,
			duration_ms    INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_render_ticker_ts ON render_events(ticker, timestamp)`,

		`CREATE TABLE IF NOT EXISTS alert_events (
			id        TEXT PRIMARY KEY,
			timestamp INTEGER NOT NULL,
			ticker    TEXT NOT NULL,
			kind      TEXT,
			bar_date  TEXT,
			delivered INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alert_ticker_ts ON alert_events(ticker, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func nullable(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func fromNullable(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

// RecordRender stores evt, assigning an ID and timestamp when missing.
func (r *SQLiteRecorder) RecordRender(ctx context.Context, evt *RenderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = r.now()
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO render_events
		(id, timestamp, ticker, source, row_count, last_date, last_close,
		 ma50, ma100, ma200, last_crossover, horizon_days, final_yhat, duration_ms)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		evt.ID, evt.Timestamp.UnixMilli(), evt.Ticker, evt.Source, evt.Rows,
		evt.LastDate.Format(time.DateOnly), evt.LastClose,
		nullable(evt.MA50), nullable(evt.MA100), nullable(evt.MA200),
		evt.LastCrossover, evt.HorizonDays, evt.FinalYHat, evt.Duration.Milliseconds(),
	)
	return err
}

// RecordAlert stores evt, assigning an ID and timestamp when missing.
func (r *SQLiteRecorder) RecordAlert(ctx context.Context, evt *AlertEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = r.now()
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO alert_events
		(id, timestamp, ticker, kind, bar_date, delivered)
		VALUES (?,?,?,?,?,?)`,
		evt.ID, evt.Timestamp.UnixMilli(), evt.Ticker, evt.Kind,
		evt.Date.Format(time.DateOnly), evt.Delivered,
	)
	return err
}

// RecentRenders returns up to limit renders for ticker, newest first.
func (r *SQLiteRecorder) RecentRenders(ctx context.Context, ticker string, limit int) ([]RenderEvent, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT
		id, timestamp, ticker, source, row_count, last_date, last_close,
		ma50, ma100, ma200, last_crossover, horizon_days, final_yhat, duration_ms
		FROM render_events WHERE ticker = ? ORDER BY timestamp DESC, rowid DESC LIMIT ?`, ticker, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RenderEvent
	for rows.Next() {
		var (
			evt         RenderEvent
			ts, durMS   int64
			lastDate    string
			ma50, ma100 sql.NullFloat64
			ma200       sql.NullFloat64
		)
		if err := rows.Scan(&evt.ID, &ts, &evt.Ticker, &evt.Source, &evt.Rows, &lastDate, &evt.LastClose,
			&ma50, &ma100, &ma200, &evt.LastCrossover, &evt.HorizonDays, &evt.FinalYHat, &durMS); err != nil {
			return nil, err
		}
		evt.Timestamp = time.UnixMilli(ts)
		evt.LastDate, _ = time.Parse(time.DateOnly, lastDate)
		evt.MA50, evt.MA100, evt.MA200 = fromNullable(ma50), fromNullable(ma100), fromNullable(ma200)
		evt.Duration = time.Duration(durMS) * time.Millisecond
		out = append(out, evt)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
