// Package web serves the dashboard page and its JSON, chart and export endpoints.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"StockForecast/internal/dashboard"
	"StockForecast/internal/logger"
	"StockForecast/internal/recorder"
)

// Builder produces a dashboard for a ticker and horizon.
type Builder interface {
	Build(ctx context.Context, ticker string, years int) (*dashboard.Dashboard, error)
}

// HistoryReader reads back recorded dashboard builds.
type HistoryReader interface {
	RecentRenders(ctx context.Context, ticker string, limit int) ([]recorder.RenderEvent, error)
}

// Server is the HTTP front end.
type Server struct {
	builder       Builder
	loader        dashboard.Loader
	history       HistoryReader
	defaultTicker string
	router        *mux.Router
	httpServer    *http.Server
	log           *logger.Logger
}

// NewServer wires the routes. loader backs the export endpoint, which needs
// the price frame but not the forecast. A nil history serves empty lists.
func NewServer(addr string, builder Builder, loader dashboard.Loader, history HistoryReader, defaultTicker string, log *logger.Logger) *Server {
	if history == nil {
		history = recorder.NewNoopRecorder()
	}
	s := &Server{
		builder:       builder,
		loader:        loader,
		history:       history,
		defaultTicker: defaultTicker,
		router:        mux.NewRouter(),
		log:           log.Named("web"),
	}
	if s.defaultTicker == "" {
		s.defaultTicker = "AAPL"
	}

	s.router.HandleFunc("/", s.handlePage).Methods(http.MethodGet)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/dashboard/{ticker}", s.handleDashboard).Methods(http.MethodGet)
	api.HandleFunc("/chart/{ticker}/{kind:[a-z]+}.png", s.handleChart).Methods(http.MethodGet)
	api.HandleFunc("/history/{ticker}", s.handleHistory).Methods(http.MethodGet)
	api.HandleFunc("/export/{ticker}.{format:csv|parquet}", s.handleExport).Methods(http.MethodGet)

	s.router.Use(s.logRequests)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe blocks until the server stops. A clean shutdown returns nil.
func (s *Server) ListenAndServe() error {
	s.log.Info("http server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("took", time.Since(started)))
	})
}
