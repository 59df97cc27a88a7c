package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"StockForecast/internal/apperr"
	"StockForecast/internal/calculator"
	"StockForecast/internal/chart"
	"StockForecast/internal/collector"
	"StockForecast/internal/export"
	"StockForecast/internal/forecast"
	"StockForecast/internal/model"
	"StockForecast/internal/recorder"
)

// parseYears reads the years query value. Missing means 1; values outside
// 1..5 are clamped.
func parseYears(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("years"))
	if raw == "" {
		return forecast.MinYears, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Newf(apperr.ErrCodeInvalidParameter, "years must be a whole number, got %q", raw)
	}
	return forecast.ClampYears(n), nil
}

type errorBody struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("encode response failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := s.logError(err)
	s.writeJSON(w, status, errorBody{Error: apperr.Message(err), Code: int(apperr.GetCode(err))})
}

// logError logs err at a level matching its status and returns the status.
func (s *Server) logError(err error) int {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.Int("status", status), zap.Error(err))
	} else {
		s.log.Info("request rejected", zap.Int("status", status), zap.Error(err))
	}
	return status
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type dashboardResponse struct {
	Ticker      string              `json:"ticker"`
	Years       int                 `json:"years"`
	HorizonDays int                 `json:"horizon_days"`
	Source      string              `json:"source"`
	Frame       []model.PriceRow    `json:"frame"`
	Summary     *model.FrameSummary `json:"summary"`
	Crossovers  []model.Crossover   `json:"crossovers"`
	Forecast    []model.ForecastRow `json:"forecast_tail"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	years, err := parseYears(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	d, err := s.builder.Build(r.Context(), mux.Vars(r)["ticker"], years)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, dashboardResponse{
		Ticker:      d.Ticker,
		Years:       d.Years,
		HorizonDays: d.HorizonDays,
		Source:      d.Frame.Source,
		Frame:       d.Frame.Rows,
		Summary:     d.Summary,
		Crossovers:  d.Crossovers,
		Forecast:    d.Tail,
	})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind, err := chart.ParseKind(vars["kind"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	years, err := parseYears(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	d, err := s.builder.Build(r.Context(), vars["ticker"], years)
	if err != nil {
		s.writeError(w, err)
		return
	}

	png, err := chart.PNG(func(out io.Writer) error { return d.RenderChart(out, kind) })
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Write(png)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	format, err := export.ParseFormat(vars["format"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	frame, err := s.loader.Load(r.Context(), vars["ticker"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	calculator.ApplyMovingAverages(frame)

	var buf bytes.Buffer
	if err := export.Write(&buf, format, frame); err != nil {
		s.writeError(w, apperr.Wrap(apperr.ErrCodeInternal, "export failed", err))
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", frame.Symbol+"."+string(format)))
	w.Write(buf.Bytes())
}

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

type historyResponse struct {
	Ticker  string                 `json:"ticker"`
	Renders []recorder.RenderEvent `json:"renders"`
}

// handleHistory lists recent dashboard builds for a ticker, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	ticker, err := collector.NormalizeTicker(mux.Vars(r)["ticker"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	limit := defaultHistoryLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeError(w, apperr.Newf(apperr.ErrCodeInvalidParameter, "limit must be a positive whole number, got %q", raw))
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	renders, err := s.history.RecentRenders(r.Context(), ticker, limit)
	if err != nil {
		s.writeError(w, apperr.Wrap(apperr.ErrCodeInternal, "read render history", err))
		return
	}
	if renders == nil {
		renders = []recorder.RenderEvent{}
	}
	s.writeJSON(w, http.StatusOK, historyResponse{Ticker: ticker, Renders: renders})
}
