package web

import (
	"bytes"
	"embed"
	"encoding/base64"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"StockForecast/internal/apperr"
	"StockForecast/internal/chart"
	"StockForecast/internal/dashboard"
	"StockForecast/internal/forecast"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("index.html").Funcs(template.FuncMap{
	"date": func(t time.Time) string { return t.Format("2006-01-02") },
	"num":  func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) },
	"opt": func(o optional.Option[float64]) string {
		if o.IsNone() {
			return ""
		}
		return strconv.FormatFloat(o.Unwrap(), 'f', 2, 64)
	},
}).ParseFS(templateFS, "templates/index.html"))

type chartImage struct {
	Title string
	Src   template.URL
}

type pageData struct {
	Ticker     string
	Years      int
	YearsRange []int
	Error      string
	D          *dashboard.Dashboard
	FromYear   int
	Main       []chartImage // price and moving averages
	Forecast   *chartImage
	Components []chartImage
}

var chartTitles = map[chart.Kind]string{
	chart.KindPrice:    "Visual chart for the data",
	chart.KindMA:       "Market averages chart for the data",
	chart.KindForecast: "Forecasted data visualization",
	chart.KindTrend:    "trend",
	chart.KindYearly:   "yearly",
	chart.KindWeekly:   "weekly",
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		Ticker:     strings.TrimSpace(r.URL.Query().Get("ticker")),
		Years:      forecast.MinYears,
		YearsRange: []int{1, 2, 3, 4, 5},
	}
	if data.Ticker == "" {
		data.Ticker = s.defaultTicker
	}

	status := http.StatusOK
	years, err := parseYears(r)
	if err == nil {
		data.Years = years
		data.D, err = s.builder.Build(r.Context(), data.Ticker, years)
	}
	if err != nil {
		status = s.logError(err)
		data.Error = apperr.Message(err)
	} else {
		s.attachCharts(&data)
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		s.log.Error("render page failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// attachCharts renders every figure as a data URI. Figures with nothing to
// plot, such as a disabled seasonality, are left out.
func (s *Server) attachCharts(data *pageData) {
	d := data.D
	if first := d.Frame.Rows; len(first) > 0 {
		data.FromYear = first[0].Date.Year()
	}
	for _, kind := range chart.Kinds {
		png, err := chart.PNG(func(out io.Writer) error { return d.RenderChart(out, kind) })
		if err != nil {
			if !apperr.HasCode(err, apperr.ErrCodeNoData) {
				s.log.Warn("render chart failed", zap.String("kind", string(kind)), zap.Error(err))
			}
			continue
		}
		img := chartImage{
			Title: chartTitles[kind],
			Src:   template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png)),
		}
		switch kind {
		case chart.KindPrice, chart.KindMA:
			data.Main = append(data.Main, img)
		case chart.KindForecast:
			data.Forecast = &img
		default:
			data.Components = append(data.Components, img)
		}
	}
}
