// Package chart renders the dashboard figures as PNG images.
package chart

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"time"

	"StockForecast/internal/apperr"
	"StockForecast/internal/model"

	"github.com/moznion/go-optional"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Kind names a renderable figure.
type Kind string

const (
	KindPrice    Kind = "price"
	KindMA       Kind = "ma"
	KindForecast Kind = "forecast"
	KindTrend    Kind = "trend"
	KindYearly   Kind = "yearly"
	KindWeekly   Kind = "weekly"
)

// Kinds lists every figure in page order.
var Kinds = []Kind{KindPrice, KindMA, KindForecast, KindTrend, KindYearly, KindWeekly}

// ParseKind validates a figure name from a URL.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", apperr.Newf(apperr.ErrCodeInvalidParameter, "unknown chart kind %q", s)
}

const (
	defaultWidth  = 1000
	defaultHeight = 420
)

var (
	colorOpen     = drawing.ColorFromHex("1f77b4")
	colorClose    = drawing.ColorFromHex("ff7f0e")
	colorMA50     = drawing.ColorFromHex("2ca02c")
	colorMA100    = drawing.ColorFromHex("d62728")
	colorMA200    = drawing.ColorFromHex("9467bd")
	colorActual   = drawing.ColorFromHex("000000")
	colorForecast = drawing.ColorFromHex("0072b2")
	colorBand     = drawing.ColorFromHex("87b7d9")
)

func lineStyle(c drawing.Color) gochart.Style {
	return gochart.Style{StrokeColor: c, StrokeWidth: 1.5}
}

func pointStyle(c drawing.Color) gochart.Style {
	return gochart.Style{StrokeWidth: gochart.Disabled, DotWidth: 1.5, DotColor: c}
}

// timeSeries pads a single point to two so go-chart can compute an x range.
func timeSeries(name string, xs []time.Time, ys []float64, st gochart.Style) gochart.TimeSeries {
	if len(xs) == 1 {
		xs = []time.Time{xs[0], xs[0].Add(24 * time.Hour)}
		ys = []float64{ys[0], ys[0]}
	}
	return gochart.TimeSeries{Name: name, XValues: xs, YValues: ys, Style: st}
}

// yRange returns an explicit range when every value is equal, since go-chart
// refuses to render a zero-height axis.
func yRange(series ...[]float64) *gochart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 0) || lo != hi {
		return nil
	}
	pad := math.Max(math.Abs(lo)*0.01, 1)
	return &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func render(w io.Writer, title, yName string, series []gochart.Series, yr *gochart.ContinuousRange, xa gochart.XAxis) error {
	c := gochart.Chart{
		Title:      title,
		Width:      defaultWidth,
		Height:     defaultHeight,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      xa,
		YAxis:      gochart.YAxis{Name: yName},
		Series:     series,
	}
	if yr != nil {
		c.YAxis.Range = yr
	}
	c.Elements = []gochart.Renderable{gochart.Legend(&c)}
	if err := c.Render(gochart.PNG, w); err != nil {
		return apperr.Wrapf(apperr.ErrCodeInternal, err, "render %s chart", title)
	}
	return nil
}

func dateAxis() gochart.XAxis {
	return gochart.XAxis{Name: "Date", ValueFormatter: gochart.TimeDateValueFormatter}
}

func noData(what string) error {
	return apperr.Newf(apperr.ErrCodeNoData, "no data to plot for %s", what)
}

// PriceChart plots the open and close prices over time.
func PriceChart(w io.Writer, frame *model.PriceFrame) error {
	if frame == nil || frame.Len() == 0 {
		return noData("price chart")
	}
	dates := make([]time.Time, frame.Len())
	opens := make([]float64, frame.Len())
	closes := make([]float64, frame.Len())
	for i, r := range frame.Rows {
		dates[i], opens[i], closes[i] = r.Date, r.Open, r.Close
	}
	series := []gochart.Series{
		timeSeries("stock_open", dates, opens, lineStyle(colorOpen)),
		timeSeries("stock_close", dates, closes, lineStyle(colorClose)),
	}
	return render(w, fmt.Sprintf("%s price", frame.Symbol), "Price", series, yRange(opens, closes), dateAxis())
}

// MovingAverageChart plots the defined points of each moving average.
func MovingAverageChart(w io.Writer, frame *model.PriceFrame) error {
	if frame == nil {
		return noData("moving average chart")
	}
	type line struct {
		name  string
		color drawing.Color
		get   func(model.PriceRow) optional.Option[float64]
	}
	lines := []line{
		{"MA50", colorMA50, func(r model.PriceRow) optional.Option[float64] { return r.MA50 }},
		{"MA100", colorMA100, func(r model.PriceRow) optional.Option[float64] { return r.MA100 }},
		{"MA200", colorMA200, func(r model.PriceRow) optional.Option[float64] { return r.MA200 }},
	}

	var series []gochart.Series
	var all [][]float64
	for _, l := range lines {
		var xs []time.Time
		var ys []float64
		for _, r := range frame.Rows {
			if v := l.get(r); v.IsSome() {
				xs = append(xs, r.Date)
				ys = append(ys, v.Unwrap())
			}
		}
		if len(xs) == 0 {
			continue
		}
		series = append(series, timeSeries(l.name, xs, ys, lineStyle(l.color)))
		all = append(all, ys)
	}
	if len(series) == 0 {
		return noData("moving average chart")
	}
	return render(w, fmt.Sprintf("%s moving averages", frame.Symbol), "Price", series, yRange(all...), dateAxis())
}

// ForecastChart plots the observed values as points with the forecast line
// and its uncertainty bounds.
func ForecastChart(w io.Writer, history []model.TrainingRow, rows []model.ForecastRow) error {
	if len(rows) == 0 {
		return noData("forecast chart")
	}
	var series []gochart.Series
	var all [][]float64
	if len(history) > 0 {
		xs := make([]time.Time, len(history))
		ys := make([]float64, len(history))
		for i, r := range history {
			xs[i], ys[i] = r.DS, r.Y
		}
		series = append(series, timeSeries("actual", xs, ys, pointStyle(colorActual)))
		all = append(all, ys)
	}

	ds := make([]time.Time, len(rows))
	yhat := make([]float64, len(rows))
	lower := make([]float64, len(rows))
	upper := make([]float64, len(rows))
	for i, r := range rows {
		ds[i], yhat[i], lower[i], upper[i] = r.DS, r.YHat, r.YHatLower, r.YHatUpper
	}
	series = append(series,
		timeSeries("yhat_lower", ds, lower, lineStyle(colorBand)),
		timeSeries("yhat_upper", ds, upper, lineStyle(colorBand)),
		timeSeries("yhat", ds, yhat, gochart.Style{StrokeColor: colorForecast, StrokeWidth: 2}),
	)
	all = append(all, yhat, lower, upper)
	return render(w, "Forecast", "y", series, yRange(all...), dateAxis())
}

// Components carries what ComponentChart needs from a fitted model.
type Components interface {
	YearlyProfile() ([]time.Time, []float64)
	WeeklyProfile() ([]time.Weekday, []float64)
}

// ComponentChart plots one additive component: trend over the forecast
// dates, yearly over one calendar year, or weekly over Sunday..Saturday.
func ComponentChart(w io.Writer, kind Kind, comp Components, rows []model.ForecastRow) error {
	switch kind {
	case KindTrend:
		if len(rows) == 0 {
			return noData("trend")
		}
		xs := make([]time.Time, len(rows))
		ys := make([]float64, len(rows))
		for i, r := range rows {
			xs[i], ys[i] = r.DS, r.Trend
		}
		return render(w, "trend", "trend", []gochart.Series{timeSeries("trend", xs, ys, lineStyle(colorForecast))}, yRange(ys), dateAxis())

	case KindYearly:
		xs, ys := comp.YearlyProfile()
		if len(xs) == 0 {
			return noData("yearly seasonality")
		}
		xa := gochart.XAxis{Name: "Day of year", ValueFormatter: monthDayFormatter}
		return render(w, "yearly", "yearly", []gochart.Series{timeSeries("yearly", xs, ys, lineStyle(colorForecast))}, yRange(ys), xa)

	case KindWeekly:
		days, ys := comp.WeeklyProfile()
		if len(days) == 0 {
			return noData("weekly seasonality")
		}
		xs := make([]float64, len(days))
		ticks := make([]gochart.Tick, len(days))
		for i, d := range days {
			xs[i] = float64(i)
			ticks[i] = gochart.Tick{Value: float64(i), Label: d.String()}
		}
		xa := gochart.XAxis{Name: "Day of week", Ticks: ticks}
		s := gochart.ContinuousSeries{Name: "weekly", XValues: xs, YValues: ys, Style: lineStyle(colorForecast)}
		return render(w, "weekly", "weekly", []gochart.Series{s}, yRange(ys), xa)
	}
	return apperr.Newf(apperr.ErrCodeInvalidParameter, "%q is not a component chart", kind)
}

func monthDayFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return time.Unix(0, int64(f)).UTC().Format("January-02")
	}
	return ""
}

// PNG renders fn into a byte slice.
func PNG(fn func(io.Writer) error) ([]byte, error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
