// Package forecast fits an additive time-series model to a daily closing
// price series and projects it forward.
//
// The model is
//
//	y(t) = trend(t) + yearly(t) + weekly(t)
//
// where trend is piecewise linear with a fixed grid of potential
// changepoints over the first part of the history, and each seasonality is a
// truncated Fourier series. All terms are linear in their coefficients, so the
// fit is a single penalised least-squares solve.
package forecast

import (
	"fmt"
	"math"
	"time"

	"StockForecast/internal/apperr"
	"StockForecast/internal/model"
)

const (
	dayDuration   = 24 * time.Hour
	yearlyPeriod  = 365.25
	weeklyPeriod  = 7.0
	minFitRows    = 2
	yearlyMinSpan = 2 * 365
	weeklyMinSpan = 14
)

// Options controls the model structure and regularisation.
type Options struct {
	Changepoints       int     // potential trend changepoints
	ChangepointRange   float64 // share of history that may hold changepoints
	ChangepointPenalty float64 // L2 weight on slope changes, in scaled units
	YearlyOrder        int
	WeeklyOrder        int
	SeasonalityPenalty float64 // L2 weight on Fourier coefficients
	IntervalWidth      float64 // e.g. 0.8 for an 80% interval
}

// DefaultOptions mirrors the usual additive-model defaults.
func DefaultOptions() Options {
	return Options{
		Changepoints:       25,
		ChangepointRange:   0.8,
		ChangepointPenalty: 1.0,
		YearlyOrder:        10,
		WeeklyOrder:        3,
		SeasonalityPenalty: 0.01,
		IntervalWidth:      0.8,
	}
}

// Model is a fitted (or unfitted) additive model. It is not safe for concurrent Fit calls.
type Model struct {
	opts Options

	history []model.TrainingRow
	start   time.Time
	span    float64 // history length in days
	yScale  float64

	changepoints []float64 // scaled t of each changepoint
	yearly       bool
	weekly       bool

	slope, offset float64
	deltas        []float64 // slope change at each changepoint
	season        []float64 // yearly coefficients then weekly coefficients

	sigma      float64 // in-sample residual std, scaled
	deltaScale float64 // mean |delta|
	fitted     bool
}

// New returns an unfitted model.
func New(opts Options) *Model {
	return &Model{opts: opts}
}

// Fitted reports whether Fit has succeeded.
func (m *Model) Fitted() bool { return m.fitted }

// History returns the training rows of the last successful fit.
func (m *Model) History() []model.TrainingRow { return m.history }

// YearlyEnabled reports whether the fit included a yearly term.
func (m *Model) YearlyEnabled() bool { return m.yearly }

// WeeklyEnabled reports whether the fit included a weekly term.
func (m *Model) WeeklyEnabled() bool { return m.weekly }

// Fit estimates the model from rows sorted by ascending ds.
func (m *Model) Fit(train []model.TrainingRow) error {
	if len(train) < minFitRows {
		return apperr.Newf(apperr.ErrCodeInsufficientData,
			"need at least %d rows to fit a forecast, got %d", minFitRows, len(train))
	}
	first, last := train[0].DS, train[len(train)-1].DS
	span := last.Sub(first).Hours() / 24
	if span <= 0 {
		return apperr.New(apperr.ErrCodeInsufficientData, "history spans a single day")
	}

	m.history = train
	m.start = first
	m.span = span
	m.yScale = 0
	for _, r := range train {
		m.yScale = math.Max(m.yScale, math.Abs(r.Y))
	}
	if m.yScale == 0 {
		m.yScale = 1
	}
	m.yearly = span >= yearlyMinSpan && m.opts.YearlyOrder > 0
	m.weekly = span >= weeklyMinSpan && m.opts.WeeklyOrder > 0
	m.changepoints = m.placeChangepoints(train)

	nCP := len(m.changepoints)
	p := 2 + nCP + m.seasonalWidth()
	ne := newNormalEquations(p)
	x := make([]float64, p)
	for _, r := range train {
		m.features(r.DS, x)
		ne.Add(x, r.Y/m.yScale)
	}

	penalty := make([]float64, p)
	for i := 0; i < nCP; i++ {
		penalty[2+i] = m.opts.ChangepointPenalty
	}
	for i := 2 + nCP; i < p; i++ {
		penalty[i] = m.opts.SeasonalityPenalty
	}
	beta, err := ne.Solve(penalty)
	if err != nil {
		return apperr.Wrap(apperr.ErrCodeInternal, "fit forecast model", err)
	}

	m.offset, m.slope = beta[0], beta[1]
	m.deltas = beta[2 : 2+nCP]
	m.season = beta[2+nCP:]

	var sse float64
	for _, r := range train {
		m.features(r.DS, x)
		res := r.Y/m.yScale - dot(x, beta)
		sse += res * res
	}
	m.sigma = math.Sqrt(sse / float64(len(train)))

	m.deltaScale = 0
	for _, d := range m.deltas {
		m.deltaScale += math.Abs(d)
	}
	if nCP > 0 {
		m.deltaScale /= float64(nCP)
	}

	m.fitted = true
	return nil
}

// placeChangepoints spreads potential changepoints over the first
// ChangepointRange of the rows, excluding the first row.
func (m *Model) placeChangepoints(train []model.TrainingRow) []float64 {
	histSize := int(math.Floor(float64(len(train)) * m.opts.ChangepointRange))
	n := min(m.opts.Changepoints, histSize-1)
	if n <= 0 {
		return nil
	}
	out := make([]float64, 0, n)
	for i := 1; i <= n; i++ {
		idx := int(math.Round(float64(i) * float64(histSize-1) / float64(n)))
		out = append(out, m.scaledT(train[idx].DS))
	}
	return out
}

func (m *Model) seasonalWidth() int {
	w := 0
	if m.yearly {
		w += 2 * m.opts.YearlyOrder
	}
	if m.weekly {
		w += 2 * m.opts.WeeklyOrder
	}
	return w
}

func (m *Model) scaledT(ds time.Time) float64 {
	return ds.Sub(m.start).Hours() / 24 / m.span
}

// features writes the design row for ds into x.
func (m *Model) features(ds time.Time, x []float64) {
	t := m.scaledT(ds)
	x[0] = 1
	x[1] = t
	i := 2
	for _, s := range m.changepoints {
		x[i] = math.Max(t-s, 0)
		i++
	}
	days := float64(ds.Unix()) / 86400
	if m.yearly {
		i = fourier(days, yearlyPeriod, m.opts.YearlyOrder, x, i)
	}
	if m.weekly {
		fourier(days, weeklyPeriod, m.opts.WeeklyOrder, x, i)
	}
}

// fourier writes sin/cos pairs for orders 1..order starting at x[i] and returns the next index.
func fourier(days, period float64, order int, x []float64, i int) int {
	for n := 1; n <= order; n++ {
		arg := 2 * math.Pi * float64(n) * days / period
		x[i] = math.Sin(arg)
		x[i+1] = math.Cos(arg)
		i += 2
	}
	return i
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// MakeFutureFrame returns the history dates followed by periods consecutive
// calendar days after the last history date.
func (m *Model) MakeFutureFrame(periods int) ([]time.Time, error) {
	if !m.fitted {
		return nil, fmt.Errorf("model must be fit before making a future frame")
	}
	if periods < 0 {
		return nil, apperr.Newf(apperr.ErrCodeInvalidParameter, "periods must be non-negative, got %d", periods)
	}
	dates := make([]time.Time, 0, len(m.history)+periods)
	for _, r := range m.history {
		dates = append(dates, r.DS)
	}
	last := m.history[len(m.history)-1].DS
	for i := 1; i <= periods; i++ {
		dates = append(dates, last.AddDate(0, 0, i))
	}
	return dates, nil
}

// Predict evaluates the model and its uncertainty interval at each date.
func (m *Model) Predict(dates []time.Time) ([]model.ForecastRow, error) {
	if !m.fitted {
		return nil, fmt.Errorf("model must be fit before predicting")
	}
	z := math.Sqrt2 * math.Erfinv(m.opts.IntervalWidth)
	// expected changepoints per unit of scaled time
	rate := float64(len(m.changepoints))

	rows := make([]model.ForecastRow, len(dates))
	for i, ds := range dates {
		t := m.scaledT(ds)
		trend := m.trendAt(t)
		yearly, weekly := m.seasonalAt(ds)

		sd := m.sigma
		if h := t - 1; h > 0 && m.deltaScale > 0 {
			// slope shocks arriving at rate with Laplace(0, deltaScale) size
			trendVar := rate * 2 * m.deltaScale * m.deltaScale * h * h * h / 3
			sd = math.Sqrt(sd*sd + trendVar)
		}

		yhat := trend + yearly + weekly
		rows[i] = model.ForecastRow{
			DS:        ds,
			Trend:     trend * m.yScale,
			Yearly:    yearly * m.yScale,
			Weekly:    weekly * m.yScale,
			YHat:      yhat * m.yScale,
			YHatLower: (yhat - z*sd) * m.yScale,
			YHatUpper: (yhat + z*sd) * m.yScale,
		}
	}
	return rows, nil
}

func (m *Model) trendAt(t float64) float64 {
	v := m.offset + m.slope*t
	for j, s := range m.changepoints {
		if t > s {
			v += m.deltas[j] * (t - s)
		}
	}
	return v
}

// seasonalAt returns the scaled yearly and weekly contributions at ds.
func (m *Model) seasonalAt(ds time.Time) (yearly, weekly float64) {
	days := float64(ds.Unix()) / 86400
	i := 0
	if m.yearly {
		for n := 1; n <= m.opts.YearlyOrder; n++ {
			arg := 2 * math.Pi * float64(n) * days / yearlyPeriod
			yearly += m.season[i]*math.Sin(arg) + m.season[i+1]*math.Cos(arg)
			i += 2
		}
	}
	if m.weekly {
		for n := 1; n <= m.opts.WeeklyOrder; n++ {
			arg := 2 * math.Pi * float64(n) * days / weeklyPeriod
			weekly += m.season[i]*math.Sin(arg) + m.season[i+1]*math.Cos(arg)
			i += 2
		}
	}
	return yearly, weekly
}

// YearlyProfile returns the yearly component over one calendar year.
// It is empty when the fit had no yearly term.
func (m *Model) YearlyProfile() ([]time.Time, []float64) {
	if !m.fitted || !m.yearly {
		return nil, nil
	}
	start := time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)
	var dates []time.Time
	var vals []float64
	for d := start; d.Year() == 2017; d = d.Add(dayDuration) {
		y, _ := m.seasonalAt(d)
		dates = append(dates, d)
		vals = append(vals, y*m.yScale)
	}
	return dates, vals
}

// WeeklyProfile returns the weekly component for Sunday through Saturday.
// It is empty when the fit had no weekly term.
func (m *Model) WeeklyProfile() ([]time.Weekday, []float64) {
	if !m.fitted || !m.weekly {
		return nil, nil
	}
	sunday := time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)
	days := make([]time.Weekday, 7)
	vals := make([]float64, 7)
	for i := 0; i < 7; i++ {
		d := sunday.AddDate(0, 0, i)
		_, w := m.seasonalAt(d)
		days[i] = d.Weekday()
		vals[i] = w * m.yScale
	}
	return days, vals
}
