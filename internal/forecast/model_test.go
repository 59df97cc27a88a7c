package forecast

import (
	"math"
	"testing"
	"time"

	"StockForecast/internal/apperr"
	"StockForecast/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

func dailySeries(n int, f func(d time.Time, i int) float64) []model.TrainingRow {
	rows := make([]model.TrainingRow, n)
	for i := range rows {
		d := day0.AddDate(0, 0, i)
		rows[i] = model.TrainingRow{DS: d, Y: f(d, i)}
	}
	return rows
}

func weeklyWave(d time.Time) float64 {
	days := float64(d.Unix()) / 86400
	return 3 * math.Sin(2*math.Pi*days/7)
}

func TestToTrainingFrame(t *testing.T) {
	frame := &model.PriceFrame{Rows: []model.PriceRow{
		{Date: day0, Close: 10},
		{Date: day0.AddDate(0, 0, 1), Close: 11},
		{Date: day0.AddDate(0, 0, 4), Close: 9.5},
	}}

	train := ToTrainingFrame(frame)
	require.Len(t, train, len(frame.Rows))
	for i, r := range frame.Rows {
		assert.Equal(t, r.Date, train[i].DS)
		assert.Equal(t, r.Close, train[i].Y)
	}
}

func TestFitRejectsShortHistory(t *testing.T) {
	m := New(DefaultOptions())

	err := m.Fit(nil)
	assert.True(t, apperr.HasCode(err, apperr.ErrCodeInsufficientData))

	err = m.Fit(dailySeries(1, func(time.Time, int) float64 { return 1 }))
	assert.True(t, apperr.HasCode(err, apperr.ErrCodeInsufficientData))
	assert.False(t, m.Fitted())
}

func TestFitTwoRows(t *testing.T) {
	m := New(DefaultOptions())
	require.NoError(t, m.Fit(dailySeries(2, func(_ time.Time, i int) float64 { return 100 + float64(i) })))

	rows, err := m.Predict([]time.Time{day0, day0.AddDate(0, 0, 1), day0.AddDate(0, 0, 2)})
	require.NoError(t, err)
	assert.InDelta(t, 100, rows[0].YHat, 1e-3)
	assert.InDelta(t, 101, rows[1].YHat, 1e-3)
	assert.InDelta(t, 102, rows[2].YHat, 1e-3)
}

func TestFutureFrameLength(t *testing.T) {
	m := New(DefaultOptions())
	hist := dailySeries(60, func(_ time.Time, i int) float64 { return float64(i) })
	require.NoError(t, m.Fit(hist))

	one, err := m.MakeFutureFrame(HorizonDays(1))
	require.NoError(t, err)
	five, err := m.MakeFutureFrame(HorizonDays(5))
	require.NoError(t, err)

	assert.Len(t, one, len(hist)+365)
	assert.Equal(t, 4*365, len(five)-len(one))

	last := hist[len(hist)-1].DS
	assert.Equal(t, last.AddDate(0, 0, 1), one[len(hist)])
	assert.Equal(t, last.AddDate(0, 0, 365), one[len(one)-1])
}

func TestFutureFrameErrors(t *testing.T) {
	m := New(DefaultOptions())
	_, err := m.MakeFutureFrame(10)
	assert.Error(t, err)

	require.NoError(t, m.Fit(dailySeries(20, func(_ time.Time, i int) float64 { return float64(i) })))
	_, err = m.MakeFutureFrame(-1)
	assert.True(t, apperr.HasCode(err, apperr.ErrCodeInvalidParameter))
}

func TestRecoversLinearPlusWeekly(t *testing.T) {
	hist := dailySeries(120, func(d time.Time, i int) float64 {
		return 50 + 0.5*float64(i) + weeklyWave(d)
	})
	m := New(DefaultOptions())
	require.NoError(t, m.Fit(hist))
	assert.True(t, m.WeeklyEnabled())
	assert.False(t, m.YearlyEnabled())

	dates := make([]time.Time, len(hist))
	for i, r := range hist {
		dates[i] = r.DS
	}
	pred, err := m.Predict(dates)
	require.NoError(t, err)
	for i, r := range hist {
		assert.InDelta(t, r.Y, pred[i].YHat, 0.5, "row %d", i)
		assert.InDelta(t, weeklyWave(r.DS), pred[i].Weekly, 0.5, "row %d", i)
	}
}

func TestLinearExtrapolation(t *testing.T) {
	hist := dailySeries(200, func(_ time.Time, i int) float64 { return 10 + 2*float64(i) })
	m := New(DefaultOptions())
	require.NoError(t, m.Fit(hist))

	future, err := m.MakeFutureFrame(30)
	require.NoError(t, err)
	pred, err := m.Predict(future)
	require.NoError(t, err)

	last := pred[len(pred)-1]
	assert.InDelta(t, 10+2*float64(229), last.YHat, 5)
}

func TestIntervalBracketsAndWidens(t *testing.T) {
	hist := dailySeries(400, func(d time.Time, i int) float64 {
		// deterministic wiggle so residuals are non-zero
		return 100 + 0.1*float64(i) + weeklyWave(d) + 2*math.Sin(float64(i)/5)
	})
	m := New(DefaultOptions())
	require.NoError(t, m.Fit(hist))

	future, err := m.MakeFutureFrame(365)
	require.NoError(t, err)
	pred, err := m.Predict(future)
	require.NoError(t, err)

	for _, r := range pred {
		assert.LessOrEqual(t, r.YHatLower, r.YHat)
		assert.LessOrEqual(t, r.YHat, r.YHatUpper)
		assert.InDelta(t, r.YHat, r.Trend+r.Yearly+r.Weekly, 1e-9)
	}

	width := func(r model.ForecastRow) float64 { return r.YHatUpper - r.YHatLower }
	lastHist := pred[len(hist)-1]
	assert.Greater(t, width(pred[len(pred)-1]), width(lastHist))
}

func TestYearlyNeedsTwoYears(t *testing.T) {
	short := dailySeries(500, func(_ time.Time, i int) float64 { return float64(i) })
	m := New(DefaultOptions())
	require.NoError(t, m.Fit(short))
	assert.False(t, m.YearlyEnabled())
	dates, vals := m.YearlyProfile()
	assert.Empty(t, dates)
	assert.Empty(t, vals)

	long := dailySeries(800, func(d time.Time, i int) float64 {
		return 100 + 5*math.Sin(2*math.Pi*float64(d.YearDay())/365.25)
	})
	m = New(DefaultOptions())
	require.NoError(t, m.Fit(long))
	assert.True(t, m.YearlyEnabled())

	dates, vals = m.YearlyProfile()
	assert.Len(t, dates, 365)
	assert.Len(t, vals, 365)
	assert.Equal(t, time.January, dates[0].Month())
	assert.Equal(t, 31, dates[len(dates)-1].Day())
}

func TestWeeklyProfile(t *testing.T) {
	m := New(DefaultOptions())
	days, vals := m.WeeklyProfile()
	assert.Nil(t, days)
	assert.Nil(t, vals)

	require.NoError(t, m.Fit(dailySeries(60, func(d time.Time, _ int) float64 { return 20 + weeklyWave(d) })))
	days, vals = m.WeeklyProfile()
	require.Len(t, days, 7)
	require.Len(t, vals, 7)
	assert.Equal(t, time.Sunday, days[0])
	assert.Equal(t, time.Saturday, days[6])
}

func TestPredictBeforeFit(t *testing.T) {
	_, err := New(DefaultOptions()).Predict([]time.Time{day0})
	assert.Error(t, err)
}

func TestHorizonDaysClamps(t *testing.T) {
	assert.Equal(t, 365, HorizonDays(0))
	assert.Equal(t, 365, HorizonDays(1))
	assert.Equal(t, 3*365, HorizonDays(3))
	assert.Equal(t, 5*365, HorizonDays(9))
}

func TestTail(t *testing.T) {
	rows := make([]model.ForecastRow, 8)
	for i := range rows {
		rows[i].YHat = float64(i)
	}
	tail := Tail(rows, DefaultTailRows)
	require.Len(t, tail, 5)
	assert.Equal(t, 3.0, tail[0].YHat)
	assert.Equal(t, 7.0, tail[4].YHat)

	assert.Len(t, Tail(rows[:2], 5), 2)
	assert.Empty(t, Tail(rows, 0))
}

func TestCholeskySolve(t *testing.T) {
	ne := newNormalEquations(2)
	// y = 1 + 2x sampled at x = 0,1,2
	for _, x := range []float64{0, 1, 2} {
		ne.Add([]float64{1, x}, 1+2*x)
	}
	beta, err := ne.Solve(make([]float64, 2))
	require.NoError(t, err)
	assert.InDelta(t, 1, beta[0], 1e-6)
	assert.InDelta(t, 2, beta[1], 1e-6)
}

func TestNormalEquations_SingularWithoutPenalty(t *testing.T) {
	ne := newNormalEquations(2)
	// both columns identical
	for _, x := range []float64{1, 2, 3} {
		ne.Add([]float64{x, x}, x)
	}
	beta, err := ne.Solve([]float64{1, 1})
	require.NoError(t, err)
	assert.InDelta(t, beta[0], beta[1], 1e-9)

	empty := newNormalEquations(2)
	_, err = empty.Solve([]float64{-1, -1})
	assert.ErrorIs(t, err, errNotPositiveDefinite)
}
