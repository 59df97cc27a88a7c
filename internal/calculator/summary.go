package calculator

import (
	"errors"
	"math"

	"github.com/moznion/go-optional"

	"StockForecast/internal/model"
)

// tradingDays52w is the number of sessions scanned for the 52-week range.
const tradingDays52w = 252

// Calculate52WeekRange scans the most recent 252 rows and returns the high and low.
func Calculate52WeekRange(rows []model.PriceRow) (high, low float64, err error) {
	if len(rows) == 0 {
		return 0, 0, errors.New("no rows provided")
	}
	start := max(len(rows)-tradingDays52w, 0)
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, r := range rows[start:] {
		high = math.Max(high, r.High)
		low = math.Min(low, r.Low)
	}
	return high, low, nil
}

// Calculate52WeekPosition returns where the current price sits within the 52-week range (0.0~1.0).
func Calculate52WeekPosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	return math.Min(math.Max(pos, 0), 1), nil
}

// Summarize computes headline figures for the last row of a frame. The
// latest averages come straight from the closes, so the frame's MA columns
// need not be filled.
func Summarize(frame *model.PriceFrame) (*model.FrameSummary, error) {
	last, ok := frame.Last()
	if !ok {
		return nil, errors.New("empty frame")
	}
	high, low, err := Calculate52WeekRange(frame.Rows)
	if err != nil {
		return nil, err
	}
	pos, err := Calculate52WeekPosition(last.Close, high, low)
	if err != nil {
		return nil, err
	}

	closes := frame.Closes()
	ma50, ma100, ma200 := latestSMA(closes, 50), latestSMA(closes, 100), latestSMA(closes, 200)

	return &model.FrameSummary{
		LastDate:    last.Date,
		LastClose:   last.Close,
		MA50:        ptr(ma50),
		MA100:       ptr(ma100),
		MA200:       ptr(ma200),
		High52w:     high,
		Low52w:      low,
		Position52w: pos,
		Alignment:   alignment(ma50, ma100, ma200),
	}, nil
}

// latestSMA is None when there are fewer closes than the window.
func latestSMA(closes []float64, window int) optional.Option[float64] {
	v, err := CalculateSMA(closes, window)
	if err != nil {
		return optional.None[float64]()
	}
	return optional.Some(v)
}

// alignment describes where each fast average sits relative to its slow partner.
func alignment(ma50, ma100, ma200 optional.Option[float64]) []string {
	var out []string
	add := func(fast, slow optional.Option[float64], above, below string) {
		if fast.IsNone() || slow.IsNone() {
			return
		}
		if fast.Unwrap() > slow.Unwrap() {
			out = append(out, above)
		} else if fast.Unwrap() < slow.Unwrap() {
			out = append(out, below)
		}
	}
	add(ma50, ma200, "MA50 above MA200", "MA50 below MA200")
	add(ma100, ma200, "MA100 above MA200: medium-term momentum strengthening", "MA100 below MA200: medium-term momentum weakening")
	add(ma50, ma100, "MA50 above MA100: short-term momentum strengthening", "MA50 below MA100: short-term momentum weakening")
	return out
}

func ptr(o optional.Option[float64]) *float64 {
	if o.IsNone() {
		return nil
	}
	v := o.Unwrap()
	return &v
}
