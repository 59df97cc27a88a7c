package calculator

import (
	"errors"

	"github.com/moznion/go-optional"

	"StockForecast/internal/model"
)

// CalculateSMA computes the simple moving average of the last period prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// resumEvery bounds floating point drift of the running sum.
const resumEvery = 1024

// RollingSMA returns the trailing simple moving average for every index.
// Element i is None while i < window-1.
func RollingSMA(values []float64, window int) []optional.Option[float64] {
	out := make([]optional.Option[float64], len(values))
	if window <= 0 {
		for i := range out {
			out[i] = optional.None[float64]()
		}
		return out
	}

	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i < window-1 {
			out[i] = optional.None[float64]()
			continue
		}
		if i%resumEvery == 0 {
			sum = 0
			for j := i - window + 1; j <= i; j++ {
				sum += values[j]
			}
		}
		out[i] = optional.Some(sum / float64(window))
	}
	return out
}

// ApplyMovingAverages fills the MA50, MA100 and MA200 columns of the frame.
func ApplyMovingAverages(frame *model.PriceFrame) {
	closes := frame.Closes()
	ma50 := RollingSMA(closes, model.WindowMA50)
	ma100 := RollingSMA(closes, model.WindowMA100)
	ma200 := RollingSMA(closes, model.WindowMA200)
	for i := range frame.Rows {
		frame.Rows[i].MA50 = ma50[i]
		frame.Rows[i].MA100 = ma100[i]
		frame.Rows[i].MA200 = ma200[i]
	}
}

// Column returns the moving average column for a supported window.
func Column(frame *model.PriceFrame, window int) []optional.Option[float64] {
	out := make([]optional.Option[float64], len(frame.Rows))
	for i, r := range frame.Rows {
		switch window {
		case model.WindowMA50:
			out[i] = r.MA50
		case model.WindowMA100:
			out[i] = r.MA100
		case model.WindowMA200:
			out[i] = r.MA200
		default:
			out[i] = optional.None[float64]()
		}
	}
	return out
}
