package calculator

import (
	"sort"

	"github.com/moznion/go-optional"

	"StockForecast/internal/model"
)

// CrossPairs lists the (fast, slow) windows watched for crossovers.
var CrossPairs = [][2]int{
	{model.WindowMA50, model.WindowMA200},
	{model.WindowMA100, model.WindowMA200},
	{model.WindowMA50, model.WindowMA100},
}

// DetectCrossovers scans every pair in CrossPairs and returns the crossover
// events in date order. A cross is reported on the first row where the sign of
// fast-slow differs from the previous row's; rows where either side is
// undefined or the two are equal do not reset the previous sign.
func DetectCrossovers(frame *model.PriceFrame) []model.Crossover {
	var events []model.Crossover
	for _, pair := range CrossPairs {
		events = append(events, detectPair(frame, pair[0], pair[1])...)
	}
	sortByDate(events)
	return events
}

func detectPair(frame *model.PriceFrame, fastW, slowW int) []model.Crossover {
	fast := Column(frame, fastW)
	slow := Column(frame, slowW)

	var events []model.Crossover
	prevSign := 0
	for i := range frame.Rows {
		sign := diffSign(fast[i], slow[i])
		if sign == 0 {
			continue
		}
		if prevSign != 0 && sign != prevSign {
			events = append(events, model.Crossover{
				Date:  frame.Rows[i].Date,
				Fast:  fastW,
				Slow:  slowW,
				Kind:  kindFor(fastW, slowW, sign > 0),
				Close: frame.Rows[i].Close,
			})
		}
		prevSign = sign
	}
	return events
}

func diffSign(fast, slow optional.Option[float64]) int {
	if fast.IsNone() || slow.IsNone() {
		return 0
	}
	d := fast.Unwrap() - slow.Unwrap()
	switch {
	case d > 0:
		return 1
	case d < 0:
		return -1
	default:
		return 0
	}
}

func kindFor(fastW, slowW int, up bool) model.CrossoverKind {
	if fastW == model.WindowMA50 && slowW == model.WindowMA200 {
		if up {
			return model.GoldenCross
		}
		return model.DeathCross
	}
	if up {
		return model.MomentumUp
	}
	return model.MomentumDown
}

func sortByDate(events []model.Crossover) {
	sort.SliceStable(events, func(i, j int) bool { return events[i].Date.Before(events[j].Date) })
}

// LatestOnLastRow returns the crossovers that happened on the frame's final row.
func LatestOnLastRow(frame *model.PriceFrame, events []model.Crossover) []model.Crossover {
	last, ok := frame.Last()
	if !ok {
		return nil
	}
	var out []model.Crossover
	for _, e := range events {
		if e.Date.Equal(last.Date) {
			out = append(out, e)
		}
	}
	return out
}
