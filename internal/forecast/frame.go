package forecast

import "StockForecast/internal/model"

const (
	MinYears        = 1
	MaxYears        = 5
	DefaultTailRows = 5
)

// ToTrainingFrame maps each price row to (ds=Date, y=Close), preserving order.
func ToTrainingFrame(frame *model.PriceFrame) []model.TrainingRow {
	out := make([]model.TrainingRow, len(frame.Rows))
	for i, r := range frame.Rows {
		out[i] = model.TrainingRow{DS: r.Date, Y: r.Close}
	}
	return out
}

// ClampYears bounds a requested horizon to [MinYears, MaxYears].
func ClampYears(years int) int {
	return max(MinYears, min(MaxYears, years))
}

// HorizonDays converts a horizon in years to forecast days.
func HorizonDays(years int) int {
	return ClampYears(years) * 365
}

// Tail returns the last n rows, or all of them when there are fewer.
func Tail(rows []model.ForecastRow, n int) []model.ForecastRow {
	if n <= 0 {
		return nil
	}
	if n >= len(rows) {
		return rows
	}
	return rows[len(rows)-n:]
}
