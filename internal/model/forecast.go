package model

import "time"

// TrainingRow is the (ds, y) pair consumed by the forecasting model.
type TrainingRow struct {
	DS time.Time `json:"ds"`
	Y  float64   `json:"y"`
}

// ForecastRow is one predicted day together with its additive components.
type ForecastRow struct {
	DS        time.Time `json:"ds"`
	Trend     float64   `json:"trend"`
	Yearly    float64   `json:"yearly"`
	Weekly    float64   `json:"weekly"`
	YHat      float64   `json:"yhat"`
	YHatLower float64   `json:"yhat_lower"`
	YHatUpper float64   `json:"yhat_upper"`
}
