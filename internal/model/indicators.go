package model

import "time"

// CrossoverKind labels the direction of a fast/slow moving average cross.
type CrossoverKind string

const (
	GoldenCross  CrossoverKind = "GOLDEN_CROSS"
	DeathCross   CrossoverKind = "DEATH_CROSS"
	MomentumUp   CrossoverKind = "MOMENTUM_STRENGTHENING"
	MomentumDown CrossoverKind = "MOMENTUM_WEAKENING"
)

// Crossover is a day on which the fast average moved to the other side of the slow one.
type Crossover struct {
	Date  time.Time     `json:"date"`
	Fast  int           `json:"fast"`
	Slow  int           `json:"slow"`
	Kind  CrossoverKind `json:"kind"`
	Close float64       `json:"close"`
}

// Label returns the human label shown next to the crossover.
func (c Crossover) Label() string {
	switch c.Kind {
	case GoldenCross:
		return "Golden Cross"
	case DeathCross:
		return "Death Cross"
	case MomentumUp:
		return "Momentum strengthening"
	case MomentumDown:
		return "Momentum weakening"
	default:
		return string(c.Kind)
	}
}

// FrameSummary holds headline figures for the latest row of a price frame.
type FrameSummary struct {
	LastDate    time.Time `json:"last_date"`
	LastClose   float64   `json:"last_close"`
	MA50        *float64  `json:"ma50,omitempty"`
	MA100       *float64  `json:"ma100,omitempty"`
	MA200       *float64  `json:"ma200,omitempty"`
	High52w     float64   `json:"high_52w"`
	Low52w      float64   `json:"low_52w"`
	Position52w float64   `json:"position_52w"` // 0.0 ~ 1.0
	Alignment   []string  `json:"alignment"`
}
