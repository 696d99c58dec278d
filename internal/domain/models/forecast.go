package models

import "time"

// Forecast is the result of a multi-step price prediction: one close price per
// future calendar step, chronological, aligned with Dates.
type Forecast struct {
	Coin     string    `json:"coin"`
	IssuedAt time.Time `json:"issued_at"`
	Horizon  int       `json:"horizon"`
	Prices   []float64 `json:"prices"`
	Dates    []string  `json:"dates"`
}
