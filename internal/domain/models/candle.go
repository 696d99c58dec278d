package models

// Candle represents one OHLCV row of market history. Date and Timestamp are
// derived from the same UTC instant; rows in a series are ordered oldest first.
type Candle struct {
	Date      string  `json:"date"`
	Timestamp string  `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}
