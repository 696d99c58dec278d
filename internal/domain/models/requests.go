package models

// LiveRequest targets a single coin by its canonical name.
type LiveRequest struct {
	Coin string `param:"coin" validate:"required"`
}

// LiveMultiRequest fetches quotes for several coins at once. An empty list
// falls back to the configured coin set.
type LiveMultiRequest struct {
	Coins []string `query:"coins" validate:"omitempty,dive,required"`
}

// HistoryRequest fetches candles for a coin over a trailing window.
type HistoryRequest struct {
	Coin     string `param:"coin" validate:"required"`
	Days     int    `query:"days" default:"30" validate:"gte=1,lte=1000"`
	Interval string `query:"interval" default:"1d" validate:"oneof=1m 5m 1h 1d"`
}

// TrendRequest fetches the dates+closes view of a coin's history.
type TrendRequest struct {
	Coin     string `param:"coin" validate:"required"`
	Days     int    `query:"days" default:"30" validate:"gte=1,lte=1000"`
	Interval string `query:"interval" default:"1d" validate:"oneof=1m 5m 1h 1d"`
}

// TopMoversRequest ranks a coin subset by 24h change. An empty list falls
// back to the configured coin set.
type TopMoversRequest struct {
	Coins []string `query:"coins" validate:"omitempty,dive,required"`
}

// NewsRequest fetches headlines for a coin.
type NewsRequest struct {
	Coin string `param:"coin" validate:"required"`
}

// PredictRequest asks for a multi-step price forecast.
type PredictRequest struct {
	Coin string `param:"coin" validate:"required"`
	Days int    `param:"days" validate:"required,gte=1,lte=30"`
}
