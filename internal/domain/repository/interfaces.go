package repository

import (
	"context"

	"CoinPulse/internal/domain/models"
)

// MarketData provides live quotes and historical candles for known coins.
type MarketData interface {
	Live(ctx context.Context, coin string) (models.LiveQuote, error)
	History(ctx context.Context, coin string, days int, interval Interval) ([]models.Candle, error)
	Coins() []string
}

// NewsSource provides headlines for a coin.
type NewsSource interface {
	Fetch(ctx context.Context, coin string) ([]models.NewsItem, error)
}

// ForecastSink persists issued forecasts for later analysis.
type ForecastSink interface {
	Record(ctx context.Context, f *models.Forecast) error
	Close() error
}

// ForecastPublisher emits issued forecasts to downstream consumers.
type ForecastPublisher interface {
	Publish(ctx context.Context, f *models.Forecast) error
	Close() error
}

// Metrics records operational measurements.
type Metrics interface {
	RecordForecast(coin, outcome string, seconds float64)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordCache(scope string, hit bool)
	RecordUpstream(endpoint string, seconds float64)
}
