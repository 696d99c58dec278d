package service

import (
	"context"

	"CoinPulse/internal/domain/models"
)

// Forecaster produces a multi-step close-price forecast from historical
// candles. Implementations return one price per future step, oldest first.
type Forecaster interface {
	Forecast(ctx context.Context, coin string, history []models.Candle, horizon int) ([]float64, error)
}
