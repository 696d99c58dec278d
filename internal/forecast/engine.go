package forecast

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"CoinPulse/internal/domain/models"
)

// Predictor produces a scalar prediction from a feature window. Implemented
// by Model; tests substitute stubs.
type Predictor interface {
	Predict(window [][]float64) (float64, error)
}

// ArtifactSource resolves a per-asset model and scaler pair. Loaded models
// are assumed to be validated against the default schema.
type ArtifactSource interface {
	Load(ctx context.Context, asset string) (Predictor, *Scaler, error)
}

// Engine turns historical candles into a recursive multi-step close forecast.
// Each predicted step is fed back into the input window: the new row carries
// the normalized prediction in the close column and repeats the remaining
// features of the previous row, which keeps context columns slightly stale by
// construction rather than recomputing them from synthetic candles.
type Engine struct {
	source ArtifactSource
	schema Schema
}

// NewEngine creates a forecast engine over the given artifact source.
func NewEngine(source ArtifactSource) *Engine {
	return &Engine{source: source, schema: DefaultSchema()}
}

// Forecast predicts the next horizon close prices for coin from its candle
// history. It returns exactly horizon prices on success, oldest first, on the
// original price scale.
func (e *Engine) Forecast(ctx context.Context, coin string, history []models.Candle, horizon int) ([]float64, error) {
	if horizon < 1 {
		return nil, fmt.Errorf("forecast: horizon %d must be positive", horizon)
	}
	asset := strings.ToLower(coin)

	model, scaler, err := e.source.Load(ctx, asset)
	if err != nil {
		return nil, err
	}

	features, err := BuildFeatures(history)
	if err != nil {
		tagAsset(err, asset)
		return nil, err
	}
	if len(features) < WindowSize {
		return nil, models.Ef(models.ErrInsufficientHistory, asset, "have %d rows, need %d", len(features), WindowSize)
	}

	scaled, err := scaler.Transform(features)
	if err != nil {
		return nil, models.E(models.ErrFeatureComputation, asset, err)
	}

	window := make([][]float64, WindowSize)
	copy(window, scaled[len(scaled)-WindowSize:])

	prices := make([]float64, 0, horizon)
	for step := 0; step < horizon; step++ {
		if err := ctx.Err(); err != nil {
			return nil, models.E(models.ErrForecastTimeout, asset, err)
		}
		normalized, err := model.Predict(window)
		if err != nil {
			return nil, models.E(models.ErrModelInference, asset, err)
		}
		prices = append(prices, scaler.InverseColumn(closeColumn, normalized))

		next := make([]float64, len(window[WindowSize-1]))
		copy(next, window[WindowSize-1])
		next[closeColumn] = normalized
		window = append(window[1:], next)
	}
	return prices, nil
}

// tagAsset fills in the asset on kind-tagged errors raised below the engine,
// where the asset is not known.
func tagAsset(err error, asset string) {
	var de *models.DomainError
	if errors.As(err, &de) && de.Asset == "" {
		de.Asset = asset
	}
}
