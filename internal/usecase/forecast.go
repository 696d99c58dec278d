package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/domain/repository"
	"CoinPulse/internal/domain/service"
	"CoinPulse/pkg/config"
	"CoinPulse/pkg/logger"
	"CoinPulse/pkg/util"
)

// ForecastUseCase runs the prediction flow: fetch history, run the engine,
// attach a forward date axis, then record the result in the sinks.
type ForecastUseCase struct {
	market    repository.MarketData
	engine    service.Forecaster
	sink      repository.ForecastSink      // may be nil
	publisher repository.ForecastPublisher // may be nil
	metrics   repository.Metrics
	log       *logger.Logger

	historyDays int
	maxHorizon  int
	timeout     time.Duration
	now         func() time.Time
}

// NewForecastUseCase creates the forecast use case. sink and publisher are
// optional; when present they are fed best-effort and never fail a request.
func NewForecastUseCase(
	cfg *config.Config,
	market repository.MarketData,
	engine service.Forecaster,
	sink repository.ForecastSink,
	publisher repository.ForecastPublisher,
	metrics repository.Metrics,
	log *logger.Logger,
) *ForecastUseCase {
	return &ForecastUseCase{
		market:      market,
		engine:      engine,
		sink:        sink,
		publisher:   publisher,
		metrics:     metrics,
		log:         log,
		historyDays: cfg.Forecast.HistoryDays,
		maxHorizon:  cfg.Forecast.MaxHorizon,
		timeout:     cfg.Forecast.Timeout,
		now:         time.Now,
	}
}

// Predict forecasts the next days close prices for coin. Dates start at the
// calendar day of the request.
func (u *ForecastUseCase) Predict(ctx context.Context, coin string, days int) (*models.Forecast, error) {
	coin = strings.ToLower(coin)
	if days < 1 || days > u.maxHorizon {
		return nil, fmt.Errorf("horizon %d outside [1, %d]", days, u.maxHorizon)
	}

	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	start := u.now()
	history, err := u.market.History(ctx, coin, u.historyDays, repository.Interval1d)
	if err != nil {
		u.observeFailure(coin, err, start)
		return nil, err
	}

	prices, err := u.engine.Forecast(ctx, coin, history, days)
	if err != nil {
		u.observeFailure(coin, err, start)
		return nil, err
	}

	issued := u.now()
	fc := &models.Forecast{
		Coin:     coin,
		IssuedAt: issued.UTC(),
		Horizon:  days,
		Prices:   prices,
		Dates:    util.ForwardDates(issued, days),
	}
	u.metrics.RecordForecast(coin, "ok", issued.Sub(start).Seconds())

	u.record(fc)
	return fc, nil
}

func (u *ForecastUseCase) observeFailure(coin string, err error, start time.Time) {
	kind, ok := models.KindOf(err)
	if !ok {
		kind = "internal"
	}
	u.metrics.RecordError(string(kind))
	u.metrics.RecordForecast(coin, "error", u.now().Sub(start).Seconds())
}

// record feeds the sinks with a detached deadline so a slow store cannot
// block or fail the caller.
func (u *ForecastUseCase) record(fc *models.Forecast) {
	if u.sink == nil && u.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if u.sink != nil {
		if err := u.sink.Record(ctx, fc); err != nil && u.log != nil {
			u.log.Error("forecast log write failed", logger.String("coin", fc.Coin), logger.Error(err))
		}
	}
	if u.publisher != nil {
		if err := u.publisher.Publish(ctx, fc); err != nil && u.log != nil {
			u.log.Error("forecast event publish failed", logger.String("coin", fc.Coin), logger.Error(err))
		}
	}
}
