package usecase

import (
	"context"
	"testing"
	"time"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/domain/repository"
	"CoinPulse/pkg/config"
)

type fakeMarket struct {
	candles      []models.Candle
	quotes       map[string]models.LiveQuote
	liveErrs     map[string]error
	historyErr   error
	lastDays     int
	lastInterval repository.Interval
}

func (f *fakeMarket) Live(_ context.Context, coin string) (models.LiveQuote, error) {
	if err := f.liveErrs[coin]; err != nil {
		return models.LiveQuote{}, err
	}
	return f.quotes[coin], nil
}

func (f *fakeMarket) History(_ context.Context, _ string, days int, interval repository.Interval) ([]models.Candle, error) {
	f.lastDays = days
	f.lastInterval = interval
	return f.candles, f.historyErr
}

func (f *fakeMarket) Coins() []string {
	out := make([]string, 0, len(f.quotes))
	for coin := range f.quotes {
		out = append(out, coin)
	}
	return out
}

type fakeForecaster struct {
	prices []float64
	err    error
}

func (f *fakeForecaster) Forecast(_ context.Context, _ string, _ []models.Candle, horizon int) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.prices[:horizon], nil
}

type recordingSink struct {
	got *models.Forecast
	err error
}

func (r *recordingSink) Record(_ context.Context, f *models.Forecast) error {
	r.got = f
	return r.err
}
func (r *recordingSink) Close() error { return nil }

type recordingPublisher struct {
	got *models.Forecast
}

func (r *recordingPublisher) Publish(_ context.Context, f *models.Forecast) error {
	r.got = f
	return nil
}
func (r *recordingPublisher) Close() error { return nil }

type countingMetrics struct {
	forecasts map[string]int
	errors    map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{forecasts: map[string]int{}, errors: map[string]int{}}
}

func (m *countingMetrics) RecordForecast(coin, outcome string, _ float64) {
	m.forecasts[coin+"/"+outcome]++
}
func (m *countingMetrics) RecordError(kind string)         { m.errors[kind]++ }
func (m *countingMetrics) RecordLastPrice(string, float64) {}
func (m *countingMetrics) RecordCache(string, bool)        {}
func (m *countingMetrics) RecordUpstream(string, float64)  {}

func forecastConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Forecast.HistoryDays = 90
	cfg.Forecast.MaxHorizon = 30
	cfg.Forecast.Timeout = 15 * time.Second
	return cfg
}

func TestPredictSuccess(t *testing.T) {
	market := &fakeMarket{candles: make([]models.Candle, 90)}
	engine := &fakeForecaster{prices: []float64{101, 102, 103, 104, 105}}
	sink := &recordingSink{}
	publisher := &recordingPublisher{}
	metrics := newCountingMetrics()

	uc := NewForecastUseCase(forecastConfig(), market, engine, sink, publisher, metrics, nil)
	uc.now = func() time.Time { return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC) }

	fc, err := uc.Predict(context.Background(), "Bitcoin", 3)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if fc.Coin != "bitcoin" || fc.Horizon != 3 {
		t.Fatalf("unexpected forecast header: %+v", fc)
	}
	if len(fc.Prices) != 3 || fc.Prices[0] != 101 {
		t.Fatalf("unexpected prices: %v", fc.Prices)
	}
	wantDates := []string{"2026-08-29", "2026-08-30", "2026-08-31"}
	for i, d := range wantDates {
		if fc.Dates[i] != d {
			t.Fatalf("dates = %v, want %v", fc.Dates, wantDates)
		}
	}

	if market.lastDays != 90 || market.lastInterval != repository.Interval1d {
		t.Fatalf("history fetched with days=%d interval=%s", market.lastDays, market.lastInterval)
	}
	if sink.got != fc || publisher.got != fc {
		t.Fatalf("sinks not fed")
	}
	if metrics.forecasts["bitcoin/ok"] != 1 {
		t.Fatalf("metrics = %v", metrics.forecasts)
	}
}

func TestPredictEngineError(t *testing.T) {
	market := &fakeMarket{candles: make([]models.Candle, 90)}
	engine := &fakeForecaster{err: models.Ef(models.ErrModelUnavailable, "bitcoin", "no artifacts")}
	metrics := newCountingMetrics()

	uc := NewForecastUseCase(forecastConfig(), market, engine, nil, nil, metrics, nil)
	_, err := uc.Predict(context.Background(), "bitcoin", 3)
	if !models.IsKind(err, models.ErrModelUnavailable) {
		t.Fatalf("got %v, want model unavailable", err)
	}
	if metrics.errors["model_unavailable"] != 1 || metrics.forecasts["bitcoin/error"] != 1 {
		t.Fatalf("metrics = %v / %v", metrics.errors, metrics.forecasts)
	}
}

func TestPredictHorizonBounds(t *testing.T) {
	uc := NewForecastUseCase(forecastConfig(), &fakeMarket{}, &fakeForecaster{}, nil, nil, newCountingMetrics(), nil)
	if _, err := uc.Predict(context.Background(), "bitcoin", 0); err == nil {
		t.Fatalf("horizon 0 accepted")
	}
	if _, err := uc.Predict(context.Background(), "bitcoin", 31); err == nil {
		t.Fatalf("horizon above max accepted")
	}
}

func TestPredictSinkFailureDoesNotFailRequest(t *testing.T) {
	market := &fakeMarket{candles: make([]models.Candle, 90)}
	engine := &fakeForecaster{prices: []float64{1, 2, 3}}
	sink := &recordingSink{err: context.DeadlineExceeded}

	uc := NewForecastUseCase(forecastConfig(), market, engine, sink, nil, newCountingMetrics(), nil)
	if _, err := uc.Predict(context.Background(), "bitcoin", 2); err != nil {
		t.Fatalf("sink failure leaked: %v", err)
	}
}

func TestLiveMultiSkipsFailedCoins(t *testing.T) {
	market := &fakeMarket{
		quotes: map[string]models.LiveQuote{
			"bitcoin":  {Coin: "bitcoin", Price: 1},
			"ethereum": {Coin: "ethereum", Price: 2},
		},
		liveErrs: map[string]error{
			"ethereum": models.Ef(models.ErrUpstream, "ethereum", "down"),
		},
	}
	uc := NewMarketUseCase(market, nil)

	out := uc.LiveMulti(context.Background(), []string{"bitcoin", "ethereum"})
	if len(out.Quotes) != 1 || out.Quotes["bitcoin"].Price != 1 {
		t.Fatalf("quotes = %+v", out.Quotes)
	}
	if len(out.Errors) != 1 || out.Errors["ethereum"] == "" {
		t.Fatalf("errors = %+v", out.Errors)
	}
}

func TestTopMoversRanking(t *testing.T) {
	market := &fakeMarket{
		quotes: map[string]models.LiveQuote{
			"a": {PercentChange: 5},
			"b": {PercentChange: -2},
			"c": {PercentChange: 9},
			"d": {PercentChange: 1},
			"e": {PercentChange: -7},
		},
	}
	uc := NewMarketUseCase(market, nil)

	movers := uc.TopMovers(context.Background(), nil)
	if len(movers.Gainers) != 3 || len(movers.Losers) != 3 {
		t.Fatalf("movers = %+v", movers)
	}
	if movers.Gainers[0].Coin != "c" || movers.Gainers[1].Coin != "a" {
		t.Fatalf("gainers = %+v", movers.Gainers)
	}
	if movers.Losers[0].Coin != "e" || movers.Losers[1].Coin != "b" {
		t.Fatalf("losers = %+v", movers.Losers)
	}
}

func TestTopMoversCoinSubset(t *testing.T) {
	market := &fakeMarket{
		quotes: map[string]models.LiveQuote{
			"a": {PercentChange: 5},
			"b": {PercentChange: -2},
			"c": {PercentChange: 9},
		},
	}
	uc := NewMarketUseCase(market, nil)

	movers := uc.TopMovers(context.Background(), []string{"a", "b"})
	if len(movers.Gainers) != 2 || len(movers.Losers) != 2 {
		t.Fatalf("movers = %+v", movers)
	}
	if movers.Gainers[0].Coin != "a" || movers.Losers[0].Coin != "b" {
		t.Fatalf("subset not honored: %+v", movers)
	}
	for _, m := range append(movers.Gainers, movers.Losers...) {
		if m.Coin == "c" {
			t.Fatalf("coin outside the requested subset ranked: %+v", movers)
		}
	}
}

func TestTrendAlignsDatesAndPrices(t *testing.T) {
	market := &fakeMarket{candles: []models.Candle{
		{Date: "2026-08-27", Close: 10},
		{Date: "2026-08-28", Close: 11},
	}}
	uc := NewMarketUseCase(market, nil)

	series, err := uc.Trend(context.Background(), "bitcoin", 2, "1d")
	if err != nil {
		t.Fatalf("Trend: %v", err)
	}
	if len(series.Dates) != 2 || series.Dates[1] != "2026-08-28" || series.Prices[1] != 11 {
		t.Fatalf("series = %+v", series)
	}
}
