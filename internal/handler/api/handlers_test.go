package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/domain/repository"
	"CoinPulse/internal/usecase"
	"CoinPulse/pkg/config"
	xhttp "CoinPulse/pkg/http"
	xlogger "CoinPulse/pkg/logger"
)

type fakeMarket struct {
	quotes  map[string]models.LiveQuote
	candles []models.Candle
	err     error
}

func (f *fakeMarket) Live(_ context.Context, coin string) (models.LiveQuote, error) {
	if f.err != nil {
		return models.LiveQuote{}, f.err
	}
	q, ok := f.quotes[coin]
	if !ok {
		return models.LiveQuote{}, models.Ef(models.ErrUnknownAsset, coin, "no symbol mapping")
	}
	return q, nil
}

func (f *fakeMarket) History(_ context.Context, coin string, _ int, _ repository.Interval) ([]models.Candle, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.quotes[coin]; !ok {
		return nil, models.Ef(models.ErrUnknownAsset, coin, "no symbol mapping")
	}
	return f.candles, nil
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

type nopMetrics struct{}

func (nopMetrics) RecordForecast(string, string, float64) {}
func (nopMetrics) RecordError(string)                     {}
func (nopMetrics) RecordLastPrice(string, float64)        {}
func (nopMetrics) RecordCache(string, bool)               {}
func (nopMetrics) RecordUpstream(string, float64)         {}

type fakeNews struct {
	items []models.NewsItem
}

func (f *fakeNews) Fetch(_ context.Context, _ string) ([]models.NewsItem, error) {
	return f.items, nil
}

func testLogger(t *testing.T) *xlogger.Logger {
	t.Helper()
	log, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func newTestEcho(t *testing.T, market *fakeMarket, forecaster *fakeForecaster) *echo.Echo {
	t.Helper()
	cfg := &config.Config{}
	cfg.Forecast.HistoryDays = 90
	cfg.Forecast.MaxHorizon = 30
	cfg.Forecast.Timeout = 5 * time.Second

	log := testLogger(t)
	marketUC := usecase.NewMarketUseCase(market, log)
	newsUC := usecase.NewNewsUseCase(&fakeNews{items: []models.NewsItem{{Title: "headline"}}})
	forecastUC := usecase.NewForecastUseCase(cfg, market, forecaster, nil, nil, nopMetrics{}, log)

	e := echo.New()
	NewRouter(
		NewMarketEchoHandler(log, marketUC, newsUC),
		NewForecastEchoHandler(log, forecastUC),
	).RegisterRoutes(e)
	return e
}

func doRequest(t *testing.T, e *echo.Echo, path string) xhttp.APIResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("HTTP status = %d, want 200 envelope", rec.Code)
	}
	var resp xhttp.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp
}

func defaultMarket() *fakeMarket {
	return &fakeMarket{
		quotes: map[string]models.LiveQuote{
			"bitcoin": {Coin: "bitcoin", Price: 65000, PercentChange: 1.5},
		},
		candles: make([]models.Candle, 90),
	}
}

func TestPredictEndpoint(t *testing.T) {
	e := newTestEcho(t, defaultMarket(), &fakeForecaster{prices: []float64{1, 2, 3, 4, 5}})

	resp := doRequest(t, e, "/api/predict/bitcoin/3")
	if resp.Status != http.StatusOK {
		t.Fatalf("envelope status = %d, want 200", resp.Status)
	}
	data, _ := json.Marshal(resp.Data)
	var fc models.Forecast
	if err := json.Unmarshal(data, &fc); err != nil {
		t.Fatalf("decode forecast: %v", err)
	}
	if fc.Coin != "bitcoin" || len(fc.Prices) != 3 || len(fc.Dates) != 3 {
		t.Fatalf("forecast = %+v", fc)
	}
}

func TestPredictUnknownCoin(t *testing.T) {
	e := newTestEcho(t, defaultMarket(), &fakeForecaster{prices: []float64{1}})

	resp := doRequest(t, e, "/api/predict/dogecoin/1")
	if resp.Status != http.StatusNotFound {
		t.Fatalf("envelope status = %d, want 404", resp.Status)
	}
}

func TestPredictModelUnavailable(t *testing.T) {
	e := newTestEcho(t, defaultMarket(), &fakeForecaster{err: models.Ef(models.ErrModelUnavailable, "bitcoin", "no artifacts")})

	resp := doRequest(t, e, "/api/predict/bitcoin/1")
	if resp.Status != http.StatusNotFound {
		t.Fatalf("envelope status = %d, want 404", resp.Status)
	}
}

func TestPredictInvalidDays(t *testing.T) {
	e := newTestEcho(t, defaultMarket(), &fakeForecaster{prices: []float64{1}})

	resp := doRequest(t, e, "/api/predict/bitcoin/0")
	if resp.Status != http.StatusBadRequest {
		t.Fatalf("envelope status = %d, want 400", resp.Status)
	}
	resp = doRequest(t, e, "/api/predict/bitcoin/99")
	if resp.Status != http.StatusBadRequest {
		t.Fatalf("envelope status = %d, want 400", resp.Status)
	}
}

func TestLiveEndpoint(t *testing.T) {
	e := newTestEcho(t, defaultMarket(), &fakeForecaster{})

	resp := doRequest(t, e, "/api/live/bitcoin")
	if resp.Status != http.StatusOK {
		t.Fatalf("envelope status = %d, want 200", resp.Status)
	}

	resp = doRequest(t, e, "/api/live/unknowncoin")
	if resp.Status != http.StatusNotFound {
		t.Fatalf("envelope status = %d, want 404", resp.Status)
	}
}

func TestTrendEndpoint(t *testing.T) {
	market := defaultMarket()
	market.candles = []models.Candle{
		{Date: "2026-08-27", Close: 10},
		{Date: "2026-08-28", Close: 11},
	}
	e := newTestEcho(t, market, &fakeForecaster{})

	resp := doRequest(t, e, "/api/trend/bitcoin?days=2")
	if resp.Status != http.StatusOK {
		t.Fatalf("envelope status = %d, want 200", resp.Status)
	}
	data, _ := json.Marshal(resp.Data)
	var series models.TrendSeries
	if err := json.Unmarshal(data, &series); err != nil {
		t.Fatalf("decode series: %v", err)
	}
	if len(series.Dates) != 2 || series.Prices[1] != 11 {
		t.Fatalf("series = %+v", series)
	}
}

func TestHistoryInvalidInterval(t *testing.T) {
	e := newTestEcho(t, defaultMarket(), &fakeForecaster{})

	resp := doRequest(t, e, "/api/history/bitcoin?interval=2w")
	if resp.Status != http.StatusBadRequest {
		t.Fatalf("envelope status = %d, want 400", resp.Status)
	}
}

func TestNewsEndpoint(t *testing.T) {
	e := newTestEcho(t, defaultMarket(), &fakeForecaster{})

	resp := doRequest(t, e, "/api/news/bitcoin")
	if resp.Status != http.StatusOK {
		t.Fatalf("envelope status = %d, want 200", resp.Status)
	}
}

func TestTopMoversEndpoint(t *testing.T) {
	e := newTestEcho(t, defaultMarket(), &fakeForecaster{})

	resp := doRequest(t, e, "/api/top-movers")
	if resp.Status != http.StatusOK {
		t.Fatalf("envelope status = %d, want 200", resp.Status)
	}
}

func TestTopMoversCoinSubset(t *testing.T) {
	market := defaultMarket()
	market.quotes["ethereum"] = models.LiveQuote{Coin: "ethereum", PercentChange: -3}
	market.quotes["ripple"] = models.LiveQuote{Coin: "ripple", PercentChange: 7}
	e := newTestEcho(t, market, &fakeForecaster{})

	resp := doRequest(t, e, "/api/top-movers?coins=bitcoin&coins=ethereum")
	if resp.Status != http.StatusOK {
		t.Fatalf("envelope status = %d, want 200", resp.Status)
	}
	data, _ := json.Marshal(resp.Data)
	var movers models.TopMovers
	if err := json.Unmarshal(data, &movers); err != nil {
		t.Fatalf("decode movers: %v", err)
	}
	if len(movers.Gainers) != 2 {
		t.Fatalf("movers = %+v", movers)
	}
	if movers.Gainers[0].Coin != "bitcoin" || movers.Gainers[1].Coin != "ethereum" {
		t.Fatalf("gainers = %+v", movers.Gainers)
	}
	for _, m := range movers.Gainers {
		if m.Coin == "ripple" {
			t.Fatalf("coin outside the requested subset ranked: %+v", movers)
		}
	}
}
