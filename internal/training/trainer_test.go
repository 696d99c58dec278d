package training

import (
	"context"
	"math"
	"testing"

	"CoinPulse/internal/artifacts"
	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/forecast"
)

func sineCandles(n int) []models.Candle {
	out := make([]models.Candle, n)
	for i := range out {
		p := 100 + 10*math.Sin(float64(i)/5)
		out[i] = models.Candle{Open: p, High: p * 1.01, Low: p * 0.99, Close: p, Volume: 100}
	}
	return out
}

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Hidden = 4
	cfg.Epochs = 2
	cfg.BatchSize = 8
	return cfg
}

func TestTrainProducesValidArtifacts(t *testing.T) {
	trainer := New(smallConfig(), nil)
	res, err := trainer.Train("Bitcoin", sineCandles(120))
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	if res.Model.Asset != "bitcoin" {
		t.Fatalf("asset = %q, want lower-cased", res.Model.Asset)
	}
	if err := res.Model.Validate(forecast.DefaultSchema()); err != nil {
		t.Fatalf("trained model invalid: %v", err)
	}
	if err := res.Scaler.Validate(forecast.DefaultSchema()); err != nil {
		t.Fatalf("fitted scaler invalid: %v", err)
	}
	if res.Samples != 120-forecast.WindowSize {
		t.Fatalf("samples = %d, want %d", res.Samples, 120-forecast.WindowSize)
	}
	if math.IsNaN(res.TrainLoss) || math.IsInf(res.TrainLoss, 0) {
		t.Fatalf("train loss not finite: %v", res.TrainLoss)
	}
}

func TestTrainInsufficientHistory(t *testing.T) {
	trainer := New(smallConfig(), nil)
	_, err := trainer.Train("bitcoin", sineCandles(forecast.WindowSize))
	if !models.IsKind(err, models.ErrInsufficientHistory) {
		t.Fatalf("got %v, want insufficient history", err)
	}
}

func TestTrainDeterministicWithSeed(t *testing.T) {
	candles := sineCandles(100)
	a, err := New(smallConfig(), nil).Train("bitcoin", candles)
	if err != nil {
		t.Fatalf("first Train: %v", err)
	}
	b, err := New(smallConfig(), nil).Train("bitcoin", candles)
	if err != nil {
		t.Fatalf("second Train: %v", err)
	}
	if a.TrainLoss != b.TrainLoss {
		t.Fatalf("losses differ across identical seeds: %v vs %v", a.TrainLoss, b.TrainLoss)
	}
	if a.Model.DenseB != b.Model.DenseB {
		t.Fatalf("weights differ across identical seeds")
	}
}

func TestTrainedArtifactsServeForecasts(t *testing.T) {
	candles := sineCandles(120)
	res, err := New(smallConfig(), nil).Train("bitcoin", candles)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	store := artifacts.NewFSStore(t.TempDir())
	if err := store.Save("bitcoin", res.Model, res.Scaler); err != nil {
		t.Fatalf("Save: %v", err)
	}

	engine := forecast.NewEngine(store)
	prices, err := engine.Forecast(context.Background(), "bitcoin", candles, 5)
	if err != nil {
		t.Fatalf("Forecast with trained artifacts: %v", err)
	}
	if len(prices) != 5 {
		t.Fatalf("got %d prices, want 5", len(prices))
	}
	for i, p := range prices {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			t.Fatalf("price %d not finite: %v", i, p)
		}
	}
}

func TestBackwardMatchesNumericalGradient(t *testing.T) {
	cfg := smallConfig()
	candles := sineCandles(60)
	features, err := forecast.BuildFeatures(candles)
	if err != nil {
		t.Fatalf("BuildFeatures: %v", err)
	}
	scaler, err := forecast.FitScaler(forecast.DefaultSchema(), features)
	if err != nil {
		t.Fatalf("FitScaler: %v", err)
	}
	scaled, err := scaler.Transform(features)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	samples := buildSamples(scaled)
	s := samples[0]

	model := initModelForTest(cfg.Hidden)

	grad := newGradient(model.Hidden, model.Inputs)
	yhat, caches := forwardCached(model, s.window)
	backward(model, caches, 2*(yhat-s.target), grad)

	// Check a few parameters against central finite differences.
	loss := func() float64 {
		y, _ := forwardCached(model, s.window)
		d := y - s.target
		return d * d
	}
	const eps = 1e-6
	checks := []struct {
		name string
		p    *float64
		g    float64
	}{
		{"dense_b", &model.DenseB, grad.DenseB},
		{"dense_w0", &model.DenseW[0], grad.DenseW[0]},
		{"wi00", &model.Wi[0][0], grad.Wi[0][0]},
		{"uf11", &model.Uf[1][1], grad.Uf[1][1]},
		{"bg2", &model.Bg[2], grad.Bg[2]},
	}
	for _, c := range checks {
		orig := *c.p
		*c.p = orig + eps
		up := loss()
		*c.p = orig - eps
		down := loss()
		*c.p = orig
		numeric := (up - down) / (2 * eps)
		if math.Abs(numeric-c.g) > 1e-4*(1+math.Abs(numeric)) {
			t.Fatalf("%s: analytic %v vs numeric %v", c.name, c.g, numeric)
		}
	}
}

func initModelForTest(hidden int) *forecast.Model {
	// Fixed small weights keep the numerical gradient well conditioned.
	inputs := forecast.DefaultSchema().Len()
	mk := func(rows, cols int, base float64) [][]float64 {
		m := make([][]float64, rows)
		for i := range m {
			m[i] = make([]float64, cols)
			for j := range m[i] {
				m[i][j] = base * float64((i+j)%5-2)
			}
		}
		return m
	}
	vec := func(n int, base float64) []float64 {
		v := make([]float64, n)
		for i := range v {
			v[i] = base * float64(i%3-1)
		}
		return v
	}
	return &forecast.Model{
		Asset:  "test",
		Window: forecast.WindowSize,
		Inputs: inputs,
		Hidden: hidden,
		Wi:     mk(hidden, inputs, 0.05), Wf: mk(hidden, inputs, 0.04),
		Wg: mk(hidden, inputs, 0.06), Wo: mk(hidden, inputs, 0.03),
		Ui: mk(hidden, hidden, 0.05), Uf: mk(hidden, hidden, 0.04),
		Ug: mk(hidden, hidden, 0.06), Uo: mk(hidden, hidden, 0.03),
		Bi: vec(hidden, 0.1), Bf: vec(hidden, 0.1),
		Bg: vec(hidden, 0.1), Bo: vec(hidden, 0.1),
		DenseW: vec(hidden, 0.2), DenseB: 0.1,
	}
}
