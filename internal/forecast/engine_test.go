package forecast

import (
	"context"
	"math"
	"testing"
	"time"

	"CoinPulse/internal/domain/models"
)

// stubPredictor returns the close of the last window row plus a fixed
// increment, in normalized space.
type stubPredictor struct {
	increment float64
	windows   [][][]float64
}

func (s *stubPredictor) Predict(window [][]float64) (float64, error) {
	copied := make([][]float64, len(window))
	for i, row := range window {
		r := make([]float64, len(row))
		copy(r, row)
		copied[i] = r
	}
	s.windows = append(s.windows, copied)
	return window[len(window)-1][0] + s.increment, nil
}

type stubSource struct {
	predictor Predictor
	scaler    *Scaler
	err       error
}

func (s *stubSource) Load(ctx context.Context, asset string) (Predictor, *Scaler, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.predictor, s.scaler, nil
}

func rampCandles(n int) []models.Candle {
	out := make([]models.Candle, n)
	for i := range out {
		p := 100 + float64(i)
		out[i] = models.Candle{Open: p, High: p + 1, Low: p - 1, Close: p, Volume: 10}
	}
	return out
}

func fitTestScaler(t *testing.T, candles []models.Candle) *Scaler {
	t.Helper()
	matrix, err := BuildFeatures(candles)
	if err != nil {
		t.Fatalf("BuildFeatures: %v", err)
	}
	s, err := FitScaler(DefaultSchema(), matrix)
	if err != nil {
		t.Fatalf("FitScaler: %v", err)
	}
	return s
}

func TestEngineForecastHorizon(t *testing.T) {
	candles := rampCandles(60)
	scaler := fitTestScaler(t, candles)
	stub := &stubPredictor{increment: 0.01}
	engine := NewEngine(&stubSource{predictor: stub, scaler: scaler})

	prices, err := engine.Forecast(context.Background(), "bitcoin", candles, 7)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if len(prices) != 7 {
		t.Fatalf("got %d prices, want 7", len(prices))
	}
	for i, p := range prices {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			t.Fatalf("price %d is not finite: %v", i, p)
		}
	}
	// A positive normalized increment must unscale to strictly rising prices.
	for i := 1; i < len(prices); i++ {
		if prices[i] <= prices[i-1] {
			t.Fatalf("prices not increasing at step %d: %v", i, prices)
		}
	}
}

func TestEngineInsufficientHistory(t *testing.T) {
	candles := rampCandles(60)
	scaler := fitTestScaler(t, candles)
	engine := NewEngine(&stubSource{predictor: &stubPredictor{}, scaler: scaler})

	_, err := engine.Forecast(context.Background(), "bitcoin", candles[:29], 3)
	if !models.IsKind(err, models.ErrInsufficientHistory) {
		t.Fatalf("29 rows: got %v, want insufficient history", err)
	}

	if _, err := engine.Forecast(context.Background(), "bitcoin", candles[:30], 3); err != nil {
		t.Fatalf("30 rows should be enough: %v", err)
	}
}

func TestEngineWindowFeedback(t *testing.T) {
	candles := rampCandles(60)
	scaler := fitTestScaler(t, candles)
	stub := &stubPredictor{increment: 0.02}
	engine := NewEngine(&stubSource{predictor: stub, scaler: scaler})

	if _, err := engine.Forecast(context.Background(), "bitcoin", candles, 3); err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if len(stub.windows) != 3 {
		t.Fatalf("predictor called %d times, want 3", len(stub.windows))
	}

	first := stub.windows[0]
	second := stub.windows[1]
	// The window slides by one row between steps.
	for j := range first[1] {
		if second[0][j] != first[1][j] {
			t.Fatalf("second window row 0 differs from first window row 1 at column %d", j)
		}
	}
	// The appended row carries the normalized prediction in the close column
	// and repeats every other feature of the previous last row.
	prevLast := first[len(first)-1]
	appended := second[len(second)-1]
	wantClose := prevLast[0] + 0.02
	if math.Abs(appended[0]-wantClose) > 1e-12 {
		t.Fatalf("appended close = %v, want %v", appended[0], wantClose)
	}
	for j := 1; j < len(appended); j++ {
		if appended[j] != prevLast[j] {
			t.Fatalf("appended column %d = %v, want carried %v", j, appended[j], prevLast[j])
		}
	}
}

func TestEngineHorizonOneUnscalesRawOutput(t *testing.T) {
	candles := rampCandles(60)
	scaler := fitTestScaler(t, candles)
	stub := &stubPredictor{increment: 0.03}
	engine := NewEngine(&stubSource{predictor: stub, scaler: scaler})

	prices, err := engine.Forecast(context.Background(), "bitcoin", candles, 1)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if len(prices) != 1 {
		t.Fatalf("got %d prices, want 1", len(prices))
	}

	matrix, err := BuildFeatures(candles)
	if err != nil {
		t.Fatalf("BuildFeatures: %v", err)
	}
	scaled, err := scaler.Transform(matrix)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	seed := scaled[len(scaled)-WindowSize:]

	// The single prediction must run on the unmodified seed window.
	if len(stub.windows) != 1 {
		t.Fatalf("predictor called %d times, want 1", len(stub.windows))
	}
	for i := range seed {
		for j := range seed[i] {
			if stub.windows[0][i][j] != seed[i][j] {
				t.Fatalf("seed window differs at row %d column %d", i, j)
			}
		}
	}

	// The returned price is the direct unscale of the raw model output.
	raw := seed[WindowSize-1][0] + 0.03
	want := scaler.InverseColumn(0, raw)
	if math.Abs(prices[0]-want) > 1e-12 {
		t.Fatalf("price = %v, want %v", prices[0], want)
	}
}

func TestEngineDeterminism(t *testing.T) {
	candles := rampCandles(60)
	scaler := fitTestScaler(t, candles)
	engine := NewEngine(&stubSource{predictor: &stubPredictor{increment: 0.01}, scaler: scaler})

	a, err := engine.Forecast(context.Background(), "bitcoin", candles, 5)
	if err != nil {
		t.Fatalf("first Forecast: %v", err)
	}
	b, err := engine.Forecast(context.Background(), "bitcoin", candles, 5)
	if err != nil {
		t.Fatalf("second Forecast: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("forecast not deterministic at step %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestEngineContextCancelled(t *testing.T) {
	candles := rampCandles(60)
	scaler := fitTestScaler(t, candles)
	engine := NewEngine(&stubSource{predictor: &stubPredictor{increment: 0.01}, scaler: scaler})

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	_, err := engine.Forecast(ctx, "bitcoin", candles, 5)
	if !models.IsKind(err, models.ErrForecastTimeout) {
		t.Fatalf("got %v, want forecast timeout", err)
	}
}

func TestEngineInvalidHorizon(t *testing.T) {
	engine := NewEngine(&stubSource{predictor: &stubPredictor{}, scaler: &Scaler{}})
	if _, err := engine.Forecast(context.Background(), "bitcoin", nil, 0); err == nil {
		t.Fatalf("horizon 0 should fail")
	}
}
