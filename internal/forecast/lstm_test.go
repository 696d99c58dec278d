package forecast

import (
	"math"
	"testing"
)

func zeroModel(hidden int) *Model {
	mk := func(rows, cols int) [][]float64 {
		m := make([][]float64, rows)
		for i := range m {
			m[i] = make([]float64, cols)
		}
		return m
	}
	inputs := DefaultSchema().Len()
	return &Model{
		Asset:  "test",
		Window: WindowSize,
		Inputs: inputs,
		Hidden: hidden,
		Wi:     mk(hidden, inputs), Wf: mk(hidden, inputs), Wg: mk(hidden, inputs), Wo: mk(hidden, inputs),
		Ui: mk(hidden, hidden), Uf: mk(hidden, hidden), Ug: mk(hidden, hidden), Uo: mk(hidden, hidden),
		Bi: make([]float64, hidden), Bf: make([]float64, hidden),
		Bg: make([]float64, hidden), Bo: make([]float64, hidden),
		DenseW: make([]float64, hidden),
	}
}

func TestModelValidate(t *testing.T) {
	m := zeroModel(4)
	if err := m.Validate(DefaultSchema()); err != nil {
		t.Fatalf("valid model rejected: %v", err)
	}

	m.Window = 10
	if err := m.Validate(DefaultSchema()); err == nil {
		t.Fatalf("wrong window accepted")
	}
	m.Window = WindowSize

	m.Inputs = 3
	if err := m.Validate(DefaultSchema()); err == nil {
		t.Fatalf("wrong input count accepted")
	}
	m.Inputs = DefaultSchema().Len()

	m.Bi = m.Bi[:2]
	if err := m.Validate(DefaultSchema()); err == nil {
		t.Fatalf("truncated bias accepted")
	}
}

func TestModelPredictBias(t *testing.T) {
	m := zeroModel(4)
	m.DenseB = 0.42

	window := make([][]float64, WindowSize)
	for i := range window {
		window[i] = make([]float64, m.Inputs)
	}
	// All-zero weights make the hidden state vanish, leaving only the bias.
	got, err := m.Predict(window)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if math.Abs(got-0.42) > 1e-12 {
		t.Fatalf("got %v, want 0.42", got)
	}
}

func TestModelPredictGateFlow(t *testing.T) {
	m := zeroModel(1)
	// Strongly open the input and output gates, feed the close column into
	// the cell candidate, and read the single hidden unit out.
	m.Bi[0] = 10
	m.Bo[0] = 10
	m.Wg[0][0] = 1
	m.DenseW[0] = 1

	window := make([][]float64, WindowSize)
	for i := range window {
		window[i] = make([]float64, m.Inputs)
	}
	window[WindowSize-1][0] = 0.5

	got, err := m.Predict(window)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got <= 0 || got >= 1 {
		t.Fatalf("got %v, want output in (0,1) driven by the last input", got)
	}

	window[WindowSize-1][0] = 0
	flat, err := m.Predict(window)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got <= flat {
		t.Fatalf("larger input should raise the output: %v vs %v", got, flat)
	}
}

func TestModelPredictShapeChecks(t *testing.T) {
	m := zeroModel(2)
	if _, err := m.Predict(make([][]float64, 5)); err == nil {
		t.Fatalf("short window accepted")
	}

	window := make([][]float64, WindowSize)
	for i := range window {
		window[i] = make([]float64, m.Inputs)
	}
	window[3] = window[3][:2]
	if _, err := m.Predict(window); err == nil {
		t.Fatalf("short row accepted")
	}
}
