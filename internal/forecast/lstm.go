package forecast

import (
	"fmt"
	"math"
)

// Model is a single-layer LSTM followed by a one-unit dense head. Gate
// weights follow the usual input/forget/cell/output convention: each gate has
// an input kernel (Hidden x Inputs), a recurrent kernel (Hidden x Hidden) and
// a bias vector.
type Model struct {
	Asset  string `json:"asset"`
	Window int    `json:"window"`
	Inputs int    `json:"inputs"`
	Hidden int    `json:"hidden"`

	Wi [][]float64 `json:"wi"`
	Wf [][]float64 `json:"wf"`
	Wg [][]float64 `json:"wg"`
	Wo [][]float64 `json:"wo"`

	Ui [][]float64 `json:"ui"`
	Uf [][]float64 `json:"uf"`
	Ug [][]float64 `json:"ug"`
	Uo [][]float64 `json:"uo"`

	Bi []float64 `json:"bi"`
	Bf []float64 `json:"bf"`
	Bg []float64 `json:"bg"`
	Bo []float64 `json:"bo"`

	DenseW []float64 `json:"dense_w"`
	DenseB float64   `json:"dense_b"`
}

// Validate checks the model's declared shape against the schema and its
// weight matrices against the declared shape.
func (m *Model) Validate(schema Schema) error {
	if m.Window != WindowSize {
		return fmt.Errorf("model window %d, want %d", m.Window, WindowSize)
	}
	if m.Inputs != schema.Len() {
		return fmt.Errorf("model inputs %d, want %d", m.Inputs, schema.Len())
	}
	if m.Hidden <= 0 {
		return fmt.Errorf("model hidden size %d", m.Hidden)
	}
	for name, w := range map[string][][]float64{"wi": m.Wi, "wf": m.Wf, "wg": m.Wg, "wo": m.Wo} {
		if err := checkMatrix(name, w, m.Hidden, m.Inputs); err != nil {
			return err
		}
	}
	for name, u := range map[string][][]float64{"ui": m.Ui, "uf": m.Uf, "ug": m.Ug, "uo": m.Uo} {
		if err := checkMatrix(name, u, m.Hidden, m.Hidden); err != nil {
			return err
		}
	}
	for name, b := range map[string][]float64{"bi": m.Bi, "bf": m.Bf, "bg": m.Bg, "bo": m.Bo, "dense_w": m.DenseW} {
		if len(b) != m.Hidden {
			return fmt.Errorf("%s has %d rows, want %d", name, len(b), m.Hidden)
		}
	}
	return nil
}

func checkMatrix(name string, w [][]float64, rows, cols int) error {
	if len(w) != rows {
		return fmt.Errorf("%s has %d rows, want %d", name, len(w), rows)
	}
	for i, r := range w {
		if len(r) != cols {
			return fmt.Errorf("%s row %d has %d columns, want %d", name, i, len(r), cols)
		}
	}
	return nil
}

// Predict runs the window through the recurrence and returns the dense head's
// scalar output. The window must be Window rows of Inputs columns.
func (m *Model) Predict(window [][]float64) (float64, error) {
	if len(window) != m.Window {
		return 0, fmt.Errorf("predict: window has %d rows, want %d", len(window), m.Window)
	}

	h := make([]float64, m.Hidden)
	c := make([]float64, m.Hidden)
	ig := make([]float64, m.Hidden)
	fg := make([]float64, m.Hidden)
	gg := make([]float64, m.Hidden)
	og := make([]float64, m.Hidden)

	for t, x := range window {
		if len(x) != m.Inputs {
			return 0, fmt.Errorf("predict: row %d has %d columns, want %d", t, len(x), m.Inputs)
		}
		for j := 0; j < m.Hidden; j++ {
			ig[j] = sigmoid(dot(m.Wi[j], x) + dot(m.Ui[j], h) + m.Bi[j])
			fg[j] = sigmoid(dot(m.Wf[j], x) + dot(m.Uf[j], h) + m.Bf[j])
			gg[j] = math.Tanh(dot(m.Wg[j], x) + dot(m.Ug[j], h) + m.Bg[j])
			og[j] = sigmoid(dot(m.Wo[j], x) + dot(m.Uo[j], h) + m.Bo[j])
		}
		for j := 0; j < m.Hidden; j++ {
			c[j] = fg[j]*c[j] + ig[j]*gg[j]
			h[j] = og[j] * math.Tanh(c[j])
		}
	}

	y := dot(m.DenseW, h) + m.DenseB
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, fmt.Errorf("predict: non-finite output")
	}
	return y, nil
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
