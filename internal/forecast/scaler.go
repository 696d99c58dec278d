package forecast

import (
	"fmt"
	"math"
)

// Scaler is a per-column min-max normalizer. Columns with a degenerate range
// use a divisor of 1 so constant features map to zero instead of NaN.
type Scaler struct {
	Columns []string  `json:"columns"`
	Min     []float64 `json:"min"`
	Max     []float64 `json:"max"`
}

// FitScaler computes per-column minima and maxima over the matrix.
func FitScaler(schema Schema, matrix [][]float64) (*Scaler, error) {
	if len(matrix) == 0 {
		return nil, fmt.Errorf("fit scaler: empty matrix")
	}
	n := schema.Len()
	s := &Scaler{
		Columns: schema.Columns(),
		Min:     make([]float64, n),
		Max:     make([]float64, n),
	}
	for j := 0; j < n; j++ {
		s.Min[j] = math.Inf(1)
		s.Max[j] = math.Inf(-1)
	}
	for i, row := range matrix {
		if len(row) != n {
			return nil, fmt.Errorf("fit scaler: row %d has %d columns, want %d", i, len(row), n)
		}
		for j, v := range row {
			if v < s.Min[j] {
				s.Min[j] = v
			}
			if v > s.Max[j] {
				s.Max[j] = v
			}
		}
	}
	return s, nil
}

// NumFeatures returns the number of columns the scaler was fit on.
func (s *Scaler) NumFeatures() int {
	return len(s.Columns)
}

// Validate checks the scaler against the expected schema.
func (s *Scaler) Validate(schema Schema) error {
	if !schema.Matches(s.Columns) {
		return fmt.Errorf("scaler columns %v do not match expected feature order", s.Columns)
	}
	if len(s.Min) != schema.Len() || len(s.Max) != schema.Len() {
		return fmt.Errorf("scaler has %d/%d bounds, want %d", len(s.Min), len(s.Max), schema.Len())
	}
	return nil
}

func (s *Scaler) scaleRange(col int) float64 {
	r := s.Max[col] - s.Min[col]
	if r == 0 {
		return 1
	}
	return r
}

// Transform maps every value into [0,1] by its column bounds. The input is
// not modified.
func (s *Scaler) Transform(matrix [][]float64) ([][]float64, error) {
	out := make([][]float64, len(matrix))
	for i, row := range matrix {
		if len(row) != s.NumFeatures() {
			return nil, fmt.Errorf("transform: row %d has %d columns, want %d", i, len(row), s.NumFeatures())
		}
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = (v - s.Min[j]) / s.scaleRange(j)
		}
		out[i] = scaled
	}
	return out, nil
}

// InverseColumn maps a single normalized value back to the original scale of
// one column. Min-max scaling is column-independent, so no dummy row is
// needed to invert one value.
func (s *Scaler) InverseColumn(col int, v float64) float64 {
	return v*s.scaleRange(col) + s.Min[col]
}
