package forecast

import (
	"math"
	"testing"
)

func TestScalerRoundTrip(t *testing.T) {
	schema := DefaultSchema()
	matrix := [][]float64{
		{10, 1, 2, 3, 4, 5, 6, 7},
		{20, 2, 4, 6, 8, 10, 12, 14},
		{15, 3, 6, 9, 12, 15, 18, 21},
	}
	s, err := FitScaler(schema, matrix)
	if err != nil {
		t.Fatalf("FitScaler: %v", err)
	}

	scaled, err := s.Transform(matrix)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	for i, row := range scaled {
		for j, v := range row {
			if v < 0 || v > 1 {
				t.Fatalf("scaled[%d][%d] = %v outside [0,1]", i, j, v)
			}
			back := s.InverseColumn(j, v)
			if math.Abs(back-matrix[i][j]) > 1e-9 {
				t.Fatalf("inverse of scaled[%d][%d]: got %v, want %v", i, j, back, matrix[i][j])
			}
		}
	}
}

func TestScalerColumnIndependence(t *testing.T) {
	schema := DefaultSchema()
	matrix := [][]float64{
		{0, 100, 0, 0, 0, 0, 0, 0},
		{50, 300, 0, 0, 0, 0, 0, 0},
	}
	s, err := FitScaler(schema, matrix)
	if err != nil {
		t.Fatalf("FitScaler: %v", err)
	}

	// Inverting column 0 must use only column 0 bounds.
	if got := s.InverseColumn(0, 0.5); got != 25 {
		t.Fatalf("InverseColumn(0, 0.5) = %v, want 25", got)
	}
	if got := s.InverseColumn(1, 0.5); got != 200 {
		t.Fatalf("InverseColumn(1, 0.5) = %v, want 200", got)
	}
}

func TestScalerDegenerateRange(t *testing.T) {
	schema := DefaultSchema()
	matrix := [][]float64{
		{7, 7, 7, 7, 7, 7, 7, 7},
		{7, 7, 7, 7, 7, 7, 7, 7},
	}
	s, err := FitScaler(schema, matrix)
	if err != nil {
		t.Fatalf("FitScaler: %v", err)
	}
	scaled, err := s.Transform(matrix)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	for _, row := range scaled {
		for j, v := range row {
			if v != 0 {
				t.Fatalf("constant column %d scaled to %v, want 0", j, v)
			}
		}
	}
	if got := s.InverseColumn(0, 0); got != 7 {
		t.Fatalf("inverse of constant column: got %v, want 7", got)
	}
}

func TestScalerValidate(t *testing.T) {
	schema := DefaultSchema()
	s := &Scaler{Columns: []string{"close", "wrong"}, Min: []float64{0, 0}, Max: []float64{1, 1}}
	if err := s.Validate(schema); err == nil {
		t.Fatalf("expected validation error for mismatched columns")
	}
}
