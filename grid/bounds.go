package grid

import (
	"gonum.org/v1/gonum/floats"
)

// FlatNormalized is the normalized value of every cell when all positive
// cells share one value and the range is zero.
const FlatNormalized = 1.0

type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (b Bounds) Range() float64 { return b.Max - b.Min }

func (b Bounds) Flat() bool { return b.Max == b.Min }

// Normalize maps v linearly into [0,1] for v inside the bounds.
func (b Bounds) Normalize(v float64) float64 {
	if b.Flat() {
		return FlatNormalized
	}
	return (v - b.Min) / b.Range()
}

// included reports whether a cell takes part in normalization and rendering.
func included(v float64) bool { return v > 0 }

func positiveValues(m Matrix) []float64 {
	values := make([]float64, 0, m.Rows()*m.Cols())
	for iRow := 0; iRow < m.Rows(); iRow++ {
		for iCol := 0; iCol < m.Cols(); iCol++ {
			if v := m.At(iRow, iCol); included(v) {
				values = append(values, v)
			}
		}
	}
	return values
}

// ComputeBounds returns the global min and max over the positive cells of m.
func ComputeBounds(m Matrix) (Bounds, error) {
	values := positiveValues(m)
	if len(values) == 0 {
		return Bounds{}, &EmptyInputError{Rows: m.Rows(), Cols: m.Cols()}
	}
	return Bounds{Min: floats.Min(values), Max: floats.Max(values)}, nil
}
