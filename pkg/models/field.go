package models

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ShapeOf returns the resolution of m
func ShapeOf(m mat.Matrix) Resolution {
	r, c := m.Dims()
	return Resolution{Rows: r, Cols: c}
}

// NewField allocates a zeroed field, rejecting empty shapes instead of
// letting gonum panic
func NewField(res Resolution) (*mat.Dense, error) {
	if res.Empty() {
		return nil, fmt.Errorf("%w: empty field %s", ErrShapeMismatch, res)
	}
	return mat.NewDense(res.Rows, res.Cols, nil), nil
}

// FieldFromRows builds a field from a rectangular row-major table
func FieldFromRows(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: empty table", ErrShapeMismatch)
	}
	cols := len(rows[0])
	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d values, expected %d", ErrShapeMismatch, i, len(row), cols)
		}
		data = append(data, row...)
	}
	return mat.NewDense(len(rows), cols, data), nil
}

// Rows copies a field into a row-major table
func Rows(m mat.Matrix) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := 0; i < r; i++ {
		out[i] = make([]float64, c)
		for j := 0; j < c; j++ {
			out[i][j] = m.At(i, j)
		}
	}
	return out
}

// Filled returns a field with every cell set to v
func Filled(res Resolution, v float64) (*mat.Dense, error) {
	f, err := NewField(res)
	if err != nil {
		return nil, err
	}
	raw := f.RawMatrix()
	for i := range raw.Data {
		raw.Data[i] = v
	}
	return f, nil
}

// CheckFinite returns ErrNonFinite for the first NaN or infinite cell
func CheckFinite(m mat.Matrix) error {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := m.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w at [%d,%d]: %v", ErrNonFinite, i, j, v)
			}
		}
	}
	return nil
}
