package reader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sbinet/npyio"
	"github.com/tosih/slm-mapper/pkg/models"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ReadField imports an input field, choosing the decoder by extension:
// .csv/.txt for comma-delimited tables, .npy for NumPy arrays
func ReadField(filename string) (*mat.Dense, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv", ".txt":
		return ReadCSVField(f)
	case ".npy":
		return ReadNPYField(f)
	default:
		return nil, fmt.Errorf("%w: unsupported input format %q (want .csv, .txt or .npy)", models.ErrConfiguration, ext)
	}
}

// ReadCSVField parses a comma-delimited table of reals. Lines starting
// with '#' are skipped.
func ReadCSVField(r io.Reader) (*mat.Dense, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true

	var rows [][]float64
	for line := 1; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if errors.Is(err, csv.ErrFieldCount) {
				return nil, fmt.Errorf("%w: %v", models.ErrShapeMismatch, err)
			}
			return nil, err
		}

		row := make([]float64, len(record))
		for j, cell := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("record %d, column %d: %w", line, j+1, err)
			}
			row[j] = v
		}
		rows = append(rows, row)
	}

	return models.FieldFromRows(rows)
}

// ReadNPYField decodes a two-dimensional NumPy array of any common real or
// integer dtype
func ReadNPYField(r io.Reader) (*mat.Dense, error) {
	nr, err := npyio.NewReader(r)
	if err != nil {
		return nil, err
	}

	shape := nr.Header.Descr.Shape
	if len(shape) != 2 || shape[0] == 0 || shape[1] == 0 {
		return nil, fmt.Errorf("%w: expected a 2-D array, got shape %v", models.ErrShapeMismatch, shape)
	}

	data, err := readNPYData(nr)
	if err != nil {
		return nil, err
	}

	rows, cols := shape[0], shape[1]
	if nr.Header.Descr.Fortran {
		var m mat.Dense
		m.CloneFrom(mat.NewDense(cols, rows, data).T())
		return &m, nil
	}
	return mat.NewDense(rows, cols, data), nil
}

func readNPYData(nr *npyio.Reader) ([]float64, error) {
	dtype := strings.TrimLeft(nr.Header.Descr.Type, "<>|=")

	switch dtype {
	case "f8":
		var v []float64
		err := nr.Read(&v)
		return v, err
	case "f4":
		var v []float32
		if err := nr.Read(&v); err != nil {
			return nil, err
		}
		return widen(v), nil
	case "i8":
		var v []int64
		if err := nr.Read(&v); err != nil {
			return nil, err
		}
		return widen(v), nil
	case "i4":
		var v []int32
		if err := nr.Read(&v); err != nil {
			return nil, err
		}
		return widen(v), nil
	case "i2":
		var v []int16
		if err := nr.Read(&v); err != nil {
			return nil, err
		}
		return widen(v), nil
	case "u2":
		var v []uint16
		if err := nr.Read(&v); err != nil {
			return nil, err
		}
		return widen(v), nil
	case "u1":
		var v []uint8
		if err := nr.Read(&v); err != nil {
			return nil, err
		}
		return widen(v), nil
	default:
		return nil, fmt.Errorf("unsupported npy dtype %q", nr.Header.Descr.Type)
	}
}

func widen[T float32 | int64 | int32 | int16 | uint16 | uint8](in []T) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

// FindMinMax finds the minimum and maximum values in a field
func FindMinMax(m mat.Matrix) (float64, float64) {
	if d, ok := m.(*mat.Dense); ok && d.RawMatrix().Stride == d.RawMatrix().Cols {
		data := d.RawMatrix().Data
		return floats.Min(data), floats.Max(data)
	}
	return mat.Min(m), mat.Max(m)
}
