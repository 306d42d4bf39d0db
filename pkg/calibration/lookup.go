package calibration

import (
	"fmt"

	"github.com/tosih/slm-mapper/pkg/models"
	"github.com/tosih/slm-mapper/pkg/resample"
	"gonum.org/v1/gonum/mat"
)

// Pass is the outcome of one lookup over a field
type Pass struct {
	// Input is the resolution of the field handed to Run
	Input models.Resolution
	// Native holds the mapped levels at the map's own resolution
	Native *mat.Dense
	// Output is Native resampled to the device output resolution
	Output *mat.Dense
}

// Reconciled reports whether the input had to be resampled to the map's
// resolution before lookup
func (p *Pass) Reconciled() bool {
	return p.Input != models.ShapeOf(p.Native)
}

// Run maps a graylevel field through cm. The field is first resampled to
// the map's resolution when either dimension differs, every cell is looked
// up in its own curve, and the result is resampled to the output
// resolution. The same order is used for both resamples.
func Run(field mat.Matrix, cm Map, order resample.Order) (*Pass, error) {
	if cm == nil {
		return nil, fmt.Errorf("%w: no calibration map", models.ErrConfiguration)
	}
	native, err := lookupNative(field, cm, order)
	if err != nil {
		return nil, err
	}
	out, err := resample.Resample(native, models.OutputResolution, order)
	if err != nil {
		return nil, err
	}
	return &Pass{Input: models.ShapeOf(field), Native: native, Output: out}, nil
}

// Lookup is Run returning only the output-resolution field
func Lookup(field mat.Matrix, cm Map, order resample.Order) (*mat.Dense, error) {
	p, err := Run(field, cm, order)
	if err != nil {
		return nil, err
	}
	return p.Output, nil
}

func lookupNative(field mat.Matrix, cm Map, order resample.Order) (*mat.Dense, error) {
	res := cm.Resolution()
	in := field
	if shape := models.ShapeOf(field); shape != res {
		resized, err := resample.Resample(field, res, order)
		if err != nil {
			return nil, fmt.Errorf("reconcile %s to map resolution %s: %w", shape, res, err)
		}
		in = resized
	}

	out, err := models.NewField(res)
	if err != nil {
		return nil, err
	}
	for i := 0; i < res.Rows; i++ {
		for j := 0; j < res.Cols; j++ {
			v, err := cm.MappingAt(i, j).Lookup(in.At(i, j))
			if err != nil {
				return nil, fmt.Errorf("cell [%d,%d]: %w", i, j, err)
			}
			out.Set(i, j, float64(v))
		}
	}
	return out, nil
}
