// Package resample resizes 2-D scalar fields without renormalizing their
// value range.
//
// Resizing is done by OpenCV on CV_64F matrices, so real values and levels
// above 255 pass through unquantized. Sample positions follow the
// pixel-centre convention: destination cell d of n samples the source at
// (d+0.5)*m/n - 0.5 for a source of m cells, clamped to the edge. No
// anti-aliasing prefilter is applied, so order 0 never introduces values
// that are not already in the source. Callers resizing fields with hard
// binary edges must pick order 0.
package resample

import (
	"fmt"
	"image"
	"math"
	"runtime"
	"unsafe"

	"github.com/tosih/slm-mapper/pkg/models"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Order selects the interpolation between source samples
type Order int

const (
	Nearest Order = 0
	Linear  Order = 1
)

func (o Order) String() string {
	switch o {
	case Nearest:
		return "nearest"
	case Linear:
		return "linear"
	default:
		return fmt.Sprintf("order(%d)", int(o))
	}
}

// Valid reports whether o is a supported order
func (o Order) Valid() bool {
	return o == Nearest || o == Linear
}

// ParseOrder converts the numeric CLI spelling of an order
func ParseOrder(n int) (Order, error) {
	o := Order(n)
	if !o.Valid() {
		return 0, fmt.Errorf("%w: unsupported interpolation order %d", models.ErrConfiguration, n)
	}
	return o, nil
}

// interpolation maps an order onto the OpenCV flag. Nearest uses
// INTER_NEAREST_EXACT, which samples pixel centres like the linear mode
// does; plain INTER_NEAREST is shifted by half a source cell.
func interpolation(order Order) gocv.InterpolationFlags {
	if order == Nearest {
		return interNearestExact
	}
	return gocv.InterpolationLinear
}

// cv::INTER_NEAREST_EXACT, not exported by gocv
const interNearestExact gocv.InterpolationFlags = 6

// Resample resizes src to target with the given order. A target equal to
// the source shape yields an unmodified copy.
func Resample(src mat.Matrix, target models.Resolution, order Order) (*mat.Dense, error) {
	if !order.Valid() {
		return nil, fmt.Errorf("%w: unsupported interpolation order %d", models.ErrConfiguration, int(order))
	}
	shape := models.ShapeOf(src)
	if shape.Empty() {
		return nil, fmt.Errorf("%w: empty source field %s", models.ErrShapeMismatch, shape)
	}
	if target.Empty() {
		return nil, fmt.Errorf("%w: cannot resample %s to %s", models.ErrShapeMismatch, shape, target)
	}

	// a fresh copy is contiguous, which the Mat below relies on
	in := mat.DenseCopyOf(src)
	if shape == target {
		return in, nil
	}
	data := in.RawMatrix().Data

	srcMat, err := gocv.NewMatFromBytes(shape.Rows, shape.Cols, gocv.MatTypeCV64F, float64Bytes(data))
	if err != nil {
		return nil, fmt.Errorf("resample %s: %w", shape, err)
	}
	defer srcMat.Close()

	dstMat := gocv.NewMat()
	defer dstMat.Close()
	gocv.Resize(srcMat, &dstMat, image.Point{X: target.Cols, Y: target.Rows}, 0, 0, interpolation(order))
	runtime.KeepAlive(data)

	if dstMat.Rows() != target.Rows || dstMat.Cols() != target.Cols {
		return nil, fmt.Errorf("%w: resize of %s produced %dx%d", models.ErrShapeMismatch, shape, dstMat.Rows(), dstMat.Cols())
	}
	resized, err := dstMat.DataPtrFloat64()
	if err != nil {
		return nil, fmt.Errorf("resample %s to %s: %w", shape, target, err)
	}

	out := make([]float64, target.Cells())
	copy(out, resized)
	if order == Linear {
		clampTo(out, floats.Min(data), floats.Max(data))
	}
	return mat.NewDense(target.Rows, target.Cols, out), nil
}

// clampTo pins values to [lo, hi]. OpenCV blends CV_64F samples with
// single-precision weights, which can push a constant region a few ulps
// off its value; an interpolation never leaves the source range.
func clampTo(values []float64, lo, hi float64) {
	for i, v := range values {
		values[i] = math.Max(lo, math.Min(v, hi))
	}
}

// float64Bytes views a float64 slice as native-endian bytes
func float64Bytes(data []float64) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(data))), len(data)*8)
}
