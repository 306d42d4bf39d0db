// Package transform converts between director angles and camera graylevels.
package transform

import (
	"fmt"
	"math"

	"github.com/tosih/slm-mapper/pkg/models"
	"gonum.org/v1/gonum/mat"
)

// turn returns the angle that maps onto graylevel 255 for mode
func turn(mode models.TransformMode) (float64, error) {
	switch mode {
	case models.HalfTurn:
		return math.Pi, nil
	case models.FullTurn:
		return 2 * math.Pi, nil
	default:
		return 0, fmt.Errorf("%w: unsupported transform mode %v", models.ErrConfiguration, mode)
	}
}

// checkShape rejects empty fields before gonum panics on them
func checkShape(m mat.Matrix) error {
	if shape := models.ShapeOf(m); shape.Empty() {
		return fmt.Errorf("%w: empty field %s", models.ErrShapeMismatch, shape)
	}
	return nil
}

// ToGraylevel maps an angle field onto graylevels. Values are neither
// clamped nor rounded; the offset term is fixed at zero.
func ToGraylevel(angles mat.Matrix, mode models.TransformMode) (*mat.Dense, error) {
	t, err := turn(mode)
	if err != nil {
		return nil, err
	}
	if err := checkShape(angles); err != nil {
		return nil, err
	}
	var out mat.Dense
	// multiply before dividing: π/2 must land on exactly 127.5
	out.Apply(func(_, _ int, v float64) float64 {
		return v * models.MaxGraylevel / t
	}, angles)
	return &out, nil
}

// ToAngle is the exact inverse of ToGraylevel for the same mode
func ToAngle(gray mat.Matrix, mode models.TransformMode) (*mat.Dense, error) {
	t, err := turn(mode)
	if err != nil {
		return nil, err
	}
	if err := checkShape(gray); err != nil {
		return nil, err
	}
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 {
		return v * t / models.MaxGraylevel
	}, gray)
	return &out, nil
}

// SensorView is the field as the polarization camera reports it. In
// full-turn mode the camera cannot tell θ from θ+π, so graylevels are
// doubled and folded back into range.
func SensorView(gray mat.Matrix, mode models.TransformMode) (*mat.Dense, error) {
	if _, err := turn(mode); err != nil {
		return nil, err
	}
	if err := checkShape(gray); err != nil {
		return nil, err
	}
	var out mat.Dense
	if mode == models.HalfTurn {
		out.CloneFrom(gray)
		return &out, nil
	}
	out.Apply(func(_, _ int, v float64) float64 {
		v *= 2
		if v > models.MaxGraylevel {
			v -= models.MaxGraylevel
		}
		return v
	}, gray)
	return &out, nil
}
