package transform

import (
	"fmt"

	"github.com/tosih/slm-mapper/pkg/models"
	"gonum.org/v1/gonum/mat"
)

// RangeWarning reports graylevels outside [0, 255]. Lookups still succeed
// (they fall back to the nearest key) but the result may be meaningless.
type RangeWarning struct {
	Count int     `json:"count"`
	Total int     `json:"total"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

func (w RangeWarning) String() string {
	return fmt.Sprintf("%d of %d graylevels outside [0, %d] (range %.2f to %.2f)",
		w.Count, w.Total, models.MaxGraylevel, w.Min, w.Max)
}

// CheckRange returns a warning when any cell lies outside [0, 255], or nil
// when every cell is in range
func CheckRange(gray mat.Matrix) (*RangeWarning, error) {
	if err := checkShape(gray); err != nil {
		return nil, err
	}
	r, c := gray.Dims()
	w := RangeWarning{Total: r * c, Min: gray.At(0, 0), Max: gray.At(0, 0)}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := gray.At(i, j)
			if v < 0 || v > models.MaxGraylevel {
				w.Count++
			}
			if v < w.Min {
				w.Min = v
			}
			if v > w.Max {
				w.Max = v
			}
		}
	}
	if w.Count == 0 {
		return nil, nil
	}
	return &w, nil
}
