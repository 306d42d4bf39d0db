package compare

import (
	"fmt"
	"math"
	"strings"

	"github.com/pterm/pterm"
	"github.com/tosih/slm-mapper/pkg/models"
	"github.com/tosih/slm-mapper/pkg/resample"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes a difference field
type Stats struct {
	Cells     int     `json:"cells"`
	Mean      float64 `json:"mean"`
	StdDev    float64 `json:"stdDev"`
	MeanAbs   float64 `json:"meanAbs"`
	MaxAbs    float64 `json:"maxAbs"`
	RMS       float64 `json:"rms"`
	Tolerance float64 `json:"tolerance"`
	// Within is the fraction of cells with |diff| <= Tolerance
	Within float64 `json:"within"`
}

// Difference returns a - b. Both fields must already share a resolution.
func Difference(a, b mat.Matrix) (*mat.Dense, error) {
	if sa, sb := models.ShapeOf(a), models.ShapeOf(b); sa != sb {
		return nil, fmt.Errorf("%w: cannot compare %s with %s", models.ErrShapeMismatch, sa, sb)
	}
	var diff mat.Dense
	diff.Sub(a, b)
	return &diff, nil
}

// Summarize computes statistics over every cell of diff
func Summarize(diff mat.Matrix, tolerance float64) Stats {
	data := mat.DenseCopyOf(diff).RawMatrix().Data

	abs := make([]float64, len(data))
	within := 0
	for i, v := range data {
		abs[i] = math.Abs(v)
		if abs[i] <= tolerance {
			within++
		}
	}

	s := Stats{
		Cells:     len(data),
		Tolerance: tolerance,
		MeanAbs:   stat.Mean(abs, nil),
		MaxAbs:    floats.Max(abs),
		RMS:       floats.Norm(data, 2) / math.Sqrt(float64(len(data))),
		Within:    float64(within) / float64(len(data)),
	}
	if len(data) > 1 {
		s.Mean, s.StdDev = stat.MeanStdDev(data, nil)
	} else {
		s.Mean = data[0]
	}
	return s
}

// Display prints the statistics and a coarse difference map
func Display(title string, diff mat.Matrix, s Stats, unit string) {
	pterm.DefaultSection.Println(title)

	pterm.Info.Printf("Cells within ±%.3g %s: %.1f%% of %d\n", s.Tolerance, unit, s.Within*100, s.Cells)
	pterm.Info.Printf("Mean error: %.4f %s (std %.4f)\n", s.Mean, unit, s.StdDev)
	pterm.Info.Printf("Mean |error|: %.4f %s, RMS %.4f, max %.4f\n", s.MeanAbs, unit, s.RMS, s.MaxAbs)

	grid, err := coarse(diff, 16, 32)
	if err != nil {
		pterm.Warning.Printf("Cannot draw difference map: %v\n", err)
		return
	}
	pterm.Println("\nDifference Map (input - simulation):")
	visualizeDifferences(grid, s.MaxAbs)
}

// coarse shrinks a field to at most rows x cols with order 0
func coarse(m mat.Matrix, rows, cols int) (*mat.Dense, error) {
	r, c := m.Dims()
	return resample.Resample(m, models.Resolution{Rows: min(r, rows), Cols: min(c, cols)}, resample.Nearest)
}

func visualizeDifferences(diff *mat.Dense, maxAbs float64) {
	var result strings.Builder
	rows, cols := diff.Dims()

	result.WriteString("   col → |")
	for j := 0; j < cols; j++ {
		result.WriteString(fmt.Sprintf("%-3d", j))
	}
	result.WriteString("\n")
	result.WriteString("   row   |" + strings.Repeat("-", cols*3) + "\n")

	for i := 0; i < rows; i++ {
		result.WriteString(fmt.Sprintf("   %3d ↓ |", i))
		for j := 0; j < cols; j++ {
			result.WriteString(getDiffSymbol(diff.At(i, j), maxAbs))
		}
		result.WriteString("\n")
	}

	result.WriteString("\nLegend: ")
	result.WriteString(pterm.FgBlue.Sprint("▼▼") + " Large Negative  ")
	result.WriteString(pterm.FgCyan.Sprint("▼ ") + " Small Negative  ")
	result.WriteString(pterm.FgGray.Sprint("··") + " Exact  ")
	result.WriteString(pterm.FgYellow.Sprint("▲ ") + " Small Positive  ")
	result.WriteString(pterm.FgRed.Sprint("▲▲") + " Large Positive")

	pterm.DefaultBox.Println(result.String())
}

func getDiffSymbol(val, maxAbs float64) string {
	if val == 0 || maxAbs == 0 {
		return pterm.FgGray.Sprint("·· ")
	}

	normalized := val / maxAbs

	if normalized < -0.5 {
		return pterm.FgBlue.Sprint("▼▼ ")
	} else if normalized < -0.1 {
		return pterm.FgCyan.Sprint("▼  ")
	} else if normalized > 0.5 {
		return pterm.FgRed.Sprint("▲▲ ")
	} else if normalized > 0.1 {
		return pterm.FgYellow.Sprint("▲  ")
	}

	return pterm.FgGray.Sprint("·  ")
}
