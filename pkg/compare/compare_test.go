package compare

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tosih/slm-mapper/pkg/models"
	"gonum.org/v1/gonum/mat"
)

func TestDifference(t *testing.T) {
	a := mat.NewDense(1, 3, []float64{1, 2, 3})
	b := mat.NewDense(1, 3, []float64{1, 0, 5})

	d, err := Difference(a, b)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 2, -2}, d.RawRowView(0))

	_, err = Difference(a, mat.NewDense(3, 1, nil))
	assert.ErrorIs(t, err, models.ErrShapeMismatch)
}

func TestSummarize(t *testing.T) {
	diff := mat.NewDense(2, 2, []float64{0, 2, -2, 0.05})
	s := Summarize(diff, 0.1)

	assert.Equal(t, 4, s.Cells)
	assert.InDelta(t, 0.0125, s.Mean, 1e-12)
	assert.InDelta(t, (0+2+2+0.05)/4.0, s.MeanAbs, 1e-12)
	assert.Equal(t, 2.0, s.MaxAbs)
	assert.InDelta(t, math.Sqrt((4+4+0.0025)/4), s.RMS, 1e-12)
	assert.InDelta(t, 0.5, s.Within, 1e-12)
	assert.Greater(t, s.StdDev, 0.0)
}

func TestSummarizeSingleCell(t *testing.T) {
	s := Summarize(mat.NewDense(1, 1, []float64{-3}), 1)
	assert.Equal(t, -3.0, s.Mean)
	assert.Equal(t, 0.0, s.StdDev)
	assert.Equal(t, 0.0, s.Within)
}

func TestGetDiffSymbol(t *testing.T) {
	assert.Contains(t, getDiffSymbol(0, 1), "··")
	assert.Contains(t, getDiffSymbol(1, 0), "··")
	assert.Contains(t, getDiffSymbol(-0.9, 1), "▼▼")
	assert.Contains(t, getDiffSymbol(-0.3, 1), "▼")
	assert.Contains(t, getDiffSymbol(0.3, 1), "▲")
	assert.Contains(t, getDiffSymbol(0.9, 1), "▲▲")
}

func TestDisplay(t *testing.T) {
	diff, err := models.Filled(models.OutputResolution, 0.01)
	require.NoError(t, err)
	diff.Set(0, 0, -1)
	Display("Round trip", diff, Summarize(diff, 0.05), "rad")
}
