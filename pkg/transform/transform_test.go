package transform

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tosih/slm-mapper/pkg/models"
	"gonum.org/v1/gonum/mat"
)

func TestToGraylevelScale(t *testing.T) {
	angles := mat.NewDense(1, 3, []float64{0, math.Pi / 2, math.Pi})

	half, err := ToGraylevel(angles, models.HalfTurn)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 127.5, 255}, half.RawRowView(0))

	full, err := ToGraylevel(angles, models.FullTurn)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 63.75, 127.5}, full.RawRowView(0))
}

func TestRoundTrip(t *testing.T) {
	angles := mat.NewDense(2, 4, []float64{
		0, 0.1, 1.3, math.Pi,
		2 * math.Pi, -0.5, 7.25, 3.0,
	})
	for _, mode := range []models.TransformMode{models.HalfTurn, models.FullTurn} {
		t.Run(mode.String(), func(t *testing.T) {
			gray, err := ToGraylevel(angles, mode)
			require.NoError(t, err)
			back, err := ToAngle(gray, mode)
			require.NoError(t, err)
			assert.True(t, mat.EqualApprox(angles, back, 1e-12))
		})
	}
}

func TestUnsupportedMode(t *testing.T) {
	angles := mat.NewDense(1, 1, []float64{1})
	_, err := ToGraylevel(angles, models.TransformMode(7))
	assert.ErrorIs(t, err, models.ErrConfiguration)
	_, err = ToAngle(angles, 0)
	assert.ErrorIs(t, err, models.ErrConfiguration)
	_, err = SensorView(angles, 0)
	assert.ErrorIs(t, err, models.ErrConfiguration)
}

func TestSensorView(t *testing.T) {
	gray := mat.NewDense(1, 4, []float64{10, 127.5, 200, 255})

	half, err := SensorView(gray, models.HalfTurn)
	require.NoError(t, err)
	assert.Equal(t, gray.RawRowView(0), half.RawRowView(0))

	full, err := SensorView(gray, models.FullTurn)
	require.NoError(t, err)
	assert.Equal(t, []float64{20, 255, 145, 255}, full.RawRowView(0))
}

func TestCheckRange(t *testing.T) {
	w, err := CheckRange(mat.NewDense(1, 3, []float64{0, 100, 255}))
	require.NoError(t, err)
	assert.Nil(t, w)

	w, err = CheckRange(mat.NewDense(1, 3, []float64{-1, 100, 300}))
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.Equal(t, 2, w.Count)
	assert.Equal(t, 3, w.Total)
	assert.Equal(t, -1.0, w.Min)
	assert.Equal(t, 300.0, w.Max)
	assert.Contains(t, w.String(), "2 of 3")
}

func TestEmptyFieldsRejected(t *testing.T) {
	var empty mat.Dense

	_, err := ToGraylevel(&empty, models.HalfTurn)
	assert.ErrorIs(t, err, models.ErrShapeMismatch)
	_, err = ToAngle(&empty, models.FullTurn)
	assert.ErrorIs(t, err, models.ErrShapeMismatch)
	_, err = SensorView(&empty, models.FullTurn)
	assert.ErrorIs(t, err, models.ErrShapeMismatch)
	_, err = CheckRange(&empty)
	assert.ErrorIs(t, err, models.ErrShapeMismatch)
}
