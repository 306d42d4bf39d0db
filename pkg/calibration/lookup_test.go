package calibration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tosih/slm-mapper/pkg/models"
	"github.com/tosih/slm-mapper/pkg/resample"
	"gonum.org/v1/gonum/mat"
)

func allEqual(t *testing.T, m *mat.Dense, want float64) {
	t.Helper()
	for i, v := range m.RawMatrix().Data {
		if v != want {
			t.Fatalf("cell %d = %v, want %v", i, v, want)
		}
	}
}

func TestLookupAveragedConstant(t *testing.T) {
	cm, err := NewAveraged(map[int]int{127: 500, 128: 510}, models.AveragedResolution)
	require.NoError(t, err)

	gray, err := models.Filled(models.Resolution{Rows: 4, Cols: 4}, 127.5)
	require.NoError(t, err)

	for _, order := range []resample.Order{resample.Nearest, resample.Linear} {
		t.Run(order.String(), func(t *testing.T) {
			p, err := Run(gray, cm, order)
			require.NoError(t, err)
			assert.True(t, p.Reconciled())
			assert.Equal(t, models.AveragedResolution, models.ShapeOf(p.Native))
			assert.Equal(t, models.OutputResolution, models.ShapeOf(p.Output))
			allEqual(t, p.Output, 505)
		})
	}
}

func TestLookupPerPixel(t *testing.T) {
	cm, err := NewPerPixel([][]map[int]int{
		{{0: 0, 100: 1000}, {0: 500}},
		{{50: 300, 60: 400}, {10: 1, 20: 2, 30: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, KindPerPixel, cm.Kind())

	gray := mat.NewDense(2, 2, []float64{
		25, 99,
		55, 25,
	})
	p, err := Run(gray, cm, resample.Nearest)
	require.NoError(t, err)
	assert.False(t, p.Reconciled())
	assert.Equal(t, []float64{250, 500, 350, 2}, p.Native.RawMatrix().Data)

	// order 0 upscaling keeps each cell's value in its quadrant
	assert.Equal(t, 250.0, p.Output.At(0, 0))
	assert.Equal(t, 500.0, p.Output.At(0, models.OutputWidth-1))
	assert.Equal(t, 350.0, p.Output.At(models.OutputHeight-1, 0))
	assert.Equal(t, 2.0, p.Output.At(models.OutputHeight-1, models.OutputWidth-1))
}

func TestLookupReconciliationIdempotent(t *testing.T) {
	cm, err := NewPerPixel([][]map[int]int{
		{{0: 0, 255: 1020}, {0: 1020, 255: 0}},
		{{0: 10, 255: 20}, {100: 700}},
	})
	require.NoError(t, err)

	native := mat.NewDense(2, 2, []float64{
		10, 200,
		128, 3,
	})
	upscaled, err := resample.Resample(native, models.Resolution{Rows: 4, Cols: 4}, resample.Nearest)
	require.NoError(t, err)

	direct, err := Run(native, cm, resample.Nearest)
	require.NoError(t, err)
	indirect, err := Run(upscaled, cm, resample.Nearest)
	require.NoError(t, err)

	assert.False(t, direct.Reconciled())
	assert.True(t, indirect.Reconciled())
	assert.True(t, mat.Equal(direct.Native, indirect.Native))
	assert.True(t, mat.Equal(direct.Output, indirect.Output))
}

func TestLookupReconcilesEitherDimension(t *testing.T) {
	cm, err := NewAveraged(map[int]int{0: 0, 255: 255}, models.Resolution{Rows: 3, Cols: 5})
	require.NoError(t, err)

	// same row count, different column count
	gray, err := models.Filled(models.Resolution{Rows: 3, Cols: 2}, 100)
	require.NoError(t, err)

	p, err := Run(gray, cm, resample.Linear)
	require.NoError(t, err)
	assert.True(t, p.Reconciled())
	allEqual(t, p.Native, 100)
}

func TestLookupErrors(t *testing.T) {
	gray := mat.NewDense(1, 1, []float64{1})

	_, err := Lookup(gray, nil, resample.Linear)
	assert.ErrorIs(t, err, models.ErrConfiguration)

	cm, err := NewAveraged(map[int]int{1: 1}, models.Resolution{Rows: 1, Cols: 1})
	require.NoError(t, err)
	_, err = Lookup(gray, cm, resample.Order(5))
	assert.ErrorIs(t, err, models.ErrConfiguration)
}

func TestMapConstructionErrors(t *testing.T) {
	_, err := NewAveraged(map[int]int{}, models.AveragedResolution)
	assert.ErrorIs(t, err, models.ErrConfiguration)

	_, err = NewAveraged(map[int]int{1: 1}, models.Resolution{})
	assert.ErrorIs(t, err, models.ErrConfiguration)

	_, err = NewPerPixel(nil)
	assert.ErrorIs(t, err, models.ErrConfiguration)

	_, err = NewPerPixel([][]map[int]int{{{1: 1}, {2: 2}}, {{3: 3}}})
	assert.ErrorIs(t, err, models.ErrConfiguration)

	_, err = NewPerPixel([][]map[int]int{{{1: 1}, {}}})
	assert.ErrorIs(t, err, models.ErrConfiguration)
}
