package export

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tosih/slm-mapper/pkg/models"
	"golang.org/x/image/tiff"
	"gonum.org/v1/gonum/mat"
)

func TestWriteTIFF(t *testing.T) {
	field := mat.NewDense(2, 3, []float64{
		0, 511.9, 1023,
		-4, 70000, 12,
	})

	var buf bytes.Buffer
	require.NoError(t, WriteTIFF(&buf, field))

	img, err := tiff.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())

	gray, ok := img.(*image.Gray16)
	require.True(t, ok, "got %T", img)
	assert.Equal(t, uint16(511), gray.Gray16At(1, 0).Y)
	assert.Equal(t, uint16(1023), gray.Gray16At(2, 0).Y)
	assert.Equal(t, uint16(0), gray.Gray16At(0, 1).Y)
	assert.Equal(t, uint16(65535), gray.Gray16At(1, 1).Y)
}

func TestSaveTIFFCollision(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.tif")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	field, err := models.Filled(models.Resolution{Rows: 2, Cols: 2}, 3)
	require.NoError(t, err)

	_, err = SaveTIFF(field, path, Refuse)
	assert.ErrorIs(t, err, models.ErrWriteCollision)

	written, err := SaveTIFF(field, path, AutoSuffix)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "out_1.tif"), written)
}
