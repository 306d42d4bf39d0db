package reader

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tosih/slm-mapper/pkg/calibration"
	"github.com/tosih/slm-mapper/pkg/models"
)

func TestMapRoundTrip(t *testing.T) {
	avg, err := calibration.NewAveraged(map[int]int{10: 300, 250: 1000}, models.Resolution{Rows: 30, Cols: 48})
	require.NoError(t, err)
	pix, err := calibration.NewPerPixel([][]map[int]int{
		{{0: 1}, {0: 2, 9: 3}},
		{{5: 6}, {7: 8}},
	})
	require.NoError(t, err)

	dir := t.TempDir()
	for _, name := range []string{"avg.json", "avg.json.gz", "pix.json", "pix.json.gz"} {
		t.Run(name, func(t *testing.T) {
			var src calibration.Map = avg
			if strings.HasPrefix(name, "pix") {
				src = pix
			}
			path := filepath.Join(dir, name)
			require.NoError(t, WriteMap(path, src))

			got, err := ReadMap(path)
			require.NoError(t, err)
			assert.Equal(t, src.Kind(), got.Kind())
			assert.Equal(t, src.Resolution(), got.Resolution())
			res := src.Resolution()
			for _, cell := range [][2]int{{0, 0}, {res.Rows - 1, res.Cols - 1}} {
				assert.Equal(t, src.MappingAt(cell[0], cell[1]).Entries(), got.MappingAt(cell[0], cell[1]).Entries())
			}
		})
	}
}

func TestDecodeMapDefaultsAveragedResolution(t *testing.T) {
	cm, err := DecodeMap(strings.NewReader(`{"kind":"averaged","mapping":{"127":500,"128":510}}`))
	require.NoError(t, err)
	assert.Equal(t, models.AveragedResolution, cm.Resolution())
	assert.Equal(t, map[int]int{127: 500, 128: 510}, cm.MappingAt(5, 5).Entries())
}

func TestDecodeMapErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"malformed", `{"kind":`},
		{"unknown kind", `{"kind":"spline","mapping":{"1":1}}`},
		{"missing kind", `{"mapping":{"1":1}}`},
		{"empty averaged", `{"kind":"averaged","mapping":{}}`},
		{"non-integer key", `{"kind":"averaged","mapping":{"1.5":1}}`},
		{"empty per-pixel", `{"kind":"per-pixel","cells":[]}`},
		{"declared shape mismatch", `{"kind":"per-pixel","rows":2,"cols":1,"cells":[[{"1":1}]]}`},
		{"empty cell", `{"kind":"per-pixel","cells":[[{"1":1},{}]]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeMap(strings.NewReader(tt.in))
			assert.ErrorIs(t, err, models.ErrConfiguration)
		})
	}
}

func TestReadMapMissingFile(t *testing.T) {
	_, err := ReadMap(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

// shortWriter accepts limit bytes and then fails
type shortWriter struct {
	limit int
}

func (w *shortWriter) Write(p []byte) (int, error) {
	if len(p) > w.limit {
		n := w.limit
		w.limit = 0
		return n, errors.New("no space left on device")
	}
	w.limit -= len(p)
	return len(p), nil
}

func TestEncodeMapReportsWriteFailures(t *testing.T) {
	cm, err := calibration.NewAveraged(calibration.Ramp(1023, 0), models.AveragedResolution)
	require.NoError(t, err)
	mf := mapFile{Kind: cm.Kind(), Rows: 300, Cols: 480, Mapping: cm.Mapping().Entries()}

	for _, compress := range []bool{false, true} {
		err := encodeMap(&shortWriter{limit: 16}, mf, compress)
		assert.ErrorContains(t, err, "no space left", "compress=%v", compress)
	}
	assert.NoError(t, encodeMap(&shortWriter{limit: 1 << 20}, mf, true))
}

func TestWriteMapMissingDirectory(t *testing.T) {
	cm, err := calibration.NewAveraged(map[int]int{1: 2}, models.AveragedResolution)
	require.NoError(t, err)

	err = WriteMap(filepath.Join(t.TempDir(), "missing", "map.json"), cm)
	assert.Error(t, err)
}
