package reader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tosih/slm-mapper/pkg/models"
)

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestReadCatalog(t *testing.T) {
	path := writeCatalog(t, `
maps:
  - name: bench average
    mode: 2pi
    map: avg.json
    inverse: avg_inv.json
    description: bench calibration
  - name: bench 4pi
    mode: 4pi
    map: avg4.json
`)
	cat, err := ReadCatalog(path)
	require.NoError(t, err)
	require.Len(t, cat, 2)
	assert.Equal(t, models.CatalogEntry{
		Name:        "bench average",
		Mode:        "2pi",
		Map:         "avg.json",
		Inverse:     "avg_inv.json",
		Description: "bench calibration",
	}, cat[0])
	assert.Empty(t, cat[1].Inverse)
}

func TestReadCatalogErrors(t *testing.T) {
	tests := map[string]string{
		"empty":     "maps: []\n",
		"bad mode":  "maps:\n  - {name: a, mode: 3pi, map: a.json}\n",
		"no map":    "maps:\n  - {name: a, mode: 2pi}\n",
		"duplicate": "maps:\n  - {name: a, mode: 2pi, map: a.json}\n  - {name: A, mode: 4pi, map: b.json}\n",
		"not yaml":  "maps: [\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadCatalog(writeCatalog(t, body))
			assert.ErrorIs(t, err, models.ErrConfiguration)
		})
	}
}

func TestWriteCatalogRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, WriteCatalog(path, models.DefaultCatalog))

	got, err := ReadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCatalog, got)
}
