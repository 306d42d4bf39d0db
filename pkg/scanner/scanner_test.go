package scanner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tosih/slm-mapper/pkg/calibration"
	"github.com/tosih/slm-mapper/pkg/models"
)

func TestInspectAveraged(t *testing.T) {
	cm, err := calibration.NewAveraged(map[int]int{10: 300, 20: 400, 50: 900}, models.AveragedResolution)
	require.NoError(t, err)

	r := Inspect("avg", cm)
	assert.Equal(t, calibration.KindAveraged, r.Kind)
	assert.Equal(t, 1, r.Curves)
	assert.Equal(t, 3, r.MinKeys)
	assert.Equal(t, 3, r.MaxKeys)
	assert.Equal(t, 10, r.KeyLow)
	assert.Equal(t, 50, r.KeyHigh)
	assert.Equal(t, 300, r.ValueLow)
	assert.Equal(t, 900, r.ValueHigh)
	assert.Equal(t, 30, r.MaxGap)
	assert.InDelta(t, 20, r.MeanGap, 1e-12)
	assert.InDelta(t, 14.142135623730951, r.GapStd, 1e-9)
	assert.True(t, r.Monotonic())
}

func TestInspectPerPixel(t *testing.T) {
	cm, err := calibration.NewPerPixel([][]map[int]int{
		{{0: 1, 5: 2}, {3: 9, 4: 1}},
		{{7: 7}, {1: 1, 2: 5, 9: 3}},
	})
	require.NoError(t, err)

	r := Inspect("pix", cm)
	assert.Equal(t, 4, r.Curves)
	assert.Equal(t, 1, r.MinKeys)
	assert.Equal(t, 3, r.MaxKeys)
	assert.InDelta(t, 2, r.MeanKeys, 1e-12)
	assert.Equal(t, 0, r.KeyLow)
	assert.Equal(t, 9, r.KeyHigh)
	assert.Equal(t, 1, r.ValueLow)
	assert.Equal(t, 9, r.ValueHigh)
	assert.Equal(t, 7, r.MaxGap)
	// {0:1,5:2} and the single key curve rise; {3:9,4:1} and the single key curve fall
	assert.Equal(t, 2, r.Increasing)
	assert.Equal(t, 2, r.Decreasing)
	assert.False(t, r.Monotonic())
}

func TestScanCatalog(t *testing.T) {
	cm, err := calibration.NewAveraged(map[int]int{0: 0, 255: 1023}, models.AveragedResolution)
	require.NoError(t, err)

	catalog := models.Catalog{
		{Name: "good", Mode: "2pi", Map: "good.json", Inverse: "missing.json"},
		{Name: "no inverse", Mode: "4pi", Map: "good.json"},
	}
	var asked []string
	reports := ScanCatalog(catalog, "maps", func(path string) (calibration.Map, error) {
		asked = append(asked, path)
		if path == "maps/missing.json" {
			return nil, errors.New("not found")
		}
		return cm, nil
	})

	assert.Equal(t, []string{"maps/good.json", "maps/missing.json", "maps/good.json"}, asked)
	require.Len(t, reports, 2)
	assert.Equal(t, "good", reports[0].Name)
	assert.Equal(t, "no inverse", reports[1].Name)

	DisplayReports(reports)
	DisplayReports(nil)
}
