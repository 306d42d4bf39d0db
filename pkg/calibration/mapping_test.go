package calibration

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tosih/slm-mapper/pkg/models"
)

func mustMapping(t *testing.T, entries map[int]int) *Mapping {
	t.Helper()
	m, err := NewMapping(entries)
	require.NoError(t, err)
	return m
}

func TestMappingBracket(t *testing.T) {
	m := mustMapping(t, map[int]int{10: 100, 50: 400, 90: 900})

	tests := []struct {
		name string
		g    float64
		want int
	}{
		{"midpoint", 30, 100 + (400-100)*(30-10)/(50-10)},
		{"exact lowest key", 10, 100},
		{"exact interior key", 50, 400},
		{"beyond upper end", 200, 900},
		{"below lower end", -5, 100},
		{"upper bracket", 70, 650},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Lookup(tt.g)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// The closer key must carry the larger weight. Swapping the weights gives
// 100*0.25 + 400*0.75 = 325 here instead of 175.
func TestMappingWeightPairing(t *testing.T) {
	m := mustMapping(t, map[int]int{10: 100, 50: 400})

	got, err := m.Lookup(20)
	require.NoError(t, err)
	assert.Equal(t, 175, got)

	got, err = m.Lookup(45)
	require.NoError(t, err)
	assert.Equal(t, 362, got) // 362.5 truncated
}

func TestMappingTruncates(t *testing.T) {
	m := mustMapping(t, map[int]int{0: 0, 3: 10})
	got, err := m.Lookup(1)
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	got, err = m.Lookup(2.9)
	require.NoError(t, err)
	assert.Equal(t, 9, got)
}

func TestMappingSingleKey(t *testing.T) {
	m := mustMapping(t, map[int]int{42: 777})
	for _, g := range []float64{-100, 0, 41.9, 42, 42.1, 255, 1e6} {
		got, err := m.Lookup(g)
		require.NoError(t, err)
		assert.Equal(t, 777, got, "g=%v", g)
	}
}

func TestMappingDecreasingCurve(t *testing.T) {
	// inverse maps are not required to be increasing
	m := mustMapping(t, map[int]int{300: 200, 700: 0})
	got, err := m.Lookup(500)
	require.NoError(t, err)
	assert.Equal(t, 100, got)
}

func TestMappingErrors(t *testing.T) {
	_, err := NewMapping(map[int]int{})
	assert.ErrorIs(t, err, models.ErrConfiguration)

	m := mustMapping(t, map[int]int{1: 1})
	for _, g := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := m.Lookup(g)
		assert.ErrorIs(t, err, models.ErrNonFinite)
	}
}

func TestMappingAccessors(t *testing.T) {
	entries := map[int]int{90: 900, 10: 100, 50: 400}
	m := mustMapping(t, entries)
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, []int{10, 50, 90}, m.Keys())
	assert.Equal(t, []int{100, 400, 900}, m.Values())
	assert.Equal(t, entries, m.Entries())

	keys := m.Keys()
	keys[0] = -1
	assert.Equal(t, []int{10, 50, 90}, m.Keys())
}
