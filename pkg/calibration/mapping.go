package calibration

import (
	"fmt"
	"math"
	"sort"

	"github.com/tosih/slm-mapper/pkg/models"
)

// Mapping is one measured curve from integer keys to integer levels. Keys
// are sorted once at construction; they need not be dense or cover the
// full graylevel range.
type Mapping struct {
	keys   []int
	values []int
}

// NewMapping builds a mapping from a key/value table. An empty table is a
// configuration error since no lookup could be answered from it.
func NewMapping(entries map[int]int) (*Mapping, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: empty mapping", models.ErrConfiguration)
	}

	keys := make([]int, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	values := make([]int, len(keys))
	for i, k := range keys {
		values[i] = entries[k]
	}

	return &Mapping{keys: keys, values: values}, nil
}

// Len returns the number of keys
func (m *Mapping) Len() int {
	return len(m.keys)
}

// Keys returns the sorted keys
func (m *Mapping) Keys() []int {
	return append([]int(nil), m.keys...)
}

// Values returns the levels in key order
func (m *Mapping) Values() []int {
	return append([]int(nil), m.values...)
}

// Entries returns the mapping as a key/value table
func (m *Mapping) Entries() map[int]int {
	out := make(map[int]int, len(m.keys))
	for i, k := range m.keys {
		out[k] = m.values[i]
	}
	return out
}

// Lookup maps a real graylevel g to a level.
//
// When g lies strictly between two keys the result is the linear
// interpolation between the closest key below and the closest key above,
// each weighted by the distance to the other one, truncated toward zero.
// An exact key, or a g beyond either end of the key range, yields the
// level of the closest key.
func (m *Mapping) Lookup(g float64) (int, error) {
	if math.IsNaN(g) || math.IsInf(g, 0) {
		return 0, fmt.Errorf("%w: graylevel %v", models.ErrNonFinite, g)
	}

	n := len(m.keys)
	i := sort.Search(n, func(k int) bool { return float64(m.keys[k]) >= g })

	switch {
	case i < n && float64(m.keys[i]) == g:
		return m.values[i], nil
	case i == 0:
		return m.values[0], nil
	case i == n:
		return m.values[n-1], nil
	}

	up, down := float64(m.keys[i]), float64(m.keys[i-1])
	dUp := up - g
	dDown := g - down
	span := dUp + dDown

	v := dUp/span*float64(m.values[i-1]) + dDown/span*float64(m.values[i])
	return int(math.Trunc(v)), nil
}
