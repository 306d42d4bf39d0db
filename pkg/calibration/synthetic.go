package calibration

import (
	"math"
	"sort"

	"github.com/tosih/slm-mapper/pkg/models"
)

// Ramp returns a linear curve from graylevels 0..255 onto device levels
// 0..maxLevel, shifted by offset and clamped to [0, maxLevel]
func Ramp(maxLevel, offset int) map[int]int {
	entries := make(map[int]int, models.MaxGraylevel+1)
	for g := 0; g <= models.MaxGraylevel; g++ {
		v := int(math.Round(float64(g)*float64(maxLevel)/models.MaxGraylevel)) + offset
		entries[g] = min(max(v, 0), maxLevel)
	}
	return entries
}

// Invert swaps keys and values. When several keys share a value the
// smallest key wins.
func Invert(entries map[int]int) map[int]int {
	keys := make([]int, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	inv := make(map[int]int, len(entries))
	for _, k := range keys {
		if _, ok := inv[entries[k]]; !ok {
			inv[entries[k]] = k
		}
	}
	return inv
}

// SyntheticPair builds a ramp map and its inverse. A zero res gives an
// averaged pair at the averaged resolution; otherwise a per-pixel pair
// whose cells are offset from each other by a few device levels.
func SyntheticPair(maxLevel int, res models.Resolution) (Map, Map, error) {
	if res.Empty() {
		ramp := Ramp(maxLevel, 0)
		fwd, err := NewAveraged(ramp, models.AveragedResolution)
		if err != nil {
			return nil, nil, err
		}
		inv, err := NewAveraged(Invert(ramp), models.AveragedResolution)
		if err != nil {
			return nil, nil, err
		}
		return fwd, inv, nil
	}

	fwdCells := make([][]map[int]int, res.Rows)
	invCells := make([][]map[int]int, res.Rows)
	for i := range fwdCells {
		fwdCells[i] = make([]map[int]int, res.Cols)
		invCells[i] = make([]map[int]int, res.Cols)
		for j := range fwdCells[i] {
			ramp := Ramp(maxLevel, (i+j)%9-4)
			fwdCells[i][j] = ramp
			invCells[i][j] = Invert(ramp)
		}
	}
	fwd, err := NewPerPixel(fwdCells)
	if err != nil {
		return nil, nil, err
	}
	inv, err := NewPerPixel(invCells)
	if err != nil {
		return nil, nil, err
	}
	return fwd, inv, nil
}
