// Package calibration holds the measured graylevel to device-level maps and
// the lookup pipeline that applies them to whole fields.
package calibration

import (
	"fmt"

	"github.com/tosih/slm-mapper/pkg/models"
)

// Kind tags the two map shapes
type Kind string

const (
	KindAveraged Kind = "averaged"
	KindPerPixel Kind = "per-pixel"
)

// Map is an immutable calibration map. Lookups are always performed at
// Resolution(); MappingAt returns the curve that applies to a cell at that
// resolution.
type Map interface {
	Kind() Kind
	Resolution() models.Resolution
	MappingAt(row, col int) *Mapping
}

// Averaged applies one curve, measured over the whole sensor, to every cell
type Averaged struct {
	mapping    *Mapping
	resolution models.Resolution
}

// NewAveraged builds an averaged map. The declared resolution only decides
// whether the input must be resampled before lookup.
func NewAveraged(entries map[int]int, res models.Resolution) (*Averaged, error) {
	if res.Empty() {
		return nil, fmt.Errorf("%w: averaged map declares resolution %s", models.ErrConfiguration, res)
	}
	m, err := NewMapping(entries)
	if err != nil {
		return nil, err
	}
	return &Averaged{mapping: m, resolution: res}, nil
}

func (a *Averaged) Kind() Kind { return KindAveraged }

func (a *Averaged) Resolution() models.Resolution { return a.resolution }

func (a *Averaged) MappingAt(_, _ int) *Mapping { return a.mapping }

// Mapping returns the shared curve
func (a *Averaged) Mapping() *Mapping { return a.mapping }

// PerPixel holds an independent curve for every cell of its native grid
type PerPixel struct {
	resolution models.Resolution
	cells      []*Mapping
}

// NewPerPixel builds a per-pixel map from a rows x cols grid of tables
func NewPerPixel(grid [][]map[int]int) (*PerPixel, error) {
	if len(grid) == 0 || len(grid[0]) == 0 {
		return nil, fmt.Errorf("%w: empty per-pixel grid", models.ErrConfiguration)
	}
	res := models.Resolution{Rows: len(grid), Cols: len(grid[0])}
	cells := make([]*Mapping, 0, res.Cells())
	for i, row := range grid {
		if len(row) != res.Cols {
			return nil, fmt.Errorf("%w: per-pixel row %d has %d cells, expected %d",
				models.ErrConfiguration, i, len(row), res.Cols)
		}
		for j, entries := range row {
			m, err := NewMapping(entries)
			if err != nil {
				return nil, fmt.Errorf("cell [%d,%d]: %w", i, j, err)
			}
			cells = append(cells, m)
		}
	}
	return &PerPixel{resolution: res, cells: cells}, nil
}

func (p *PerPixel) Kind() Kind { return KindPerPixel }

func (p *PerPixel) Resolution() models.Resolution { return p.resolution }

func (p *PerPixel) MappingAt(row, col int) *Mapping {
	return p.cells[row*p.resolution.Cols+col]
}
