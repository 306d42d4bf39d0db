package models

import (
	"fmt"
	"strings"
)

// TransformMode selects the angular range of the input field
type TransformMode int

const (
	// HalfTurn maps angles in [0, π] onto [0, 255] ("2pi" maps)
	HalfTurn TransformMode = iota + 1
	// FullTurn maps angles in [0, 2π] onto [0, 255] ("4pi" maps)
	FullTurn
)

func (m TransformMode) String() string {
	switch m {
	case HalfTurn:
		return "2pi"
	case FullTurn:
		return "4pi"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Valid reports whether m is one of the supported modes
func (m TransformMode) Valid() bool {
	return m == HalfTurn || m == FullTurn
}

// ParseMode parses the catalog spelling of a transform mode
func ParseMode(s string) (TransformMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "2pi", "half", "halfturn", "half-turn":
		return HalfTurn, nil
	case "4pi", "full", "fullturn", "full-turn":
		return FullTurn, nil
	default:
		return 0, fmt.Errorf("%w: unsupported transform mode %q", ErrConfiguration, s)
	}
}

// CatalogEntry describes a calibration map and its inverse on disk
type CatalogEntry struct {
	Name        string `yaml:"name" json:"name"`
	Mode        string `yaml:"mode" json:"mode"`
	Map         string `yaml:"map" json:"map"`
	Inverse     string `yaml:"inverse" json:"inverse"`
	Description string `yaml:"description" json:"description"`
}

// Catalog is an ordered list of selectable maps
type Catalog []CatalogEntry

// Find returns the entry with the given name, ignoring case
func (c Catalog) Find(name string) (CatalogEntry, bool) {
	for _, e := range c {
		if strings.EqualFold(e.Name, name) {
			return e, true
		}
	}
	return CatalogEntry{}, false
}

// Names lists the entry names in catalog order
func (c Catalog) Names() []string {
	names := make([]string, len(c))
	for i, e := range c {
		names[i] = e.Name
	}
	return names
}

// DefaultCatalog lists the maps produced by the calibration runs.
// Paths are relative to the maps directory.
var DefaultCatalog = Catalog{
	{
		Name:        "2pi pixel-by-pixel raw",
		Mode:        "2pi",
		Map:         "map_pix_res4_raw.json.gz",
		Inverse:     "map_pix_inv_res4_raw.json.gz",
		Description: "Per-pixel map, unfiltered camera readings",
	},
	{
		Name:        "2pi pixel-by-pixel filtered",
		Mode:        "2pi",
		Map:         "map_pix_res4_filt20.json.gz",
		Inverse:     "map_pix_inv_res4_filt20.json.gz",
		Description: "Per-pixel map, gaussian filtered (sigma 20)",
	},
	{
		Name:        "2pi average",
		Mode:        "2pi",
		Map:         "map_avg_res4.json",
		Inverse:     "map_avg_inv_res4.json",
		Description: "Sensor-averaged map (quasi linear); SLM range [0, 2.2π] at 454 nm",
	},
	{
		Name:        "4pi pixel-by-pixel raw",
		Mode:        "4pi",
		Map:         "map_pix_res4_raw_4pi.json.gz",
		Inverse:     "map_pix_inv_res4_raw_4pi.json.gz",
		Description: "Per-pixel map, unfiltered camera readings",
	},
	{
		Name:        "4pi pixel-by-pixel filtered",
		Mode:        "4pi",
		Map:         "map_pix_res4_filt20_4pi.json.gz",
		Inverse:     "map_pix_inv_res4_filt20_4pi.json.gz",
		Description: "Per-pixel map, gaussian filtered (sigma 20)",
	},
	{
		Name:        "4pi average",
		Mode:        "4pi",
		Map:         "map_avg_res4_4pi.json",
		Inverse:     "map_avg_inv_res4_4pi.json",
		Description: "Sensor-averaged map (quasi linear); SLM range [0, 5π] at 454 nm",
	},
}
