package models

import "fmt"

// Device output geometry of the reference SLM
const (
	OutputWidth  = 1920
	OutputHeight = 1200
)

// AveragedScale is the downscale factor the averaged maps were computed at
const AveragedScale = 4

// Graylevel and device-level domains
const (
	MaxGraylevel   = 255
	MaxDeviceLevel = 1023
)

// Default locations, relative to the working directory
const (
	DefaultMapsDir    = "SLM_maps"
	DefaultOutputsDir = "SLM_outputs"
)

// Resolution is the shape of a field, in rows (height) by columns (width)
type Resolution struct {
	Rows int `json:"rows" yaml:"rows"`
	Cols int `json:"cols" yaml:"cols"`
}

// OutputResolution is the resolution every Output Artifact is written at
var OutputResolution = Resolution{Rows: OutputHeight, Cols: OutputWidth}

// AveragedResolution is the default declared resolution of an averaged map
var AveragedResolution = Resolution{Rows: OutputHeight / AveragedScale, Cols: OutputWidth / AveragedScale}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Rows, r.Cols)
}

// Empty reports whether either dimension is not positive
func (r Resolution) Empty() bool {
	return r.Rows <= 0 || r.Cols <= 0
}

// Cells is the number of cells at this resolution
func (r Resolution) Cells() int {
	return r.Rows * r.Cols
}
