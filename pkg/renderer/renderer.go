package renderer

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/tosih/slm-mapper/pkg/models"
	"github.com/tosih/slm-mapper/pkg/reader"
	"github.com/tosih/slm-mapper/pkg/resample"
	"gonum.org/v1/gonum/mat"
)

// Display modes for RenderField
const (
	ModeValues  = "values"
	ModeHeatmap = "heatmap"
	ModeSymbols = "symbols"
)

// Largest grid drawn per display mode; larger fields are shrunk with order 0
var gridLimits = map[string]models.Resolution{
	ModeValues:  {Rows: 12, Cols: 12},
	ModeHeatmap: {Rows: 24, Cols: 48},
	ModeSymbols: {Rows: 24, Cols: 24},
}

// ValidMode reports whether mode is a known display mode
func ValidMode(mode string) bool {
	_, ok := gridLimits[mode]
	return ok
}

// RenderField displays a field scaled between min and max
func RenderField(title string, field mat.Matrix, displayMode string, min, max float64, unit string) {
	header := fmt.Sprintf("%s | %s | Range: %.2f-%.2f %s", title, models.ShapeOf(field), min, max, unit)

	body, err := BuildFieldString(field, displayMode, min, max)
	if err != nil {
		pterm.Error.Printf("Cannot render %s: %v\n", title, err)
		return
	}
	pterm.DefaultBox.WithTitle(header).WithTitleTopLeft().Println(body)
}

// RenderAuto displays a field scaled to its own range
func RenderAuto(title string, field mat.Matrix, displayMode, unit string) {
	min, max := reader.FindMinMax(field)
	RenderField(title, field, displayMode, min, max, unit)
}

// BuildFieldString creates a formatted string representation of the field
func BuildFieldString(field mat.Matrix, displayMode string, min, max float64) (string, error) {
	limit, ok := gridLimits[displayMode]
	if !ok {
		return "", fmt.Errorf("unknown display mode %q", displayMode)
	}

	shape := models.ShapeOf(field)
	target := models.Resolution{Rows: minInt(shape.Rows, limit.Rows), Cols: minInt(shape.Cols, limit.Cols)}
	grid, err := resample.Resample(field, target, resample.Nearest)
	if err != nil {
		return "", err
	}

	var result strings.Builder
	rowStep := float64(shape.Rows) / float64(target.Rows)
	colStep := float64(shape.Cols) / float64(target.Cols)

	// Header: source column index of every drawn column
	result.WriteString("    col → |")
	for j := 0; j < target.Cols; j++ {
		col := int(float64(j) * colStep)
		switch displayMode {
		case ModeValues:
			result.WriteString(fmt.Sprintf("%8d", col))
		case ModeHeatmap:
			if j%4 == 0 {
				result.WriteString(fmt.Sprintf("%-8d", col))
			}
		default:
			if j%2 == 0 {
				result.WriteString(fmt.Sprintf("%-4d", col))
			}
		}
	}
	result.WriteString("\n")

	sep := 8
	if displayMode != ModeValues {
		sep = 2
	}
	result.WriteString("    row   |" + strings.Repeat("-", target.Cols*sep) + "\n")

	for i := 0; i < target.Rows; i++ {
		result.WriteString(fmt.Sprintf("   %4d ↓ |", int(float64(i)*rowStep)))
		for j := 0; j < target.Cols; j++ {
			value := grid.At(i, j)
			switch displayMode {
			case ModeValues:
				result.WriteString(getColorStyle(value, min, max).Sprintf("%8.2f", value))
			case ModeHeatmap:
				result.WriteString(getHeatmapBlock(value, min, max))
			default:
				symbol := getSymbolForValue(value, min, max)
				result.WriteString(symbol + symbol)
			}
		}
		result.WriteString("\n")
	}

	switch displayMode {
	case ModeHeatmap:
		result.WriteString("\n" + getHeatmapLegend())
	case ModeSymbols:
		result.WriteString("\nLegend: ")
		result.WriteString(pterm.FgCyan.Sprint("░") + " Low  ")
		result.WriteString(pterm.FgGreen.Sprint("▒") + " Med  ")
		result.WriteString(pterm.FgYellow.Sprint("▓") + " High  ")
		result.WriteString(pterm.FgRed.Sprint("█") + " Max")
	}

	return result.String(), nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func normalize(value, min, max float64) float64 {
	return (value - min) / (max - min)
}

func getHeatmapBlock(value, min, max float64) string {
	if max == min {
		return pterm.BgGray.Sprint("  ")
	}

	switch n := normalize(value, min, max); {
	case n < 0.2:
		return pterm.NewStyle(pterm.BgBlue, pterm.FgWhite).Sprint("▄▄")
	case n < 0.4:
		return pterm.NewStyle(pterm.BgCyan, pterm.FgBlack).Sprint("▄▄")
	case n < 0.6:
		return pterm.NewStyle(pterm.BgGreen, pterm.FgBlack).Sprint("▄▄")
	case n < 0.8:
		return pterm.NewStyle(pterm.BgYellow, pterm.FgBlack).Sprint("▄▄")
	default:
		return pterm.NewStyle(pterm.BgRed, pterm.FgWhite).Sprint("▄▄")
	}
}

func getHeatmapLegend() string {
	var result strings.Builder
	result.WriteString("Heatmap: ")
	result.WriteString(pterm.NewStyle(pterm.BgBlue, pterm.FgWhite).Sprint("▄▄") + " Very Low  ")
	result.WriteString(pterm.NewStyle(pterm.BgCyan, pterm.FgBlack).Sprint("▄▄") + " Low  ")
	result.WriteString(pterm.NewStyle(pterm.BgGreen, pterm.FgBlack).Sprint("▄▄") + " Medium  ")
	result.WriteString(pterm.NewStyle(pterm.BgYellow, pterm.FgBlack).Sprint("▄▄") + " High  ")
	result.WriteString(pterm.NewStyle(pterm.BgRed, pterm.FgWhite).Sprint("▄▄") + " Very High")
	return result.String()
}

func getSymbolForValue(value, min, max float64) string {
	if max == min {
		return pterm.FgGray.Sprint("·")
	}

	switch n := normalize(value, min, max); {
	case n < 0.25:
		return pterm.FgCyan.Sprint("░")
	case n < 0.5:
		return pterm.FgGreen.Sprint("▒")
	case n < 0.75:
		return pterm.FgYellow.Sprint("▓")
	default:
		return pterm.FgRed.Sprint("█")
	}
}

func getColorStyle(value, min, max float64) *pterm.Style {
	if max == min {
		return pterm.NewStyle(pterm.FgGray)
	}

	switch n := normalize(value, min, max); {
	case n < 0.25:
		return pterm.NewStyle(pterm.FgCyan)
	case n < 0.5:
		return pterm.NewStyle(pterm.FgGreen)
	case n < 0.75:
		return pterm.NewStyle(pterm.FgYellow)
	default:
		return pterm.NewStyle(pterm.FgRed)
	}
}

// ListMaps displays the selectable calibration maps in a table
func ListMaps(catalog models.Catalog, active string) {
	pterm.DefaultHeader.WithFullWidth().Println("Available Calibration Maps")

	data := pterm.TableData{
		{"", "Name", "Mode", "Map", "Inverse", "Description"},
	}

	for _, e := range catalog {
		marker := ""
		if strings.EqualFold(e.Name, active) {
			marker = pterm.FgGreen.Sprint("●")
		}
		inverse := e.Inverse
		if inverse == "" {
			inverse = pterm.FgGray.Sprint("none")
		}
		data = append(data, []string{marker, e.Name, e.Mode, e.Map, inverse, e.Description})
	}

	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
