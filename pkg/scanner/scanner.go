package scanner

import (
	"fmt"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/tosih/slm-mapper/pkg/calibration"
	"github.com/tosih/slm-mapper/pkg/models"
	"gonum.org/v1/gonum/stat"
)

// Report summarizes the curves of one calibration map
type Report struct {
	Name       string
	Kind       calibration.Kind
	Resolution models.Resolution
	Curves     int

	MinKeys  int
	MaxKeys  int
	MeanKeys float64

	KeyLow    int
	KeyHigh   int
	ValueLow  int
	ValueHigh int

	// MaxGap is the widest spacing between consecutive keys of any curve
	MaxGap  int
	MeanGap float64
	GapStd  float64

	// Increasing and Decreasing count curves whose levels never fall
	// (resp. never rise) with the key
	Increasing int
	Decreasing int
}

// Monotonic reports whether every curve is monotonic in one direction
func (r Report) Monotonic() bool {
	return r.Increasing == r.Curves || r.Decreasing == r.Curves
}

// Inspect walks every distinct curve of cm
func Inspect(name string, cm calibration.Map) Report {
	res := cm.Resolution()
	curves := []*calibration.Mapping{cm.MappingAt(0, 0)}
	if cm.Kind() == calibration.KindPerPixel {
		curves = curves[:0]
		for i := 0; i < res.Rows; i++ {
			for j := 0; j < res.Cols; j++ {
				curves = append(curves, cm.MappingAt(i, j))
			}
		}
	}

	r := Report{
		Name:       name,
		Kind:       cm.Kind(),
		Resolution: res,
		Curves:     len(curves),
	}

	counts := make([]float64, 0, len(curves))
	var gaps []float64
	for n, m := range curves {
		keys, values := m.Keys(), m.Values()
		counts = append(counts, float64(len(keys)))

		lowV, highV := minMax(values)
		if n == 0 {
			r.MinKeys, r.MaxKeys = len(keys), len(keys)
			r.KeyLow, r.KeyHigh = keys[0], keys[len(keys)-1]
			r.ValueLow, r.ValueHigh = lowV, highV
		}
		r.MinKeys = min(r.MinKeys, len(keys))
		r.MaxKeys = max(r.MaxKeys, len(keys))
		r.KeyLow = min(r.KeyLow, keys[0])
		r.KeyHigh = max(r.KeyHigh, keys[len(keys)-1])
		r.ValueLow = min(r.ValueLow, lowV)
		r.ValueHigh = max(r.ValueHigh, highV)

		up, down := true, true
		for i := 1; i < len(keys); i++ {
			gap := keys[i] - keys[i-1]
			gaps = append(gaps, float64(gap))
			r.MaxGap = max(r.MaxGap, gap)
			if values[i] < values[i-1] {
				up = false
			}
			if values[i] > values[i-1] {
				down = false
			}
		}
		if up {
			r.Increasing++
		}
		if down {
			r.Decreasing++
		}
	}

	r.MeanKeys = stat.Mean(counts, nil)
	if len(gaps) > 0 {
		r.MeanGap, r.GapStd = stat.MeanStdDev(gaps, nil)
	}
	return r
}

func minMax(values []int) (int, int) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}

// ScanCatalog loads and inspects every map of the catalog (and its
// inverse) found under dir
func ScanCatalog(catalog models.Catalog, dir string, readMap func(string) (calibration.Map, error)) []Report {
	spinner, _ := pterm.DefaultSpinner.Start("Inspecting calibration maps...")

	var reports []Report
	for _, e := range catalog {
		for _, file := range []struct{ label, path string }{
			{e.Name, e.Map},
			{e.Name + " (inverse)", e.Inverse},
		} {
			if file.path == "" {
				continue
			}
			spinner.UpdateText(fmt.Sprintf("Inspecting %s...", file.label))
			cm, err := readMap(filepath.Join(dir, file.path))
			if err != nil {
				pterm.Warning.Printf("Skipping %s: %v\n", file.label, err)
				continue
			}
			reports = append(reports, Inspect(file.label, cm))
		}
	}

	spinner.Success(fmt.Sprintf("Inspected %d map(s)", len(reports)))
	return reports
}

// DisplayReports prints the inspection results in a table
func DisplayReports(reports []Report) {
	if len(reports) == 0 {
		pterm.Info.Println("No calibration maps found")
		return
	}

	tableData := pterm.TableData{
		{"Map", "Kind", "Res", "Keys/curve", "Key range", "Level range", "Max gap", "Mean gap", "Monotonic"},
	}

	for _, r := range reports {
		keys := fmt.Sprintf("%d", r.MinKeys)
		if r.MinKeys != r.MaxKeys {
			keys = fmt.Sprintf("%d-%d (%.1f)", r.MinKeys, r.MaxKeys, r.MeanKeys)
		}
		mono := pterm.FgGreen.Sprint("yes")
		if !r.Monotonic() {
			mono = pterm.FgYellow.Sprintf("%d/%d up, %d/%d down", r.Increasing, r.Curves, r.Decreasing, r.Curves)
		}
		tableData = append(tableData, []string{
			r.Name,
			string(r.Kind),
			r.Resolution.String(),
			keys,
			fmt.Sprintf("%d-%d", r.KeyLow, r.KeyHigh),
			fmt.Sprintf("%d-%d", r.ValueLow, r.ValueHigh),
			fmt.Sprintf("%d", r.MaxGap),
			fmt.Sprintf("%.1f ± %.1f", r.MeanGap, r.GapStd),
			mono,
		})
	}

	pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
}
