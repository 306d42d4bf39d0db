package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/tosih/slm-mapper/pkg/calibration"
	"github.com/tosih/slm-mapper/pkg/compare"
	"github.com/tosih/slm-mapper/pkg/engine"
	"github.com/tosih/slm-mapper/pkg/export"
	"github.com/tosih/slm-mapper/pkg/models"
	"github.com/tosih/slm-mapper/pkg/prompt"
	"github.com/tosih/slm-mapper/pkg/reader"
	"github.com/tosih/slm-mapper/pkg/renderer"
	"github.com/tosih/slm-mapper/pkg/scanner"
	"github.com/tosih/slm-mapper/pkg/web"
)

func runMaps(args []string) error {
	var common commonFlags
	fs := flag.NewFlagSet("maps", flag.ExitOnError)
	common.register(fs)
	fs.Parse(args)

	catalog, err := common.loadCatalog()
	if err != nil {
		return err
	}
	renderer.ListMaps(catalog, "")
	return nil
}

func runInspect(args []string) error {
	var common commonFlags
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	common.register(fs)
	name := fs.String("map", "", "Map to inspect (default: every map in the catalog)")
	fs.Parse(args)

	if *name == "" {
		catalog, err := common.loadCatalog()
		if err != nil {
			return err
		}
		scanner.DisplayReports(scanner.ScanCatalog(catalog, common.mapsDir, reader.ReadMap))
		return nil
	}

	session, err := common.session(1)
	if err != nil {
		return err
	}
	if err := selectMap(session, *name); err != nil {
		return err
	}

	entry, _, _ := session.Selected()
	fwd, inv := session.Maps()
	reports := []scanner.Report{scanner.Inspect(entry.Name, fwd)}
	if inv != nil {
		reports = append(reports, scanner.Inspect(entry.Name+" (inverse)", inv))
	}
	scanner.DisplayReports(reports)
	return nil
}

func selectMap(session *engine.Session, name string) error {
	spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Loading map %q...", name))
	if err := session.SelectMap(name); err != nil {
		spinner.Fail("Could not load map")
		return err
	}
	entry, mode, _ := session.Selected()
	spinner.Success(fmt.Sprintf("Loaded %s (%s)", entry.Name, mode))
	return nil
}

// outputPath puts bare file names into dir
func outputPath(name, dir string) string {
	if filepath.Base(name) == name {
		return filepath.Join(dir, name)
	}
	return name
}

func runConvert(args []string) error {
	var common commonFlags
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	common.register(fs)
	name := fs.String("map", "", "Calibration map to use")
	in := fs.String("in", "", "Angle field (.csv, .txt or .npy)")
	out := fs.String("out", "", "Output artifact name (not saved when empty)")
	outDir := fs.String("outdir", models.DefaultOutputsDir, "Directory for bare output names")
	autoSuffix := fs.Bool("auto-suffix", false, "Save under the next free name instead of refusing an existing file")
	order := fs.Int("order", 1, "Resampling order: 0 nearest, 1 linear")
	tiffOut := fs.String("tiff", "", "Also write the device levels as a 16-bit TIFF")
	show := fs.String("show", renderer.ModeHeatmap, "Display: heatmap, symbols, values or none")
	fs.Parse(args)

	if *in == "" {
		fmt.Println("Usage: slm-mapper convert -map <name> -in <file> [-out <name>] [-auto-suffix] [-order 0|1] [-tiff <file>] [-show heatmap|symbols|values|none]")
		return fmt.Errorf("%w: -in is required", models.ErrConfiguration)
	}
	if *show != "none" && !renderer.ValidMode(*show) {
		return fmt.Errorf("%w: unknown display %q", models.ErrConfiguration, *show)
	}

	session, err := common.session(*order)
	if err != nil {
		return err
	}
	if *name == "" {
		if !prompt.Interactive() {
			return fmt.Errorf("%w: -map is required", models.ErrConfiguration)
		}
		if *name, err = prompt.ChooseMap(session.Catalog()); err != nil {
			return err
		}
	}
	if err := selectMap(session, *name); err != nil {
		return err
	}

	angles, err := reader.ReadField(*in)
	if err != nil {
		return fmt.Errorf("read %s: %w", *in, err)
	}
	pterm.Info.Printf("Read %s angle field from %s\n", models.ShapeOf(angles), *in)

	spinner, _ := pterm.DefaultSpinner.Start("Converting...")
	result, err := session.Convert(angles)
	if err != nil {
		spinner.Fail("Conversion failed")
		return err
	}
	spinner.Success(fmt.Sprintf("Converted to %s device levels", models.ShapeOf(result.Device)))

	if result.Range != nil {
		pterm.Warning.Println(result.Range.String())
	}
	if result.Reconciled {
		pterm.Info.Printf("Input was resampled to the map resolution (order %d)\n", *order)
	}

	if *show != "none" {
		renderer.RenderAuto("Device levels", result.Device, *show, "")
		if v := result.Verification; v != nil {
			renderer.RenderAuto("Simulated sensor view", v.SimulatedSensor, *show, "gray")
		}
	}
	if v := result.Verification; v != nil {
		compare.Display("Round trip (input - simulated)", v.Difference, v.Stats, "rad")
	} else {
		pterm.Info.Println("No inverse map for this entry, verification skipped")
	}

	policy := export.Refuse
	if *autoSuffix {
		policy = export.AutoSuffix
	}
	if *out != "" {
		path := outputPath(export.EnsureCSVExt(*out), *outDir)
		written, err := session.SaveResult(result.ID, path, policy)
		if err != nil && prompt.Interactive() && prompt.ConfirmSuffix(err) {
			written, err = session.SaveResult(result.ID, path, export.AutoSuffix)
		}
		if err != nil {
			return err
		}
		pterm.Success.Printf("Saved %s\n", written)
	}
	if *tiffOut != "" {
		written, err := export.SaveTIFF(result.Device, outputPath(*tiffOut, *outDir), policy)
		if err != nil {
			return err
		}
		pterm.Success.Printf("Saved %s\n", written)
	}
	return nil
}

func runVerify(args []string) error {
	var common commonFlags
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	common.register(fs)
	name := fs.String("map", "", "Calibration map the artifact was made with")
	artifact := fs.String("artifact", "", "Saved output artifact (.csv)")
	order := fs.Int("order", 1, "Resampling order: 0 nearest, 1 linear")
	show := fs.String("show", renderer.ModeHeatmap, "Display: heatmap, symbols or values")
	fs.Parse(args)

	if *name == "" || *artifact == "" {
		fmt.Println("Usage: slm-mapper verify -map <name> -artifact <file>")
		return fmt.Errorf("%w: -map and -artifact are required", models.ErrConfiguration)
	}
	if !renderer.ValidMode(*show) {
		return fmt.Errorf("%w: unknown display %q", models.ErrConfiguration, *show)
	}

	session, err := common.session(*order)
	if err != nil {
		return err
	}
	if err := selectMap(session, *name); err != nil {
		return err
	}

	f, err := os.Open(*artifact)
	if err != nil {
		return err
	}
	defer f.Close()
	device, err := export.ReadArtifact(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", *artifact, err)
	}

	sim, err := session.Simulate(device)
	if err != nil {
		return err
	}
	renderer.RenderAuto("Artifact device levels", device, *show, "")
	renderer.RenderAuto("Simulated sensor view", sim.Sensor, *show, "gray")
	renderer.RenderAuto("Simulated angles", sim.Angles, *show, "rad")
	return nil
}

func runSynth(args []string) error {
	fs := flag.NewFlagSet("synth", flag.ExitOnError)
	out := fs.String("out", models.DefaultMapsDir, "Directory to write the maps and catalog into")
	cells := fs.Int("cells", 8, "Rows and columns of the per-pixel map")
	fs.Parse(args)

	if *cells <= 0 {
		return fmt.Errorf("%w: -cells must be positive", models.ErrConfiguration)
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}

	avg, avgInv, err := calibration.SyntheticPair(models.MaxDeviceLevel, models.Resolution{})
	if err != nil {
		return err
	}
	pp, ppInv, err := calibration.SyntheticPair(models.MaxDeviceLevel, models.Resolution{Rows: *cells, Cols: *cells})
	if err != nil {
		return err
	}

	files := []struct {
		name string
		cm   calibration.Map
	}{
		{"synthetic_avg.json", avg},
		{"synthetic_avg_inv.json", avgInv},
		{"synthetic_pixel.json.gz", pp},
		{"synthetic_pixel_inv.json.gz", ppInv},
	}
	for _, f := range files {
		if err := reader.WriteMap(filepath.Join(*out, f.name), f.cm); err != nil {
			return err
		}
		pterm.Success.Printf("Wrote %s\n", filepath.Join(*out, f.name))
	}

	catalog := models.Catalog{
		{Name: "synthetic average", Mode: "2pi", Map: "synthetic_avg.json", Inverse: "synthetic_avg_inv.json", Description: "linear ramp"},
		{Name: "synthetic pixel-by-pixel", Mode: "2pi", Map: "synthetic_pixel.json.gz", Inverse: "synthetic_pixel_inv.json.gz", Description: "offset ramps per cell"},
	}
	catalogPath := filepath.Join(*out, "catalog.yaml")
	if err := reader.WriteCatalog(catalogPath, catalog); err != nil {
		return err
	}
	pterm.Success.Printf("Wrote %s\n", catalogPath)
	pterm.Info.Printf("Try: slm-mapper maps -catalog %s -maps %s\n", catalogPath, *out)
	return nil
}

func runServe(args []string) error {
	var common commonFlags
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	common.register(fs)
	port := fs.Int("port", 8080, "Port to listen on")
	order := fs.Int("order", 1, "Resampling order: 0 nearest, 1 linear")
	outDir := fs.String("outdir", models.DefaultOutputsDir, "Directory for saved artifacts")
	name := fs.String("map", "", "Map to select at start")
	openBrowser := fs.Bool("open", true, "Open the page in a browser")
	fs.Parse(args)

	session, err := common.session(*order)
	if err != nil {
		return err
	}
	if *name != "" {
		if err := selectMap(session, *name); err != nil {
			return err
		}
	}
	return web.NewServer(session, *outDir, *port).Start(*openBrowser)
}
