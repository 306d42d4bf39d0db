package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/tosih/slm-mapper/pkg/engine"
	"github.com/tosih/slm-mapper/pkg/models"
	"github.com/tosih/slm-mapper/pkg/reader"
	"github.com/tosih/slm-mapper/pkg/resample"
)

// commonFlags are accepted by every subcommand
type commonFlags struct {
	catalog string
	mapsDir string
	debug   bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.catalog, "catalog", "", "YAML map catalog (default: built-in catalog)")
	fs.StringVar(&c.mapsDir, "maps", models.DefaultMapsDir, "Directory holding the calibration maps")
	fs.BoolVar(&c.debug, "debug", false, "Verbose logging")
}

func (c *commonFlags) loadCatalog() (models.Catalog, error) {
	if c.catalog == "" {
		return models.DefaultCatalog, nil
	}
	return reader.ReadCatalog(c.catalog)
}

func (c *commonFlags) logger() *pterm.Logger {
	if c.debug {
		pterm.EnableDebugMessages()
		return pterm.DefaultLogger.WithLevel(pterm.LogLevelDebug)
	}
	return pterm.DefaultLogger.WithLevel(pterm.LogLevelInfo)
}

func (c *commonFlags) session(order int) (*engine.Session, error) {
	o, err := resample.ParseOrder(order)
	if err != nil {
		return nil, err
	}
	catalog, err := c.loadCatalog()
	if err != nil {
		return nil, err
	}
	opts := engine.DefaultOptions()
	opts.Catalog = catalog
	opts.MapsDir = c.mapsDir
	opts.Order = o
	opts.Logger = c.logger()
	return engine.NewSession(opts)
}

func usage() {
	fmt.Println("Usage: slm-mapper <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  maps      List the calibration maps in the catalog")
	fmt.Println("  inspect   Print key coverage and monotonicity of calibration maps")
	fmt.Println("  convert   Convert an angle field to device levels and save the artifact")
	fmt.Println("  verify    Simulate a saved artifact through the inverse map")
	fmt.Println("  synth     Write a synthetic map pair and catalog to try the tool")
	fmt.Println("  serve     Start the local web interface")
	fmt.Println()
	fmt.Println("Run 'slm-mapper <command> -h' for the flags of a command.")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "maps":
		err = runMaps(args)
	case "inspect":
		err = runInspect(args)
	case "convert":
		err = runConvert(args)
	case "verify":
		err = runVerify(args)
	case "synth":
		err = runSynth(args)
	case "serve":
		err = runServe(args)
	case "help", "-h", "-help", "--help":
		usage()
		return
	default:
		pterm.Error.Printf("Unknown command %q\n", cmd)
		usage()
		os.Exit(1)
	}

	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}
