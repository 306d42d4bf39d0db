package reader

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tosih/slm-mapper/pkg/calibration"
	"github.com/tosih/slm-mapper/pkg/models"
)

// mapFile is the on-disk form of a calibration map
type mapFile struct {
	Kind    calibration.Kind `json:"kind"`
	Rows    int              `json:"rows"`
	Cols    int              `json:"cols"`
	Mapping map[int]int      `json:"mapping,omitempty"`
	Cells   [][]map[int]int  `json:"cells,omitempty"`
}

// ReadMap loads a calibration map. Files ending in .gz are decompressed.
func ReadMap(filename string) (calibration.Map, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(strings.ToLower(filename), ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		defer gz.Close()
		r = gz
	}

	cm, err := DecodeMap(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return cm, nil
}

// DecodeMap parses the JSON form of a calibration map
func DecodeMap(r io.Reader) (calibration.Map, error) {
	var mf mapFile
	if err := json.NewDecoder(r).Decode(&mf); err != nil {
		return nil, fmt.Errorf("%w: malformed map: %v", models.ErrConfiguration, err)
	}

	switch mf.Kind {
	case calibration.KindAveraged:
		res := models.Resolution{Rows: mf.Rows, Cols: mf.Cols}
		if res == (models.Resolution{}) {
			res = models.AveragedResolution
		}
		return calibration.NewAveraged(mf.Mapping, res)

	case calibration.KindPerPixel:
		if mf.Rows != 0 || mf.Cols != 0 {
			declared := models.Resolution{Rows: mf.Rows, Cols: mf.Cols}
			actual := models.Resolution{Rows: len(mf.Cells)}
			if len(mf.Cells) > 0 {
				actual.Cols = len(mf.Cells[0])
			}
			if declared != actual {
				return nil, fmt.Errorf("%w: per-pixel map declares %s but holds %s",
					models.ErrConfiguration, declared, actual)
			}
		}
		return calibration.NewPerPixel(mf.Cells)

	default:
		return nil, fmt.Errorf("%w: unknown map kind %q", models.ErrConfiguration, mf.Kind)
	}
}

// WriteMap stores a calibration map in the format ReadMap expects
func WriteMap(filename string, cm calibration.Map) error {
	mf := mapFile{
		Kind: cm.Kind(),
		Rows: cm.Resolution().Rows,
		Cols: cm.Resolution().Cols,
	}

	switch cm.Kind() {
	case calibration.KindAveraged:
		mf.Mapping = cm.MappingAt(0, 0).Entries()
	default:
		res := cm.Resolution()
		mf.Cells = make([][]map[int]int, res.Rows)
		for i := range mf.Cells {
			mf.Cells[i] = make([]map[int]int, res.Cols)
			for j := range mf.Cells[i] {
				mf.Cells[i][j] = cm.MappingAt(i, j).Entries()
			}
		}
	}

	f, err := os.Create(filename)
	if err != nil {
		return err
	}

	err = encodeMap(f, mf, strings.HasSuffix(strings.ToLower(filename), ".gz"))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(filename)
		return err
	}
	return nil
}

func encodeMap(w io.Writer, mf mapFile, compress bool) error {
	if !compress {
		return json.NewEncoder(w).Encode(mf)
	}
	gz := gzip.NewWriter(w)
	if err := json.NewEncoder(gz).Encode(mf); err != nil {
		gz.Close()
		return err
	}
	return gz.Close()
}
