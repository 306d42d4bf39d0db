package export

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tosih/slm-mapper/pkg/models"
	"github.com/tosih/slm-mapper/pkg/resample"
	"gonum.org/v1/gonum/mat"
)

// HeaderLabel is the corner cell of an Output Artifact
const HeaderLabel = "Y/X"

// Policy decides what happens when the output path already exists
type Policy int

const (
	// Refuse leaves the existing file alone and reports a CollisionError
	Refuse Policy = iota
	// AutoSuffix writes to the first free name_1.ext, name_2.ext, ...
	AutoSuffix
)

// CollisionError reports an output path that already exists
type CollisionError struct {
	Path string
	// Next is the first free suffixed path at the time of the check
	Next string
}

func (e *CollisionError) Error() string {
	if e.Next == "" {
		return fmt.Sprintf("%s already exists", e.Path)
	}
	return fmt.Sprintf("%s already exists (next free name: %s)", e.Path, e.Next)
}

func (e *CollisionError) Unwrap() error {
	return models.ErrWriteCollision
}

// EnsureCSVExt appends .csv to output names that lack it
func EnsureCSVExt(name string) string {
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		return name
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".csv"
}

// NextFree returns the first base_N.ext (N >= 1) that does not exist
func NextFree(path string) (string, error) {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", base, i, ext)
		_, err := os.Stat(candidate)
		if errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
	}
}

// create opens path for writing without ever replacing an existing file
func create(path string, policy Policy) (*os.File, string, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, "", err
		}
	}

	target := path
	for {
		f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			return f, target, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", err
		}

		next, nerr := NextFree(path)
		if nerr != nil {
			return nil, "", nerr
		}
		if policy != AutoSuffix {
			return nil, "", &CollisionError{Path: path, Next: next}
		}
		target = next
	}
}

// SaveCSV writes field as an Output Artifact and returns the path written.
// An existing file is never overwritten.
func SaveCSV(field mat.Matrix, path string, policy Policy) (string, error) {
	f, target, err := create(path, policy)
	if err != nil {
		return "", err
	}

	w := bufio.NewWriter(f)
	err = WriteCSV(w, field)
	if err == nil {
		err = w.Flush()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(target)
		return "", err
	}
	return target, nil
}

// WriteCSV writes the Output Artifact table: a header row of column
// indices, then one row per output row led by its row index. The field is
// resampled (order 1) to the output resolution first when needed, and
// every value is truncated to an integer.
func WriteCSV(w io.Writer, field mat.Matrix) error {
	out, err := resample.Resample(field, models.OutputResolution, resample.Linear)
	if err != nil {
		return err
	}
	rows, cols := out.Dims()

	writer := csv.NewWriter(w)

	// the label sits in the slot of column index -1
	header := make([]string, 0, cols+1)
	header = append(header, HeaderLabel)
	for j := 0; j < cols; j++ {
		header = append(header, strconv.Itoa(j))
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	record := make([]string, cols+1)
	for i := 0; i < rows; i++ {
		record[0] = strconv.Itoa(i)
		for j := 0; j < cols; j++ {
			record[j+1] = strconv.FormatInt(int64(math.Trunc(out.At(i, j))), 10)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// ReadArtifact parses an Output Artifact back into a device-level field
func ReadArtifact(r io.Reader) (*mat.Dense, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read artifact header: %w", err)
	}
	if len(header) < 2 || header[0] != HeaderLabel {
		return nil, fmt.Errorf("invalid artifact: couldn't find %q header", HeaderLabel)
	}
	cols := len(header) - 1

	var data []float64
	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if errors.Is(err, csv.ErrFieldCount) {
				return nil, fmt.Errorf("%w: %v", models.ErrShapeMismatch, err)
			}
			return nil, err
		}
		if idx, err := strconv.Atoi(record[0]); err != nil || idx != rows {
			return nil, fmt.Errorf("invalid artifact: row %d labelled %q", rows, record[0])
		}
		for _, cell := range record[1:] {
			v, err := strconv.ParseInt(cell, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", rows, err)
			}
			data = append(data, float64(v))
		}
		rows++
	}

	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("%w: artifact holds no rows", models.ErrShapeMismatch)
	}
	return mat.NewDense(rows, cols, data), nil
}
