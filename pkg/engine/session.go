// Package engine runs conversions for one operator session: a selected
// calibration map pair, its transform mode, and the last computed result.
package engine

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"github.com/tosih/slm-mapper/pkg/calibration"
	"github.com/tosih/slm-mapper/pkg/export"
	"github.com/tosih/slm-mapper/pkg/models"
	"github.com/tosih/slm-mapper/pkg/reader"
	"github.com/tosih/slm-mapper/pkg/resample"
)

// ErrStaleResult is returned when saving a result that is no longer the
// session's latest
var ErrStaleResult = errors.New("stale result")

// Loader reads a calibration map from a path
type Loader func(path string) (calibration.Map, error)

// Options configures a Session. Empty fields fall back to the predefined
// catalog, the default maps directory and the JSON map reader. The zero
// Order is nearest neighbour; DefaultOptions selects linear.
type Options struct {
	Catalog models.Catalog
	MapsDir string
	Order   resample.Order
	Loader  Loader
	Logger  *pterm.Logger
}

// DefaultOptions returns the options used by the command line tools
func DefaultOptions() Options {
	return Options{
		Catalog: models.DefaultCatalog,
		MapsDir: models.DefaultMapsDir,
		Order:   resample.Linear,
	}
}

// Session holds the state shared by select, convert and save. All methods
// are serialized, so one session may back concurrent requests.
type Session struct {
	mu sync.Mutex

	catalog models.Catalog
	mapsDir string
	order   resample.Order
	load    Loader
	log     *pterm.Logger

	entry   *models.CatalogEntry
	mode    models.TransformMode
	forward calibration.Map
	inverse calibration.Map
	last    *Result
}

// NewSession creates a session with no map selected
func NewSession(opts Options) (*Session, error) {
	if !opts.Order.Valid() {
		return nil, fmt.Errorf("%w: unsupported interpolation order %d", models.ErrConfiguration, int(opts.Order))
	}
	s := &Session{
		catalog: opts.Catalog,
		mapsDir: opts.MapsDir,
		order:   opts.Order,
		load:    opts.Loader,
		log:     opts.Logger,
	}
	if s.catalog == nil {
		s.catalog = models.DefaultCatalog
	}
	if s.mapsDir == "" {
		s.mapsDir = models.DefaultMapsDir
	}
	if s.load == nil {
		s.load = reader.ReadMap
	}
	if s.log == nil {
		s.log = pterm.DefaultLogger.WithLevel(pterm.LogLevelInfo)
	}
	return s, nil
}

// Catalog returns the selectable maps
func (s *Session) Catalog() models.Catalog {
	return s.catalog
}

// Order returns the interpolation order used for every resample
func (s *Session) Order() resample.Order {
	return s.order
}

// Selected returns the active catalog entry and mode, if any
func (s *Session) Selected() (models.CatalogEntry, models.TransformMode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entry == nil {
		return models.CatalogEntry{}, 0, false
	}
	return *s.entry, s.mode, true
}

// Maps returns the active map and its inverse (nil when none is declared)
func (s *Session) Maps() (calibration.Map, calibration.Map) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forward, s.inverse
}

func (s *Session) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.mapsDir, path)
}

// SelectMap loads the named map and its inverse and makes them active.
// On any error the previous selection stays in place.
func (s *Session) SelectMap(name string) error {
	entry, ok := s.catalog.Find(name)
	if !ok {
		return fmt.Errorf("%w: unknown map %q", models.ErrConfiguration, name)
	}
	mode, err := models.ParseMode(entry.Mode)
	if err != nil {
		return fmt.Errorf("map %q: %w", entry.Name, err)
	}

	forward, err := s.load(s.resolve(entry.Map))
	if err != nil {
		return fmt.Errorf("load map %q: %w", entry.Name, err)
	}
	var inverse calibration.Map
	if entry.Inverse != "" {
		inverse, err = s.load(s.resolve(entry.Inverse))
		if err != nil {
			return fmt.Errorf("load inverse map %q: %w", entry.Name, err)
		}
	}

	s.install(entry, mode, forward, inverse)
	return nil
}

// Use activates maps that were loaded elsewhere
func (s *Session) Use(entry models.CatalogEntry, forward, inverse calibration.Map) error {
	if forward == nil {
		return fmt.Errorf("%w: no calibration map", models.ErrConfiguration)
	}
	mode, err := models.ParseMode(entry.Mode)
	if err != nil {
		return err
	}
	s.install(entry, mode, forward, inverse)
	return nil
}

func (s *Session) install(entry models.CatalogEntry, mode models.TransformMode, forward, inverse calibration.Map) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entry = &entry
	s.mode = mode
	s.forward = forward
	s.inverse = inverse

	args := []any{"name", entry.Name, "mode", mode.String(), "kind", string(forward.Kind()), "resolution", forward.Resolution().String()}
	if inverse != nil {
		args = append(args, "inverse", inverse.Resolution().String())
	}
	s.log.Info("calibration map selected", s.log.Args(args...))
}

// Last returns the most recent result, or nil
func (s *Session) Last() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Save writes the latest result as an Output Artifact
func (s *Session) Save(path string, policy export.Policy) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last == nil {
		return "", fmt.Errorf("%w: nothing to save, run a conversion first", models.ErrConfiguration)
	}
	return s.save(s.last, path, policy)
}

// SaveResult writes the result with the given id, provided it is still the
// latest one
func (s *Session) SaveResult(id uuid.UUID, path string, policy export.Policy) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last == nil || s.last.ID != id {
		return "", fmt.Errorf("%w: result %s", ErrStaleResult, id)
	}
	return s.save(s.last, path, policy)
}

func (s *Session) save(r *Result, path string, policy export.Policy) (string, error) {
	written, err := export.SaveCSV(r.Device, path, policy)
	if err != nil {
		if errors.Is(err, models.ErrWriteCollision) {
			s.log.Warn("output exists, not overwritten", s.log.Args("path", path))
		}
		return "", err
	}
	s.log.Info("output saved", s.log.Args("path", written, "result", r.ID.String()))
	return written, nil
}
