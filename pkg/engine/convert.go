package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tosih/slm-mapper/pkg/calibration"
	"github.com/tosih/slm-mapper/pkg/compare"
	"github.com/tosih/slm-mapper/pkg/models"
	"github.com/tosih/slm-mapper/pkg/resample"
	"github.com/tosih/slm-mapper/pkg/transform"
	"gonum.org/v1/gonum/mat"
)

// Result is one completed conversion
type Result struct {
	ID        uuid.UUID
	CreatedAt time.Time
	Map       string
	Mode      models.TransformMode

	// Input is the resolution of the angle field that was converted;
	// Reconciled is set when it had to be resampled to the map resolution
	Input      models.Resolution
	Reconciled bool

	Angles    *mat.Dense
	Graylevel *mat.Dense
	// Device holds the device levels at the output resolution
	Device *mat.Dense

	// Range is set when graylevels fell outside [0, 255]
	Range *transform.RangeWarning

	// Verification is nil when the map has no inverse
	Verification *Verification
}

// Verification is the round trip of a device field through the inverse map
type Verification struct {
	// InputSensor is the input as the polarization camera would see it
	InputSensor *mat.Dense
	// Simulated is the inverse lookup of the device field, in graylevels
	Simulated       *mat.Dense
	SimulatedSensor *mat.Dense
	SimulatedAngles *mat.Dense
	// Difference is input angles minus simulated angles, both at the
	// output resolution
	Difference *mat.Dense
	Stats      compare.Stats
}

// Convert maps an angle field to device levels with the active map and,
// when an inverse map is available, simulates the round trip. On error
// nothing in the session changes.
func (s *Session) Convert(angles mat.Matrix) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.forward == nil {
		return nil, fmt.Errorf("%w: no calibration map selected", models.ErrConfiguration)
	}
	if shape := models.ShapeOf(angles); shape.Empty() {
		return nil, fmt.Errorf("%w: empty input field", models.ErrShapeMismatch)
	}
	if err := models.CheckFinite(angles); err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}

	start := time.Now()
	gray, err := transform.ToGraylevel(angles, s.mode)
	if err != nil {
		return nil, err
	}

	r := &Result{
		ID:        uuid.New(),
		CreatedAt: start,
		Map:       s.entry.Name,
		Mode:      s.mode,
		Input:     models.ShapeOf(angles),
		Angles:    mat.DenseCopyOf(angles),
		Graylevel: gray,
	}

	w, err := transform.CheckRange(gray)
	if err != nil {
		return nil, err
	}
	if w != nil {
		r.Range = w
		s.log.Warn("graylevels outside calibrated range", s.log.Args(
			"cells", w.Count, "of", w.Total, "min", w.Min, "max", w.Max))
	}

	pass, err := calibration.Run(gray, s.forward, s.order)
	if err != nil {
		return nil, fmt.Errorf("map lookup: %w", err)
	}
	r.Device = pass.Output
	r.Reconciled = pass.Reconciled()
	if r.Reconciled {
		s.log.Debug("input resampled to map resolution", s.log.Args(
			"from", r.Input.String(), "to", s.forward.Resolution().String(), "order", s.order.String()))
	}

	if s.inverse != nil {
		v, err := s.verify(r.Angles, gray, r.Device)
		if err != nil {
			return nil, fmt.Errorf("verification: %w", err)
		}
		r.Verification = v
	}

	s.last = r
	s.log.Info("conversion finished", s.log.Args(
		"result", r.ID.String(), "input", r.Input.String(), "elapsed", time.Since(start).Round(time.Millisecond).String()))
	return r, nil
}

// Tolerance is one graylevel step expressed in angle units
func Tolerance(mode models.TransformMode) float64 {
	t, err := transform.ToAngle(mat.NewDense(1, 1, []float64{1}), mode)
	if err != nil {
		return 0
	}
	return t.At(0, 0)
}

func (s *Session) verify(angles, gray, device *mat.Dense) (*Verification, error) {
	inputSensor, err := transform.SensorView(gray, s.mode)
	if err != nil {
		return nil, err
	}
	sim, simSensor, simAngles, err := s.simulate(device)
	if err != nil {
		return nil, err
	}

	// both sides must share a resolution before they can be compared
	reference, err := resample.Resample(angles, models.ShapeOf(simAngles), s.order)
	if err != nil {
		return nil, err
	}
	diff, err := compare.Difference(reference, simAngles)
	if err != nil {
		return nil, err
	}

	return &Verification{
		InputSensor:     inputSensor,
		Simulated:       sim,
		SimulatedSensor: simSensor,
		SimulatedAngles: simAngles,
		Difference:      diff,
		Stats:           compare.Summarize(diff, Tolerance(s.mode)),
	}, nil
}

func (s *Session) simulate(device mat.Matrix) (sim, sensor, angles *mat.Dense, err error) {
	sim, err = calibration.Lookup(device, s.inverse, s.order)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("inverse lookup: %w", err)
	}
	if sensor, err = transform.SensorView(sim, s.mode); err != nil {
		return nil, nil, nil, err
	}
	if angles, err = transform.ToAngle(sim, s.mode); err != nil {
		return nil, nil, nil, err
	}
	return sim, sensor, angles, nil
}

// Simulation is the inverse-map view of a device field
type Simulation struct {
	Graylevel *mat.Dense
	Sensor    *mat.Dense
	Angles    *mat.Dense
}

// Simulate runs a device-level field, such as a saved artifact, back
// through the active inverse map
func (s *Session) Simulate(device mat.Matrix) (*Simulation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inverse == nil {
		return nil, fmt.Errorf("%w: the selected map has no inverse", models.ErrConfiguration)
	}
	if err := models.CheckFinite(device); err != nil {
		return nil, fmt.Errorf("device field: %w", err)
	}
	sim, sensor, angles, err := s.simulate(device)
	if err != nil {
		return nil, err
	}
	return &Simulation{Graylevel: sim, Sensor: sensor, Angles: angles}, nil
}
