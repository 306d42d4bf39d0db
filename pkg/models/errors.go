package models

import "errors"

var (
	// ErrConfiguration marks an empty or malformed calibration map, an
	// unsupported transform mode, or a session used before a map is selected.
	ErrConfiguration = errors.New("configuration error")

	// ErrShapeMismatch marks a field whose resolution cannot be reconciled.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrWriteCollision marks an output path that already exists.
	ErrWriteCollision = errors.New("write collision")

	// ErrNonFinite marks a NaN or infinite cell.
	ErrNonFinite = errors.New("non-finite value")
)
