package quditgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/quditgo/engine"
	"github.com/hupe1980/quditgo/gate"
	"github.com/hupe1980/quditgo/measure"
	"github.com/hupe1980/quditgo/state"
)

var (
	// ErrClosed is returned when an operation is attempted on a closed
	// simulator.
	ErrClosed = errors.New("simulator is closed")
)

// ErrInvalidDimension indicates a malformed dimension vector entry.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidDimension struct {
	Index     int
	Dimension int
	cause     error
}

func (e *ErrInvalidDimension) Error() string {
	return fmt.Sprintf("invalid dimension %d for particle %d", e.Dimension, e.Index)
}

func (e *ErrInvalidDimension) Unwrap() error { return e.cause }

// ErrCapacityExceeded indicates the requested state space exceeds the
// configured amplitude or memory budget.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrCapacityExceeded struct {
	Requested int
	Limit     int
	cause     error
}

func (e *ErrCapacityExceeded) Error() string {
	if e.Requested < 0 {
		return "state space size overflows the addressable range"
	}
	return fmt.Sprintf("state space of %d amplitudes exceeds capacity limit %d", e.Requested, e.Limit)
}

func (e *ErrCapacityExceeded) Unwrap() error { return e.cause }

// ErrDimensionMismatch indicates operator/target or state/state shape
// disagreement.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// ErrIndexOutOfRange indicates a target that is not a valid particle index.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrIndexOutOfRange struct {
	Target       int
	NumParticles int
	cause        error
}

func (e *ErrIndexOutOfRange) Error() string {
	return fmt.Sprintf("target %d out of range for %d particle(s)", e.Target, e.NumParticles)
}

func (e *ErrIndexOutOfRange) Unwrap() error { return e.cause }

// ErrAmplitudeOutOfRange indicates a flat basis index outside the state
// space [0, Len).
type ErrAmplitudeOutOfRange struct {
	Index int
	Len   int
}

func (e *ErrAmplitudeOutOfRange) Error() string {
	return fmt.Sprintf("basis index %d out of range [0, %d)", e.Index, e.Len)
}

// ErrUnknownOperator indicates an operator name missing from the gate
// registry.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrUnknownOperator struct {
	Name  string
	cause error
}

func (e *ErrUnknownOperator) Error() string {
	return fmt.Sprintf("unknown operator %q", e.Name)
}

func (e *ErrUnknownOperator) Unwrap() error { return e.cause }

// ErrNonUnitary indicates an operator rejected by unitarity verification.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrNonUnitary struct {
	Name  string
	cause error
}

func (e *ErrNonUnitary) Error() string {
	return fmt.Sprintf("operator %s is not unitary", e.Name)
}

func (e *ErrNonUnitary) Unwrap() error { return e.cause }

// ErrInvalidShotCount indicates a non-positive measurement shot request.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidShotCount struct {
	Shots int
	cause error
}

func (e *ErrInvalidShotCount) Error() string {
	return fmt.Sprintf("invalid shot count %d", e.Shots)
}

func (e *ErrInvalidShotCount) Unwrap() error { return e.cause }

// translateError normalizes subpackage errors into the facade taxonomy
// so callers only ever match against quditgo types.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var sid *state.ErrInvalidDimension
	if errors.As(err, &sid) {
		return &ErrInvalidDimension{Index: sid.Index, Dimension: sid.Dimension, cause: err}
	}
	var sce *state.ErrCapacityExceeded
	if errors.As(err, &sce) {
		return &ErrCapacityExceeded{Requested: sce.Requested, Limit: sce.Limit, cause: err}
	}

	var edm *engine.ErrDimensionMismatch
	if errors.As(err, &edm) {
		return &ErrDimensionMismatch{Expected: edm.Expected, Actual: edm.Actual, cause: err}
	}
	var eir *engine.ErrIndexOutOfRange
	if errors.As(err, &eir) {
		return &ErrIndexOutOfRange{Target: eir.Target, NumParticles: eir.NumParticles, cause: err}
	}
	var enu *engine.ErrNonUnitary
	if errors.As(err, &enu) {
		return &ErrNonUnitary{Name: enu.Name, cause: err}
	}

	var guo *gate.ErrUnknownOperator
	if errors.As(err, &guo) {
		return &ErrUnknownOperator{Name: guo.Name, cause: err}
	}

	var msc *measure.ErrInvalidShotCount
	if errors.As(err, &msc) {
		return &ErrInvalidShotCount{Shots: msc.Shots, cause: err}
	}

	return err
}
