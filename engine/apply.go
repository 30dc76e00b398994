// Package engine applies unitary operators to arbitrary subsets of a
// state vector's particles via tensor contraction.
//
// The amplitude array is treated as an n-dimensional tensor with axis
// sizes given by the dimension vector; the operator is contracted against
// the axes named by the targets and all other axes pass through
// untouched. This is the general form of the qubit-only "apply a 2x2 to
// one bit" loop: targets may be non-adjacent and may have different local
// dimensions. Cost is O(N*D) per application, exact, no truncation.
package engine

import (
	"fmt"

	"github.com/hupe1980/quditgo/gate"
	"github.com/hupe1980/quditgo/internal/mixedradix"
	"github.com/hupe1980/quditgo/state"
)

// UnitarityTolerance is the tolerance for opt-in operator verification.
const UnitarityTolerance = 1e-9

// ErrIndexOutOfRange indicates a target that is not a valid particle index.
type ErrIndexOutOfRange struct {
	Target       int
	NumParticles int
}

func (e *ErrIndexOutOfRange) Error() string {
	return fmt.Sprintf("target %d out of range for %d particle(s)", e.Target, e.NumParticles)
}

// ErrDimensionMismatch indicates operator/target shape disagreement.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	What     string
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: %s: expected %d, got %d", e.What, e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// ErrNonUnitary indicates an operator that failed opt-in unitarity
// verification.
type ErrNonUnitary struct {
	Name string
}

func (e *ErrNonUnitary) Error() string {
	return fmt.Sprintf("operator %s is not unitary within tolerance %g", e.Name, UnitarityTolerance)
}

// Apply contracts op against the targeted axes of v, overwriting the
// amplitudes in place. Targets must be distinct valid particle indices
// whose dimensions match the operator legs in order.
//
// Unitarity is assumed, not verified; use ApplyVerified for the debug
// path that checks it.
func Apply(v *state.Vector, op gate.Operator, targets ...int) error {
	dims := v.Dims()
	legs := op.Legs()

	if len(targets) != len(legs) {
		return &ErrDimensionMismatch{What: "target count", Expected: len(legs), Actual: len(targets)}
	}
	for i, t := range targets {
		if t < 0 || t >= len(dims) {
			return &ErrIndexOutOfRange{Target: t, NumParticles: len(dims)}
		}
		for j := 0; j < i; j++ {
			if targets[j] == t {
				return &ErrDimensionMismatch{What: fmt.Sprintf("duplicate target %d", t), Expected: len(legs), Actual: len(targets)}
			}
		}
		if dims[t] != legs[i] {
			return &ErrDimensionMismatch{What: fmt.Sprintf("leg %d vs particle %d", i, t), Expected: dims[t], Actual: legs[i]}
		}
	}

	contract(v, op, targets, dims)
	return nil
}

// ApplyVerified is Apply with unitarity verification up front, raising
// ErrNonUnitary instead of silently corrupting the norm invariant.
func ApplyVerified(v *state.Vector, op gate.Operator, targets ...int) error {
	if !op.IsUnitary(UnitarityTolerance) {
		return &ErrNonUnitary{Name: op.Name()}
	}
	return Apply(v, op, targets...)
}

func contract(v *state.Vector, op gate.Operator, targets []int, dims state.Dims) {
	n := len(dims)
	d := op.Dim()
	strides := mixedradix.Strides(dims)

	// Flat-index offset of every target-digit combination, ordered the
	// way the operator orders its legs.
	legs := op.Legs()
	offsets := make([]int, d)
	digits := make([]int, len(targets))
	for k := 0; k < d; k++ {
		mixedradix.Decode(k, legs, digits)
		off := 0
		for i, dg := range digits {
			off += dg * strides[targets[i]]
		}
		offsets[k] = off
	}

	// The untouched axes form an odometer; base walks their flat offsets.
	isTarget := make([]bool, n)
	for _, t := range targets {
		isTarget[t] = true
	}
	var restDims, restStrides []int
	for i := 0; i < n; i++ {
		if !isTarget[i] {
			restDims = append(restDims, dims[i])
			restStrides = append(restStrides, strides[i])
		}
	}

	amps := v.Amplitudes()
	mat := op.Matrix()
	in := make([]complex128, d)
	restDigits := make([]int, len(restDims))
	blocks := len(amps) / d

	base := 0
	for b := 0; b < blocks; b++ {
		for k := 0; k < d; k++ {
			in[k] = amps[base+offsets[k]]
		}
		for r := 0; r < d; r++ {
			row := mat[r*d : (r+1)*d]
			var sum complex128
			for k := 0; k < d; k++ {
				sum += row[k] * in[k]
			}
			amps[base+offsets[r]] = sum
		}

		for i := len(restDims) - 1; i >= 0; i-- {
			restDigits[i]++
			base += restStrides[i]
			if restDigits[i] < restDims[i] {
				break
			}
			base -= restDigits[i] * restStrides[i]
			restDigits[i] = 0
		}
	}
}
