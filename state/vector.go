// Package state holds the dense amplitude representation of a joint
// quantum state over particles of arbitrary, possibly heterogeneous,
// local dimension.
package state

import (
	"fmt"
	"math"
	"math/cmplx"
)

// DefaultMaxAmplitudes is the default hard cap on the joint state space
// size. State spaces grow multiplicatively, so construction is rejected
// up front instead of attempting a multi-gigabyte allocation.
const DefaultMaxAmplitudes = 1 << 22

// NormTolerance is the tolerance used for norm invariants.
const NormTolerance = 1e-9

// Vector is a dense complex state vector over a fixed dimension vector.
// It is exclusively owned by its creator; methods are not safe for
// concurrent mutation.
type Vector struct {
	dims Dims
	amps []complex128
}

// New allocates a state vector initialized to the zero basis state.
// maxAmplitudes caps the state space size; pass 0 for
// DefaultMaxAmplitudes, or a negative value to disable the cap.
func New(dims Dims, maxAmplitudes int) (*Vector, error) {
	if err := dims.Validate(); err != nil {
		return nil, err
	}

	size := dims.Size()
	if maxAmplitudes == 0 {
		maxAmplitudes = DefaultMaxAmplitudes
	}
	if maxAmplitudes > 0 && size > maxAmplitudes {
		return nil, &ErrCapacityExceeded{Requested: size, Limit: maxAmplitudes}
	}

	v := &Vector{
		dims: dims.Clone(),
		amps: make([]complex128, size),
	}
	v.amps[0] = 1

	return v, nil
}

// Dims returns a copy of the dimension vector.
func (v *Vector) Dims() Dims { return v.dims.Clone() }

// NumParticles returns the particle count.
func (v *Vector) NumParticles() int { return len(v.dims) }

// Len returns the number of amplitudes.
func (v *Vector) Len() int { return len(v.amps) }

// Amplitude returns the amplitude of basis state i.
// i must be in [0, Len()); this accessor exists for measurement and tests.
func (v *Vector) Amplitude(i int) complex128 { return v.amps[i] }

// SetAmplitude overwrites the amplitude of basis state i. The caller is
// responsible for restoring the norm invariant (see Normalize).
func (v *Vector) SetAmplitude(i int, a complex128) { v.amps[i] = a }

// Amplitudes exposes the raw amplitude slice. The slice aliases the
// vector's storage: it is intended for the application engine and the
// snapshot codec, not for general callers.
func (v *Vector) Amplitudes() []complex128 { return v.amps }

// Norm returns the 2-norm of the amplitude vector. It is 1 within
// NormTolerance whenever only unitary operators have been applied.
func (v *Vector) Norm() float64 {
	var sum float64
	for _, a := range v.amps {
		sum += real(a)*real(a) + imag(a)*imag(a)
	}
	return math.Sqrt(sum)
}

// Normalize rescales all amplitudes so the norm invariant holds.
// Needed only after operations without a unitarity guarantee, such as
// user-supplied custom matrices or direct SetAmplitude edits.
func (v *Vector) Normalize() {
	norm := v.Norm()
	if norm == 0 {
		return
	}
	inv := complex(1/norm, 0)
	for i := range v.amps {
		v.amps[i] *= inv
	}
}

// Reset returns the vector to the zero basis state without reallocating.
func (v *Vector) Reset() {
	clear(v.amps)
	v.amps[0] = 1
}

// Clone returns an independent deep copy.
func (v *Vector) Clone() *Vector {
	amps := make([]complex128, len(v.amps))
	copy(amps, v.amps)
	return &Vector{dims: v.dims.Clone(), amps: amps}
}

// Fidelity returns |<v|other>|^2. Both vectors must share the same
// dimension vector.
func (v *Vector) Fidelity(other *Vector) (float64, error) {
	if !v.dims.Equal(other.dims) {
		return 0, fmt.Errorf("fidelity: dimension vectors differ: %v vs %v", v.dims, other.dims)
	}
	var dot complex128
	for i, a := range v.amps {
		dot += cmplx.Conj(a) * other.amps[i]
	}
	m := cmplx.Abs(dot)
	return m * m, nil
}
