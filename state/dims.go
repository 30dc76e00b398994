package state

import (
	"fmt"

	"github.com/hupe1980/quditgo/internal/mixedradix"
)

// Dims is the ordered list of per-particle local dimensions.
// Particle 0 is the most-significant digit of the flat basis index.
type Dims []int

// ErrInvalidDimension indicates a malformed dimension vector.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidDimension struct {
	Index     int
	Dimension int
	cause     error
}

func (e *ErrInvalidDimension) Error() string {
	return fmt.Sprintf("invalid dimension %d for particle %d (must be >= 2)", e.Dimension, e.Index)
}

func (e *ErrInvalidDimension) Unwrap() error { return e.cause }

// ErrCapacityExceeded indicates the requested state space exceeds the
// configured amplitude budget. It is raised before any allocation happens.
type ErrCapacityExceeded struct {
	Requested int
	Limit     int
}

func (e *ErrCapacityExceeded) Error() string {
	if e.Requested < 0 {
		return "state space size overflows the addressable range"
	}
	return fmt.Sprintf("state space of %d amplitudes exceeds capacity limit %d", e.Requested, e.Limit)
}

// Validate checks that every entry is a legal local dimension (>= 2)
// and that the joint state space size fits in an int.
func (d Dims) Validate() error {
	if len(d) == 0 {
		return &ErrInvalidDimension{Index: 0, Dimension: 0}
	}
	for i, dim := range d {
		if dim < 2 {
			return &ErrInvalidDimension{Index: i, Dimension: dim}
		}
	}
	if _, ok := mixedradix.Size(d); !ok {
		return &ErrCapacityExceeded{Requested: -1, Limit: 0}
	}
	return nil
}

// Size returns the joint state space size, the product of all entries.
// Dims must have been validated.
func (d Dims) Size() int {
	size, _ := mixedradix.Size(d)
	return size
}

// NumParticles returns the particle count.
func (d Dims) NumParticles() int { return len(d) }

// Uniform reports whether all particles share the same local dimension,
// returning that dimension when true.
func (d Dims) Uniform() (int, bool) {
	if len(d) == 0 {
		return 0, false
	}
	for _, dim := range d[1:] {
		if dim != d[0] {
			return 0, false
		}
	}
	return d[0], true
}

// Clone returns an independent copy of the dimension vector.
func (d Dims) Clone() Dims {
	out := make(Dims, len(d))
	copy(out, d)
	return out
}

// Equal reports whether two dimension vectors are identical.
func (d Dims) Equal(other Dims) bool {
	if len(d) != len(other) {
		return false
	}
	for i, dim := range d {
		if dim != other[i] {
			return false
		}
	}
	return true
}
