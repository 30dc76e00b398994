// Package gate generates unitary operators generalized to arbitrary local
// dimension d. Every constructor is a pure function from dimension(s) and
// parameters to an Operator value; the qubit gates are the d=2 special
// cases.
package gate

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Operator is a square complex matrix paired with the local dimension of
// each particle leg it acts on. Operators are transient value objects;
// the state vector never retains them.
type Operator struct {
	name string
	legs []int
	mat  []complex128 // row-major, Dim() x Dim()
}

// ErrMatrixSize indicates a custom matrix whose size does not match the
// product of its leg dimensions.
type ErrMatrixSize struct {
	Len int
	Dim int
}

func (e *ErrMatrixSize) Error() string {
	return fmt.Sprintf("operator matrix has %d entries, want %d (%d x %d)", e.Len, e.Dim*e.Dim, e.Dim, e.Dim)
}

// Name returns the operator's registry name ("H", "CX", ...), or "CUSTOM"
// for caller-supplied matrices.
func (o Operator) Name() string { return o.name }

// Legs returns a copy of the per-leg local dimensions, in target order.
func (o Operator) Legs() []int {
	legs := make([]int, len(o.legs))
	copy(legs, o.legs)
	return legs
}

// NumLegs returns the number of particle legs the operator acts on.
func (o Operator) NumLegs() int { return len(o.legs) }

// Dim returns the matrix dimension D, the product of the leg dimensions.
func (o Operator) Dim() int {
	d := 1
	for _, l := range o.legs {
		d *= l
	}
	return d
}

// At returns the matrix entry at row r, column c.
func (o Operator) At(r, c int) complex128 { return o.mat[r*o.Dim()+c] }

// Matrix exposes the raw row-major matrix. The slice aliases the
// operator's storage; it exists for the application engine.
func (o Operator) Matrix() []complex128 { return o.mat }

// IsUnitary reports whether U U† = I within tol. Intended for opt-in
// debug verification and tests; the application engine assumes unitarity.
func (o Operator) IsUnitary(tol float64) bool {
	d := o.Dim()
	for r := 0; r < d; r++ {
		for c := 0; c < d; c++ {
			var sum complex128
			for k := 0; k < d; k++ {
				sum += o.mat[r*d+k] * cmplx.Conj(o.mat[c*d+k])
			}
			want := complex128(0)
			if r == c {
				want = 1
			}
			if cmplx.Abs(sum-want) > tol {
				return false
			}
		}
	}
	return true
}

// Dagger returns the conjugate transpose U†.
func (o Operator) Dagger() Operator {
	d := o.Dim()
	mat := make([]complex128, d*d)
	for r := 0; r < d; r++ {
		for c := 0; c < d; c++ {
			mat[r*d+c] = cmplx.Conj(o.mat[c*d+r])
		}
	}
	return Operator{name: o.name + "†", legs: o.Legs(), mat: mat}
}

// omega returns the primitive d-th root of unity raised to the power k.
func omega(d, k int) complex128 {
	return cmplx.Exp(complex(0, 2*math.Pi*float64(k)/float64(d)))
}

// Identity returns the d-dimensional identity.
func Identity(d int) Operator {
	mat := make([]complex128, d*d)
	for k := 0; k < d; k++ {
		mat[k*d+k] = 1
	}
	return Operator{name: "I", legs: []int{d}, mat: mat}
}

// X returns the generalized Pauli shift |k⟩ → |(k+1) mod d⟩.
// For d=2 this is the qubit NOT gate.
func X(d int) Operator {
	mat := make([]complex128, d*d)
	for k := 0; k < d; k++ {
		mat[((k+1)%d)*d+k] = 1
	}
	return Operator{name: "X", legs: []int{d}, mat: mat}
}

// Z returns the generalized clock operator |k⟩ → ω^k |k⟩ with
// ω = e^(2πi/d). For d=2 this is the qubit phase flip.
func Z(d int) Operator {
	mat := make([]complex128, d*d)
	for k := 0; k < d; k++ {
		mat[k*d+k] = omega(d, k)
	}
	return Operator{name: "Z", legs: []int{d}, mat: mat}
}

// H returns the generalized Hadamard, the unitary discrete Fourier
// transform matrix H[j][k] = ω^(jk)/√d. For d=2 this reduces to the
// familiar two-level Hadamard.
func H(d int) Operator {
	mat := make([]complex128, d*d)
	norm := complex(1/math.Sqrt(float64(d)), 0)
	for j := 0; j < d; j++ {
		for k := 0; k < d; k++ {
			mat[j*d+k] = norm * omega(d, j*k)
		}
	}
	return Operator{name: "H", legs: []int{d}, mat: mat}
}

// Rz returns the parametric phase rotation applying e^(iθk) to basis
// level k of a single particle.
func Rz(d int, theta float64) Operator {
	mat := make([]complex128, d*d)
	for k := 0; k < d; k++ {
		mat[k*d+k] = cmplx.Exp(complex(0, theta*float64(k)))
	}
	return Operator{name: "RZ", legs: []int{d}, mat: mat}
}

// CX returns the generalized controlled shift on a control of dimension
// dc and a target of dimension dt: |c,t⟩ → |c, (t+c) mod dt⟩.
// For dc=dt=2 this is the CNOT gate. The legs may differ in dimension;
// the map stays a permutation, hence unitary.
func CX(dc, dt int) Operator {
	d := dc * dt
	mat := make([]complex128, d*d)
	for c := 0; c < dc; c++ {
		for t := 0; t < dt; t++ {
			col := c*dt + t
			row := c*dt + (t+c)%dt
			mat[row*d+col] = 1
		}
	}
	return Operator{name: "CX", legs: []int{dc, dt}, mat: mat}
}

// CPhase returns the two-particle controlled phase
// |a,b⟩ → e^(iθ·a·b) |a,b⟩. It is the entangling layer of the
// generalized Fourier transform circuit.
func CPhase(dc, dt int, theta float64) Operator {
	d := dc * dt
	mat := make([]complex128, d*d)
	for a := 0; a < dc; a++ {
		for b := 0; b < dt; b++ {
			i := a*dt + b
			mat[i*d+i] = cmplx.Exp(complex(0, theta*float64(a)*float64(b)))
		}
	}
	return Operator{name: "CPHASE", legs: []int{dc, dt}, mat: mat}
}

// Custom wraps a caller-supplied row-major matrix acting on the given
// legs. The matrix must be D x D with D the product of the legs.
// Unitarity is the caller's responsibility (see Operator.IsUnitary and
// the simulator's opt-in verification).
func Custom(name string, legs []int, mat []complex128) (Operator, error) {
	d := 1
	for _, l := range legs {
		d *= l
	}
	if len(mat) != d*d {
		return Operator{}, &ErrMatrixSize{Len: len(mat), Dim: d}
	}
	if name == "" {
		name = "CUSTOM"
	}
	legsCopy := make([]int, len(legs))
	copy(legsCopy, legs)
	return Operator{name: name, legs: legsCopy, mat: mat}, nil
}
