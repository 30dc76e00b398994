// Package entropy computes the von Neumann entanglement entropy of a
// pure state across a bipartition of its particles.
//
// The amplitudes are reshaped into a matrix M indexed by (subsystem,
// complement) digits; the reduced density matrix rho = M M† is
// diagonalized and the entropy is -sum(lambda * log2(lambda)) over its
// eigenvalues. Since both reduced density matrices of a pure state
// share a spectrum, the smaller subsystem is always the one
// diagonalized.
package entropy

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/hupe1980/quditgo/internal/mixedradix"
	"github.com/hupe1980/quditgo/state"
)

// eigenvalueFloor discards numerically zero eigenvalues before the
// log2 call.
const eigenvalueFloor = 1e-12

// Bipartite returns the von Neumann entropy, in bits, of the subsystem
// formed by the given particle indices. An empty or full partition has
// entropy zero for a pure state. Partition indices must be distinct and
// in range.
func Bipartite(v *state.Vector, partition []int) (float64, error) {
	dims := v.Dims()
	n := len(dims)

	inA := make([]bool, n)
	for _, p := range partition {
		if p < 0 || p >= n {
			return 0, fmt.Errorf("entropy: particle %d out of range for %d particle(s)", p, n)
		}
		if inA[p] {
			return 0, fmt.Errorf("entropy: duplicate particle %d in partition", p)
		}
		inA[p] = true
	}
	if len(partition) == 0 || len(partition) == n {
		return 0, nil
	}

	var dimsA, dimsB state.Dims
	for i := 0; i < n; i++ {
		if inA[i] {
			dimsA = append(dimsA, dims[i])
		} else {
			dimsB = append(dimsB, dims[i])
		}
	}
	sizeA := dimsA.Size()
	sizeB := dimsB.Size()

	// Reshape amplitudes into M[a][b].
	m := make([]complex128, sizeA*sizeB)
	digits := make([]int, n)
	digitsA := make([]int, len(dimsA))
	digitsB := make([]int, len(dimsB))
	for i := 0; i < v.Len(); i++ {
		mixedradix.Decode(i, dims, digits)
		ka, kb := 0, 0
		for j := 0; j < n; j++ {
			if inA[j] {
				digitsA[ka] = digits[j]
				ka++
			} else {
				digitsB[kb] = digits[j]
				kb++
			}
		}
		a := mixedradix.Encode(digitsA, dimsA)
		b := mixedradix.Encode(digitsB, dimsB)
		m[a*sizeB+b] = v.Amplitude(i)
	}

	// Diagonalize the smaller reduced density matrix.
	var rho []complex128
	var dim int
	if sizeA <= sizeB {
		dim = sizeA
		rho = make([]complex128, dim*dim)
		for r := 0; r < dim; r++ {
			for c := r; c < dim; c++ {
				var sum complex128
				for b := 0; b < sizeB; b++ {
					sum += m[r*sizeB+b] * cmplx.Conj(m[c*sizeB+b])
				}
				rho[r*dim+c] = sum
				rho[c*dim+r] = cmplx.Conj(sum)
			}
		}
	} else {
		dim = sizeB
		rho = make([]complex128, dim*dim)
		for r := 0; r < dim; r++ {
			for c := r; c < dim; c++ {
				var sum complex128
				for a := 0; a < sizeA; a++ {
					sum += m[a*sizeB+r] * cmplx.Conj(m[a*sizeB+c])
				}
				rho[r*dim+c] = sum
				rho[c*dim+r] = cmplx.Conj(sum)
			}
		}
	}

	var s float64
	for _, lambda := range hermitianEigenvalues(rho, dim) {
		if lambda > eigenvalueFloor {
			s -= lambda * math.Log2(lambda)
		}
	}
	// Clamp the tiny negative values that cancellation can leave behind.
	if s < 0 {
		s = 0
	}
	return s, nil
}
