package entropy

import (
	"math"
	"math/cmplx"
)

const (
	jacobiMaxSweeps = 64
	jacobiTolerance = 1e-13
)

// hermitianEigenvalues returns the eigenvalues of an n x n Hermitian
// matrix (row-major) via cyclic complex Jacobi rotations. The input is
// modified in place. Eigenvalues are returned unsorted.
//
// No third-party dense linear algebra package is used anywhere in this
// codebase, and the reduced density matrices handled here are small, so
// a classical Jacobi sweep is sufficient and keeps the dependency
// surface flat.
func hermitianEigenvalues(a []complex128, n int) []float64 {
	for sweep := 0; sweep < jacobiMaxSweeps; sweep++ {
		var off float64
		for p := 0; p < n; p++ {
			for q := p + 1; q < n; q++ {
				off += cmplx.Abs(a[p*n+q])
			}
		}
		if off < jacobiTolerance {
			break
		}

		for p := 0; p < n; p++ {
			for q := p + 1; q < n; q++ {
				rotate(a, n, p, q)
			}
		}
	}

	eig := make([]float64, n)
	for i := 0; i < n; i++ {
		eig[i] = real(a[i*n+i])
	}
	return eig
}

// rotate zeroes a[p][q] with the unitary plane rotation
//
//	J[p][p] = c, J[q][q] = c, J[p][q] = s*e^{i phi}, J[q][p] = -s*e^{-i phi}
//
// where phi is the phase of a[p][q], applied as a <- J† a J.
func rotate(a []complex128, n, p, q int) {
	apq := a[p*n+q]
	absApq := cmplx.Abs(apq)
	if absApq < jacobiTolerance {
		return
	}

	app := real(a[p*n+p])
	aqq := real(a[q*n+q])
	phase := apq / complex(absApq, 0)

	theta := (aqq - app) / (2 * absApq)
	var t float64
	if theta >= 0 {
		t = 1 / (theta + math.Sqrt(theta*theta+1))
	} else {
		t = -1 / (-theta + math.Sqrt(theta*theta+1))
	}
	c := 1 / math.Sqrt(t*t+1)
	s := t * c

	cs := complex(c, 0)
	sp := complex(s, 0) * phase
	spc := complex(s, 0) * cmplx.Conj(phase)

	// Columns p and q of A*J.
	for k := 0; k < n; k++ {
		akp := a[k*n+p]
		akq := a[k*n+q]
		a[k*n+p] = cs*akp - spc*akq
		a[k*n+q] = sp*akp + cs*akq
	}
	// Rows p and q of J†*(A*J).
	for k := 0; k < n; k++ {
		apk := a[p*n+k]
		aqk := a[q*n+k]
		a[p*n+k] = cs*apk - sp*aqk
		a[q*n+k] = spc*apk + cs*aqk
	}
}
