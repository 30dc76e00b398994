package circuit

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/quditgo/gate"
	"github.com/hupe1980/quditgo/state"
)

// Bell returns the two-particle generalized Bell preparation over two
// d-level particles: (1/sqrt(d)) * sum_k |k,k>.
func Bell(d int) (*Circuit, error) {
	return GHZ(state.Dims{d, d})
}

// GHZ returns the generalized GHZ preparation: a DFT on particle 0
// followed by a CX fan-out to every other particle. For uniform
// dimension d this yields (1/sqrt(d)) * sum_k |k,k,...,k>.
func GHZ(dims state.Dims) (*Circuit, error) {
	if err := dims.Validate(); err != nil {
		return nil, err
	}
	if len(dims) < 2 {
		return nil, fmt.Errorf("ghz: need at least 2 particles, got %d", len(dims))
	}

	c := New(dims)
	c.Append(gate.H(dims[0]), 0)
	for i := 1; i < len(dims); i++ {
		c.Append(gate.CX(dims[0], dims[i]), 0, i)
	}
	return c, nil
}

// QFT returns the quantum Fourier transform circuit over a uniform
// register: per particle a DFT followed by controlled phases
// exp(2*pi*i/d^(m+1)) from each later particle at distance m. The
// output register carries the transform in digit-reversed order, as
// usual for the factorized circuit. Heterogeneous registers are
// rejected since the factorized QFT only exists for a single radix.
func QFT(dims state.Dims) (*Circuit, error) {
	if err := dims.Validate(); err != nil {
		return nil, err
	}
	d, ok := dims.Uniform()
	if !ok {
		return nil, fmt.Errorf("qft: register is not uniform: %v", []int(dims))
	}

	c := New(dims)
	for j := 0; j < len(dims); j++ {
		c.Append(gate.H(d), j)
		theta := 2 * math.Pi / float64(d)
		for k := j + 1; k < len(dims); k++ {
			theta /= float64(d)
			c.Append(gate.CPhase(d, d, theta), k, j)
		}
	}
	return c, nil
}

// Grover returns a Grover search circuit: a uniform superposition layer
// followed by iterations of (oracle, diffusion). The oracle flips the
// sign of every basis index in marked; the diffusion operator reflects
// about the uniform superposition. Both are materialized as full-size
// operators over the whole register, so this is intended for the small
// registers where exact simulation is feasible anyway.
func Grover(dims state.Dims, marked *roaring.Bitmap, iterations int) (*Circuit, error) {
	if err := dims.Validate(); err != nil {
		return nil, err
	}
	size := dims.Size()
	if marked == nil || marked.IsEmpty() {
		return nil, fmt.Errorf("grover: no marked states")
	}
	if int(marked.Maximum()) >= size {
		return nil, fmt.Errorf("grover: marked state %d out of range for %d basis states", marked.Maximum(), size)
	}
	if iterations < 0 {
		return nil, fmt.Errorf("grover: negative iteration count %d", iterations)
	}

	oracle, err := phaseOracle(dims, marked, size)
	if err != nil {
		return nil, err
	}
	diffusion, err := diffusionOperator(dims, size)
	if err != nil {
		return nil, err
	}

	c := New(dims)
	for i, d := range dims {
		c.Append(gate.H(d), i)
	}
	allTargets := make([]int, len(dims))
	for i := range allTargets {
		allTargets[i] = i
	}
	for it := 0; it < iterations; it++ {
		c.Append(oracle, allTargets...)
		c.Append(diffusion, allTargets...)
	}
	return c, nil
}

// OptimalGroverIterations returns floor(pi/4 * sqrt(N)), the iteration
// count that maximizes the single-marked-state success probability over
// an N-state search space.
func OptimalGroverIterations(size int) int {
	if size < 1 {
		return 0
	}
	return int(math.Floor(math.Pi / 4 * math.Sqrt(float64(size))))
}

// HardwareEfficientAnsatz returns a layered variational circuit: per
// layer a parameterized phase rotation on every particle followed by a
// nearest-neighbor CX entangling chain. thetas supplies the rotation
// angles layer by layer, len(dims) angles per layer.
func HardwareEfficientAnsatz(dims state.Dims, layers int, thetas []float64) (*Circuit, error) {
	if err := dims.Validate(); err != nil {
		return nil, err
	}
	if layers < 1 {
		return nil, fmt.Errorf("ansatz: need at least 1 layer, got %d", layers)
	}
	if want := layers * len(dims); len(thetas) != want {
		return nil, fmt.Errorf("ansatz: %d angle(s) for %d layer(s) of %d particle(s), want %d", len(thetas), layers, len(dims), want)
	}

	c := New(dims)
	for l := 0; l < layers; l++ {
		for i, d := range dims {
			c.Append(gate.Rz(d, thetas[l*len(dims)+i]), i)
		}
		for i := 0; i+1 < len(dims); i++ {
			c.Append(gate.CX(dims[i], dims[i+1]), i, i+1)
		}
	}
	return c, nil
}

// phaseOracle builds diag(+1/-1) over the full register, -1 on the
// marked indices.
func phaseOracle(dims state.Dims, marked *roaring.Bitmap, size int) (gate.Operator, error) {
	mat := make([]complex128, size*size)
	for i := 0; i < size; i++ {
		if marked.Contains(uint32(i)) {
			mat[i*size+i] = -1
		} else {
			mat[i*size+i] = 1
		}
	}
	return gate.Custom("ORACLE", []int(dims.Clone()), mat)
}

// diffusionOperator builds 2|s><s| - I where |s> is the uniform
// superposition: entries 2/N off the diagonal and 2/N - 1 on it.
func diffusionOperator(dims state.Dims, size int) (gate.Operator, error) {
	mat := make([]complex128, size*size)
	off := complex(2/float64(size), 0)
	for r := 0; r < size; r++ {
		for cc := 0; cc < size; cc++ {
			mat[r*size+cc] = off
		}
		mat[r*size+r] -= 1
	}
	return gate.Custom("DIFFUSION", []int(dims.Clone()), mat)
}
