package entropy

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/quditgo/engine"
	"github.com/hupe1980/quditgo/gate"
	"github.com/hupe1980/quditgo/state"
)

const tol = 1e-9

func bellState(t *testing.T, d int) *state.Vector {
	t.Helper()
	v, err := state.New(state.Dims{d, d}, 0)
	require.NoError(t, err)
	require.NoError(t, engine.Apply(v, gate.H(d), 0))
	require.NoError(t, engine.Apply(v, gate.CX(d, d), 0, 1))
	return v
}

func TestBipartiteProductState(t *testing.T) {
	v, err := state.New(state.Dims{3, 2, 5}, 0)
	require.NoError(t, err)
	require.NoError(t, engine.Apply(v, gate.H(3), 0))
	require.NoError(t, engine.Apply(v, gate.H(2), 1))
	require.NoError(t, engine.Apply(v, gate.H(5), 2))

	for _, partition := range [][]int{{0}, {1}, {2}, {0, 1}, {0, 2}} {
		s, err := Bipartite(v, partition)
		require.NoError(t, err)
		assert.InDelta(t, 0, s, 1e-7, "partition %v", partition)
	}
}

func TestBipartiteMaximallyEntangled(t *testing.T) {
	for _, d := range []int{2, 3, 5} {
		s, err := Bipartite(bellState(t, d), []int{0})
		require.NoError(t, err)
		assert.InDelta(t, math.Log2(float64(d)), s, 1e-7, "d=%d", d)
	}
}

func TestBipartitePartialEntanglement(t *testing.T) {
	// cos(a)|00> + sin(a)|11> has binary entropy of sin^2(a).
	v, err := state.New(state.Dims{2, 2}, 0)
	require.NoError(t, err)
	p := 0.8
	v.SetAmplitude(0, complex(math.Sqrt(p), 0))
	v.SetAmplitude(3, complex(math.Sqrt(1-p), 0))

	want := -p*math.Log2(p) - (1-p)*math.Log2(1-p)
	s, err := Bipartite(v, []int{1})
	require.NoError(t, err)
	assert.InDelta(t, want, s, 1e-7)
}

func TestBipartiteGHZ(t *testing.T) {
	v, err := state.New(state.Dims{2, 2, 2}, 0)
	require.NoError(t, err)
	require.NoError(t, engine.Apply(v, gate.H(2), 0))
	require.NoError(t, engine.Apply(v, gate.CX(2, 2), 0, 1))
	require.NoError(t, engine.Apply(v, gate.CX(2, 2), 0, 2))

	// Any bipartition of a GHZ state carries exactly one bit.
	for _, partition := range [][]int{{0}, {1}, {2}, {0, 1}, {1, 2}, {0, 2}} {
		s, err := Bipartite(v, partition)
		require.NoError(t, err)
		assert.InDelta(t, 1, s, 1e-7, "partition %v", partition)
	}
}

func TestBipartiteHeterogeneous(t *testing.T) {
	// A qutrit entangled with a qubit: Schmidt rank is capped at 2, so
	// the entropy is one bit regardless of the larger local dimension.
	v, err := state.New(state.Dims{3, 2}, 0)
	require.NoError(t, err)
	require.NoError(t, engine.Apply(v, gate.H(2), 1))
	require.NoError(t, engine.Apply(v, gate.CX(2, 3), 1, 0))

	s, err := Bipartite(v, []int{0})
	require.NoError(t, err)
	assert.InDelta(t, 1, s, 1e-7)
}

func TestBipartiteTrivialPartitions(t *testing.T) {
	v := bellState(t, 2)

	s, err := Bipartite(v, nil)
	require.NoError(t, err)
	assert.Zero(t, s)

	s, err = Bipartite(v, []int{0, 1})
	require.NoError(t, err)
	assert.Zero(t, s)
}

func TestBipartiteErrors(t *testing.T) {
	v := bellState(t, 2)

	_, err := Bipartite(v, []int{2})
	require.Error(t, err)

	_, err = Bipartite(v, []int{-1})
	require.Error(t, err)

	_, err = Bipartite(v, []int{0, 0})
	require.Error(t, err)
}

func TestHermitianEigenvalues(t *testing.T) {
	t.Run("Diagonal", func(t *testing.T) {
		a := []complex128{3, 0, 0, 7}
		eig := hermitianEigenvalues(a, 2)
		assert.ElementsMatch(t, []float64{3, 7}, eig)
	})

	t.Run("RealSymmetric", func(t *testing.T) {
		// [[2,1],[1,2]] has eigenvalues 1 and 3.
		a := []complex128{2, 1, 1, 2}
		eig := hermitianEigenvalues(a, 2)
		assertSpectrum(t, []float64{1, 3}, eig)
	})

	t.Run("ComplexHermitian", func(t *testing.T) {
		// [[1,-i],[i,1]] has eigenvalues 0 and 2.
		a := []complex128{1, complex(0, -1), complex(0, 1), 1}
		eig := hermitianEigenvalues(a, 2)
		assertSpectrum(t, []float64{0, 2}, eig)
	})

	t.Run("ThreeByThree", func(t *testing.T) {
		// Projector onto (|0>+|1>+|2>)/sqrt(3): eigenvalues {1, 0, 0},
		// trace 1.
		third := complex(1.0/3, 0)
		a := []complex128{
			third, third, third,
			third, third, third,
			third, third, third,
		}
		eig := hermitianEigenvalues(a, 3)
		assertSpectrum(t, []float64{0, 0, 1}, eig)
	})
}

func assertSpectrum(t *testing.T, want, got []float64) {
	t.Helper()
	require.Len(t, got, len(want))
	sort.Float64s(want)
	sort.Float64s(got)
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-9)
	}
}
