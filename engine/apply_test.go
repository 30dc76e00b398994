package engine

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/quditgo/gate"
	"github.com/hupe1980/quditgo/state"
)

const tol = 1e-9

func newVector(t *testing.T, dims state.Dims) *state.Vector {
	t.Helper()
	v, err := state.New(dims, 0)
	require.NoError(t, err)
	return v
}

func TestApplySingleTarget(t *testing.T) {
	t.Run("HadamardOnFirstQubit", func(t *testing.T) {
		v := newVector(t, state.Dims{2, 2})
		require.NoError(t, Apply(v, gate.H(2), 0))

		s := 1 / math.Sqrt2
		assert.InDelta(t, s, real(v.Amplitude(0)), tol) // |00⟩
		assert.InDelta(t, s, real(v.Amplitude(2)), tol) // |10⟩
		assert.InDelta(t, 0, cmplx.Abs(v.Amplitude(1)), tol)
		assert.InDelta(t, 0, cmplx.Abs(v.Amplitude(3)), tol)
	})

	t.Run("HadamardOnSecondQubit", func(t *testing.T) {
		v := newVector(t, state.Dims{2, 2})
		require.NoError(t, Apply(v, gate.H(2), 1))

		s := 1 / math.Sqrt2
		assert.InDelta(t, s, real(v.Amplitude(0)), tol) // |00⟩
		assert.InDelta(t, s, real(v.Amplitude(1)), tol) // |01⟩
	})

	t.Run("ShiftOnQutrit", func(t *testing.T) {
		v := newVector(t, state.Dims{3})
		require.NoError(t, Apply(v, gate.X(3), 0))
		assert.InDelta(t, 1, real(v.Amplitude(1)), tol)

		require.NoError(t, Apply(v, gate.X(3), 0))
		assert.InDelta(t, 1, real(v.Amplitude(2)), tol)

		// Third shift wraps back to |0⟩.
		require.NoError(t, Apply(v, gate.X(3), 0))
		assert.InDelta(t, 1, real(v.Amplitude(0)), tol)
	})

	t.Run("ShiftOnMiddleParticle", func(t *testing.T) {
		v := newVector(t, state.Dims{2, 3, 2})
		require.NoError(t, Apply(v, gate.X(3), 1))
		// |0,1,0⟩ has flat index 1*2 = 2.
		assert.InDelta(t, 1, real(v.Amplitude(2)), tol)
	})
}

func TestApplyTwoTargets(t *testing.T) {
	t.Run("BellPair", func(t *testing.T) {
		v := newVector(t, state.Dims{2, 2})
		require.NoError(t, Apply(v, gate.H(2), 0))
		require.NoError(t, Apply(v, gate.CX(2, 2), 0, 1))

		s := 1 / math.Sqrt2
		assert.InDelta(t, s, real(v.Amplitude(0)), tol) // |00⟩
		assert.InDelta(t, s, real(v.Amplitude(3)), tol) // |11⟩
		assert.InDelta(t, 0, cmplx.Abs(v.Amplitude(1)), tol)
		assert.InDelta(t, 0, cmplx.Abs(v.Amplitude(2)), tol)
	})

	t.Run("NonAdjacentTargets", func(t *testing.T) {
		// CX from particle 0 to particle 2 of three qubits.
		v := newVector(t, state.Dims{2, 2, 2})
		require.NoError(t, Apply(v, gate.X(2), 0)) // |100⟩
		require.NoError(t, Apply(v, gate.CX(2, 2), 0, 2))
		// Expect |101⟩ = index 5.
		assert.InDelta(t, 1, real(v.Amplitude(5)), tol)
	})

	t.Run("ReversedTargetOrder", func(t *testing.T) {
		// Control on particle 1, target on particle 0.
		v := newVector(t, state.Dims{2, 2})
		require.NoError(t, Apply(v, gate.X(2), 1)) // |01⟩
		require.NoError(t, Apply(v, gate.CX(2, 2), 1, 0))
		// Expect |11⟩ = index 3.
		assert.InDelta(t, 1, real(v.Amplitude(3)), tol)
	})

	t.Run("HeterogeneousLegs", func(t *testing.T) {
		// Control d=3 set to |2⟩, target d=2: 2 mod 2 leaves target alone.
		v := newVector(t, state.Dims{3, 2})
		require.NoError(t, Apply(v, gate.X(3), 0))
		require.NoError(t, Apply(v, gate.X(3), 0)) // |2,0⟩ = index 4
		require.NoError(t, Apply(v, gate.CX(3, 2), 0, 1))
		assert.InDelta(t, 1, real(v.Amplitude(4)), tol)

		// Control |1⟩ flips the target.
		v2 := newVector(t, state.Dims{3, 2})
		require.NoError(t, Apply(v2, gate.X(3), 0)) // |1,0⟩ = index 2
		require.NoError(t, Apply(v2, gate.CX(3, 2), 0, 1))
		assert.InDelta(t, 1, real(v2.Amplitude(3)), tol) // |1,1⟩
	})
}

func TestApplyMixedProduct(t *testing.T) {
	// A 13-level particle entangled with a 17-level particle.
	v := newVector(t, state.Dims{13, 17})
	require.NoError(t, Apply(v, gate.H(13), 0))
	require.NoError(t, Apply(v, gate.CX(13, 17), 0, 1))

	assert.InDelta(t, 1, v.Norm(), tol)

	// Exactly the 13 correlated levels |k, k mod 17⟩ carry weight 1/13.
	for k := 0; k < 13; k++ {
		idx := k*17 + k%17
		p := cmplx.Abs(v.Amplitude(idx))
		assert.InDelta(t, 1/math.Sqrt(13), p, tol)
	}
}

func TestApplyNormInvariant(t *testing.T) {
	v := newVector(t, state.Dims{3, 2, 5})
	steps := []struct {
		op      gate.Operator
		targets []int
	}{
		{gate.H(3), []int{0}},
		{gate.H(5), []int{2}},
		{gate.CX(3, 2), []int{0, 1}},
		{gate.Rz(5, 1.234), []int{2}},
		{gate.CPhase(2, 5, 0.77), []int{1, 2}},
		{gate.Z(3), []int{0}},
		{gate.X(5), []int{2}},
	}

	for _, s := range steps {
		require.NoError(t, Apply(v, s.op, s.targets...))
		assert.InDelta(t, 1, v.Norm(), tol)
	}
}

func TestApplyAllTargets(t *testing.T) {
	// Operator covering every particle leaves no untouched axes.
	v := newVector(t, state.Dims{2, 2})
	require.NoError(t, Apply(v, gate.CX(2, 2), 0, 1))
	assert.InDelta(t, 1, real(v.Amplitude(0)), tol)
	assert.InDelta(t, 1, v.Norm(), tol)
}

func TestApplyErrors(t *testing.T) {
	v := newVector(t, state.Dims{2, 3})

	t.Run("IndexOutOfRange", func(t *testing.T) {
		err := Apply(v, gate.H(2), 2)
		var e *ErrIndexOutOfRange
		require.ErrorAs(t, err, &e)
		assert.Equal(t, 2, e.Target)
	})

	t.Run("NegativeTarget", func(t *testing.T) {
		err := Apply(v, gate.H(2), -1)
		var e *ErrIndexOutOfRange
		require.ErrorAs(t, err, &e)
	})

	t.Run("TargetCountMismatch", func(t *testing.T) {
		err := Apply(v, gate.CX(2, 3), 0)
		var e *ErrDimensionMismatch
		require.ErrorAs(t, err, &e)
	})

	t.Run("DuplicateTargets", func(t *testing.T) {
		err := Apply(v, gate.CX(2, 2), 0, 0)
		var e *ErrDimensionMismatch
		require.ErrorAs(t, err, &e)
	})

	t.Run("LegDimensionMismatch", func(t *testing.T) {
		err := Apply(v, gate.H(2), 1) // particle 1 has d=3
		var e *ErrDimensionMismatch
		require.ErrorAs(t, err, &e)
		assert.Equal(t, 3, e.Expected)
		assert.Equal(t, 2, e.Actual)
	})

	t.Run("StateUntouchedOnError", func(t *testing.T) {
		require.Error(t, Apply(v, gate.H(2), 1))
		assert.InDelta(t, 1, real(v.Amplitude(0)), tol)
	})
}

func TestApplyVerified(t *testing.T) {
	v := newVector(t, state.Dims{2})

	t.Run("UnitaryPasses", func(t *testing.T) {
		require.NoError(t, ApplyVerified(v, gate.H(2), 0))
	})

	t.Run("NonUnitaryRejected", func(t *testing.T) {
		bad, err := gate.Custom("SCALE", []int{2}, []complex128{2, 0, 0, 2})
		require.NoError(t, err)

		err = ApplyVerified(v, bad, 0)
		var e *ErrNonUnitary
		require.ErrorAs(t, err, &e)
		assert.Equal(t, "SCALE", e.Name)
	})
}

func BenchmarkApplySingleQuditD8(b *testing.B) {
	v, err := state.New(state.Dims{8, 8, 8, 8}, 0)
	if err != nil {
		b.Fatal(err)
	}
	h := gate.H(8)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := Apply(v, h, i%4); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkApplyTwoQubit(b *testing.B) {
	dims := make(state.Dims, 12)
	for i := range dims {
		dims[i] = 2
	}
	v, err := state.New(dims, 0)
	if err != nil {
		b.Fatal(err)
	}
	cx := gate.CX(2, 2)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := Apply(v, cx, i%11, (i%11)+1); err != nil {
			b.Fatal(err)
		}
	}
}
