package measure

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/quditgo/engine"
	"github.com/hupe1980/quditgo/gate"
	"github.com/hupe1980/quditgo/state"
)

const tol = 1e-9

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(42, 7))
}

func bellVector(t *testing.T) *state.Vector {
	t.Helper()
	v, err := state.New(state.Dims{2, 2}, 0)
	require.NoError(t, err)
	require.NoError(t, engine.Apply(v, gate.H(2), 0))
	require.NoError(t, engine.Apply(v, gate.CX(2, 2), 0, 1))
	return v
}

func TestProbabilities(t *testing.T) {
	t.Run("SumToOne", func(t *testing.T) {
		v, err := state.New(state.Dims{3, 2, 5}, 0)
		require.NoError(t, err)
		require.NoError(t, engine.Apply(v, gate.H(3), 0))
		require.NoError(t, engine.Apply(v, gate.H(5), 2))

		var sum float64
		for _, p := range Probabilities(v) {
			sum += p
		}
		assert.InDelta(t, 1, sum, tol)
	})

	t.Run("BellWeights", func(t *testing.T) {
		probs := Probabilities(bellVector(t))
		assert.InDelta(t, 0.5, probs[0], tol)
		assert.InDelta(t, 0.0, probs[1], tol)
		assert.InDelta(t, 0.0, probs[2], tol)
		assert.InDelta(t, 0.5, probs[3], tol)
	})
}

func TestOutcomes(t *testing.T) {
	out := Outcomes(bellVector(t))
	require.Len(t, out, 4)
	assert.Equal(t, "00", out[0].Label)
	assert.Equal(t, "11", out[3].Label)
	assert.InDelta(t, 0.5, out[0].Probability, tol)
}

func TestSample(t *testing.T) {
	t.Run("InvalidShotCount", func(t *testing.T) {
		v, _ := state.New(state.Dims{2}, 0)
		for _, shots := range []int{0, -5} {
			_, err := Sample(v, shots, testRand())
			var e *ErrInvalidShotCount
			require.ErrorAs(t, err, &e)
			assert.Equal(t, shots, e.Shots)
		}
	})

	t.Run("BellCorrelation", func(t *testing.T) {
		v := bellVector(t)
		counts, err := Sample(v, 10000, testRand())
		require.NoError(t, err)

		total := 0
		for label, c := range counts {
			assert.Contains(t, []string{"00", "11"}, label)
			total += c
		}
		assert.Equal(t, 10000, total)
		assert.InDelta(t, 5000, counts["00"], 500)
		assert.InDelta(t, 5000, counts["11"], 500)
	})

	t.Run("DoesNotMutateState", func(t *testing.T) {
		v := bellVector(t)
		before := Probabilities(v)

		_, err := Sample(v, 1000, testRand())
		require.NoError(t, err)
		_, err = Sample(v, 1000, testRand())
		require.NoError(t, err)

		assert.Equal(t, before, Probabilities(v))
	})

	t.Run("NilRand", func(t *testing.T) {
		v := bellVector(t)
		counts, err := Sample(v, 10, nil)
		require.NoError(t, err)
		total := 0
		for _, c := range counts {
			total += c
		}
		assert.Equal(t, 10, total)
	})
}

func TestCollapseOnce(t *testing.T) {
	v := bellVector(t)
	idx, label, err := CollapseOnce(v, testRand())
	require.NoError(t, err)

	assert.Contains(t, []int{0, 3}, idx)
	assert.Contains(t, []string{"00", "11"}, label)

	// State is now the realized basis vector.
	probs := Probabilities(v)
	assert.InDelta(t, 1, probs[idx], tol)
	var sum float64
	for _, p := range probs {
		sum += p
	}
	assert.InDelta(t, 1, sum, tol)

	// A second collapse is deterministic.
	idx2, _, err := CollapseOnce(v, testRand())
	require.NoError(t, err)
	assert.Equal(t, idx, idx2)
}

func TestMassOf(t *testing.T) {
	v := bellVector(t)

	diagonal := roaring.BitmapOf(0, 3)
	assert.InDelta(t, 1, MassOf(v, diagonal), tol)

	offDiagonal := roaring.BitmapOf(1, 2)
	assert.InDelta(t, 0, MassOf(v, offDiagonal), tol)

	half := roaring.BitmapOf(0)
	assert.InDelta(t, 0.5, MassOf(v, half), tol)

	outOfRange := roaring.BitmapOf(0, 99)
	assert.InDelta(t, 0.5, MassOf(v, outOfRange), tol)
}

func TestLabel(t *testing.T) {
	tests := []struct {
		name  string
		dims  state.Dims
		index int
		want  string
	}{
		{"Qubits", state.Dims{2, 2}, 3, "11"},
		{"QutritsZero", state.Dims{3, 3, 3}, 0, "000"},
		{"QutritsDiagonal", state.Dims{3, 3, 3}, 13, "111"},
		{"Heterogeneous", state.Dims{3, 2}, 5, "21"},
		{"WideDims", state.Dims{13, 17}, 13*17 - 1, "12.16"},
		{"SingleWideParticle", state.Dims{13}, 12, "12"},
		{"SingleWideParticleSmallDigit", state.Dims{13}, 4, "4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			label := Label(tt.index, tt.dims)
			assert.Equal(t, tt.want, label)

			back, err := ParseLabel(label, tt.dims)
			require.NoError(t, err)
			assert.Equal(t, tt.index, back)
		})
	}
}

func TestParseLabelErrors(t *testing.T) {
	dims := state.Dims{2, 2}

	_, err := ParseLabel("0", dims)
	require.Error(t, err)

	_, err = ParseLabel("02", dims)
	require.Error(t, err)

	_, err = ParseLabel("ab", dims)
	require.Error(t, err)

	_, err = ParseLabel("1.x", state.Dims{13, 17})
	require.Error(t, err)
}

func TestSampleUniformSuperposition(t *testing.T) {
	// H on a single d=5 particle: all five outcomes near 20%.
	v, err := state.New(state.Dims{5}, 0)
	require.NoError(t, err)
	require.NoError(t, engine.Apply(v, gate.H(5), 0))

	counts, err := Sample(v, 10000, testRand())
	require.NoError(t, err)
	require.Len(t, counts, 5)
	for _, c := range counts {
		assert.InDelta(t, 2000, c, 4*math.Sqrt(10000*0.2*0.8))
	}
}

func BenchmarkSample(b *testing.B) {
	dims := make(state.Dims, 10)
	for i := range dims {
		dims[i] = 2
	}
	v, err := state.New(dims, 0)
	if err != nil {
		b.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		if err := engine.Apply(v, gate.H(2), i); err != nil {
			b.Fatal(err)
		}
	}
	rng := testRand()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Sample(v, 1000, rng); err != nil {
			b.Fatal(err)
		}
	}
}
