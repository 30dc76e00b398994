// Package measure computes Born-rule outcome probabilities and samples
// measurement shots from a state vector.
//
// Sampling never mutates the state: repeated Sample calls model fresh
// re-preparation plus measurement of the same circuit. The physically
// distinct single-shot-with-collapse model is the separate, explicit
// CollapseOnce.
package measure

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/quditgo/state"
)

// ErrInvalidShotCount indicates a non-positive sample request.
type ErrInvalidShotCount struct {
	Shots int
}

func (e *ErrInvalidShotCount) Error() string {
	return fmt.Sprintf("invalid shot count %d (must be > 0)", e.Shots)
}

// Outcome pairs a mixed-radix outcome label with its Born probability.
type Outcome struct {
	Label       string
	Probability float64
}

// Probabilities returns |amplitude|^2 for every basis index, in basis
// order. The result sums to 1 within tolerance for a normalized state.
func Probabilities(v *state.Vector) []float64 {
	probs := make([]float64, v.Len())
	for i := range probs {
		a := v.Amplitude(i)
		probs[i] = real(a)*real(a) + imag(a)*imag(a)
	}
	return probs
}

// Outcomes returns the labeled probability of every basis state, in
// basis order.
func Outcomes(v *state.Vector) []Outcome {
	dims := v.Dims()
	probs := Probabilities(v)
	out := make([]Outcome, len(probs))
	for i, p := range probs {
		out[i] = Outcome{Label: Label(i, dims), Probability: p}
	}
	return out
}

// Sample draws shots independent samples from the Born distribution and
// returns aggregate counts keyed by outcome label. The state is not
// mutated. rng may be nil, in which case a freshly seeded generator is
// used.
func Sample(v *state.Vector, shots int, rng *rand.Rand) (map[string]int, error) {
	if shots <= 0 {
		return nil, &ErrInvalidShotCount{Shots: shots}
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	cum := cumulative(v)
	dims := v.Dims()
	counts := make(map[string]int)
	for s := 0; s < shots; s++ {
		idx := draw(cum, rng)
		counts[Label(idx, dims)]++
	}
	return counts, nil
}

// CollapseOnce performs a single measurement shot and mutates the state
// to the realized computational basis vector. It returns the basis index
// and its label. Use this for mid-circuit measurement feedback; plain
// Sample never collapses.
func CollapseOnce(v *state.Vector, rng *rand.Rand) (int, string, error) {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	idx := draw(cumulative(v), rng)
	for i := 0; i < v.Len(); i++ {
		v.SetAmplitude(i, 0)
	}
	v.SetAmplitude(idx, 1)
	return idx, Label(idx, v.Dims()), nil
}

// MassOf returns the total Born probability of the basis indices in set.
// Indices outside the state space are ignored.
func MassOf(v *state.Vector, set *roaring.Bitmap) float64 {
	var mass float64
	it := set.Iterator()
	for it.HasNext() {
		i := int(it.Next())
		if i >= v.Len() {
			break
		}
		a := v.Amplitude(i)
		mass += real(a)*real(a) + imag(a)*imag(a)
	}
	return mass
}

func cumulative(v *state.Vector) []float64 {
	cum := make([]float64, v.Len())
	var acc float64
	for i := 0; i < v.Len(); i++ {
		a := v.Amplitude(i)
		acc += real(a)*real(a) + imag(a)*imag(a)
		cum[i] = acc
	}
	return cum
}

func draw(cum []float64, rng *rand.Rand) int {
	total := cum[len(cum)-1]
	r := rng.Float64() * total
	idx := sort.SearchFloat64s(cum, r)
	if idx >= len(cum) {
		idx = len(cum) - 1
	}
	return idx
}

// Label renders a flat basis index as one digit per particle, particle 0
// first. Registers containing a particle with more than ten levels use
// dot-separated digits ("12.0.7") since single characters no longer
// suffice.
func Label(index int, dims state.Dims) string {
	digits := make([]int, len(dims))
	for i := len(dims) - 1; i >= 0; i-- {
		digits[i] = index % dims[i]
		index /= dims[i]
	}

	if maxDim(dims) <= 10 {
		var sb strings.Builder
		for _, d := range digits {
			sb.WriteByte(byte('0' + d))
		}
		return sb.String()
	}

	parts := make([]string, len(digits))
	for i, d := range digits {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ".")
}

// ParseLabel converts an outcome label back to its flat basis index.
// The expected format follows from dims, mirroring Label: compact
// digits when every dimension fits one character, dot-separated parts
// otherwise (even for a single particle, where no dot appears).
func ParseLabel(label string, dims state.Dims) (int, error) {
	var digits []int
	if maxDim(dims) > 10 {
		parts := strings.Split(label, ".")
		digits = make([]int, len(parts))
		for i, p := range parts {
			d, err := strconv.Atoi(p)
			if err != nil {
				return 0, fmt.Errorf("parse label %q: %w", label, err)
			}
			digits[i] = d
		}
	} else {
		digits = make([]int, len(label))
		for i := 0; i < len(label); i++ {
			c := label[i]
			if c < '0' || c > '9' {
				return 0, fmt.Errorf("parse label %q: invalid digit %q", label, c)
			}
			digits[i] = int(c - '0')
		}
	}

	if len(digits) != len(dims) {
		return 0, fmt.Errorf("parse label %q: %d digit(s) for %d particle(s)", label, len(digits), len(dims))
	}
	index := 0
	for i, d := range digits {
		if d < 0 || d >= dims[i] {
			return 0, fmt.Errorf("parse label %q: digit %d out of range for dimension %d", label, d, dims[i])
		}
		index = index*dims[i] + d
	}
	return index, nil
}

func maxDim(dims state.Dims) int {
	m := 0
	for _, d := range dims {
		if d > m {
			m = d
		}
	}
	return m
}
