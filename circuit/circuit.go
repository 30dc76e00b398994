// Package circuit provides replayable gate sequences and the named
// algorithm compositions built from them. A Circuit is a stateless
// blueprint: it owns no amplitudes and can be run against any freshly
// constructed state vector of matching dimensions.
package circuit

import (
	"github.com/hupe1980/quditgo/engine"
	"github.com/hupe1980/quditgo/gate"
	"github.com/hupe1980/quditgo/state"
)

// Step is one (operator, targets) pair in application order.
type Step struct {
	Op      gate.Operator
	Targets []int
}

// Circuit is an ordered sequence of operator applications over a fixed
// dimension vector.
type Circuit struct {
	dims  state.Dims
	steps []Step
}

// New returns an empty circuit over the given dimension vector.
func New(dims state.Dims) *Circuit {
	return &Circuit{dims: dims.Clone()}
}

// Dims returns a copy of the circuit's dimension vector.
func (c *Circuit) Dims() state.Dims { return c.dims.Clone() }

// Len returns the number of steps.
func (c *Circuit) Len() int { return len(c.steps) }

// Steps returns the ordered steps. The slice is shared; treat it as
// read-only.
func (c *Circuit) Steps() []Step { return c.steps }

// Append adds an operator application and returns the circuit for
// chaining. Shape validation happens at run time, where the targeted
// state is known.
func (c *Circuit) Append(op gate.Operator, targets ...int) *Circuit {
	ts := make([]int, len(targets))
	copy(ts, targets)
	c.steps = append(c.steps, Step{Op: op, Targets: ts})
	return c
}

// Run constructs a fresh state vector (zero basis state, subject to
// maxAmplitudes as in state.New) and replays the circuit onto it.
func (c *Circuit) Run(maxAmplitudes int) (*state.Vector, error) {
	v, err := state.New(c.dims, maxAmplitudes)
	if err != nil {
		return nil, err
	}
	if err := c.RunOn(v); err != nil {
		return nil, err
	}
	return v, nil
}

// RunOn replays the circuit onto an existing state vector, which must
// have the circuit's dimension vector.
func (c *Circuit) RunOn(v *state.Vector) error {
	if !c.dims.Equal(v.Dims()) {
		return &engine.ErrDimensionMismatch{
			What:     "circuit vs state particle count",
			Expected: len(c.dims),
			Actual:   v.NumParticles(),
		}
	}
	for _, s := range c.steps {
		if err := engine.Apply(v, s.Op, s.Targets...); err != nil {
			return err
		}
	}
	return nil
}
