package quditgo_test

import (
	"context"
	"fmt"
	"math"

	"github.com/hupe1980/quditgo"
	"github.com/hupe1980/quditgo/circuit"
	"github.com/hupe1980/quditgo/gate"
	"github.com/hupe1980/quditgo/state"
)

func ExampleNew() {
	sim, err := quditgo.New(state.Dims{2, 2})
	if err != nil {
		panic(err)
	}
	defer sim.Close()

	ctx := context.Background()
	_ = sim.Apply(ctx, gate.H(2), 0)
	_ = sim.Apply(ctx, gate.CX(2, 2), 0, 1)

	outcomes, _ := sim.Outcomes()
	for _, o := range outcomes {
		if o.Probability > 1e-9 {
			fmt.Printf("%s %.2f\n", o.Label, o.Probability)
		}
	}
	// Output:
	// 00 0.50
	// 11 0.50
}

func ExampleSimulator_ApplyNamed() {
	// A register mixing a qutrit with a five-level particle. The "H"
	// name resolves to the DFT of whatever dimension the target has.
	sim, err := quditgo.New(state.Dims{3, 5})
	if err != nil {
		panic(err)
	}
	defer sim.Close()

	ctx := context.Background()
	_ = sim.ApplyNamed(ctx, "H", nil, 0)
	_ = sim.ApplyNamed(ctx, "RZ", []float64{math.Pi / 7}, 1)

	fmt.Printf("norm %.4f\n", sim.Norm())
	// Output:
	// norm 1.0000
}

func ExampleSimulator_RunCircuit() {
	dims := state.Dims{3, 3, 3}
	c, err := circuit.GHZ(dims)
	if err != nil {
		panic(err)
	}

	sim, err := quditgo.New(dims)
	if err != nil {
		panic(err)
	}
	defer sim.Close()

	if err := sim.RunCircuit(context.Background(), c); err != nil {
		panic(err)
	}

	outcomes, _ := sim.Outcomes()
	for _, o := range outcomes {
		if o.Probability > 1e-9 {
			fmt.Printf("%s %.4f\n", o.Label, o.Probability)
		}
	}
	// Output:
	// 000 0.3333
	// 111 0.3333
	// 222 0.3333
}

func ExampleSimulator_Entropy() {
	sim, err := quditgo.New(state.Dims{3, 3})
	if err != nil {
		panic(err)
	}
	defer sim.Close()

	ctx := context.Background()
	_ = sim.Apply(ctx, gate.H(3), 0)
	_ = sim.Apply(ctx, gate.CX(3, 3), 0, 1)

	s, err := sim.Entropy([]int{0})
	if err != nil {
		panic(err)
	}
	fmt.Printf("entropy %.4f bits\n", s)
	// Output:
	// entropy 1.5850 bits
}
