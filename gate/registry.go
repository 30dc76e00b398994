package gate

import (
	"fmt"
	"strings"
)

// ErrUnknownOperator indicates a name with no registered constructor.
type ErrUnknownOperator struct {
	Name string
}

func (e *ErrUnknownOperator) Error() string {
	return fmt.Sprintf("unknown operator %q (known: %s)", e.Name, strings.Join(Names(), ", "))
}

// ErrArity indicates a target count that does not match the operator.
type ErrArity struct {
	Name string
	Want int
	Got  int
}

func (e *ErrArity) Error() string {
	return fmt.Sprintf("operator %s acts on %d particle(s), got %d target(s)", e.Name, e.Want, e.Got)
}

// ErrParams indicates a parameter count that does not match the operator.
type ErrParams struct {
	Name string
	Want int
	Got  int
}

func (e *ErrParams) Error() string {
	return fmt.Sprintf("operator %s takes %d parameter(s), got %d", e.Name, e.Want, e.Got)
}

type spec struct {
	legs   int
	params int
	build  func(legs []int, params []float64) Operator
}

// The registry is closed: every entry maps to one of the typed
// constructors above, so an invalid name is a construction-time error
// instead of a silent runtime lookup.
var registry = map[string]spec{
	"I":      {legs: 1, build: func(l []int, _ []float64) Operator { return Identity(l[0]) }},
	"X":      {legs: 1, build: func(l []int, _ []float64) Operator { return X(l[0]) }},
	"Z":      {legs: 1, build: func(l []int, _ []float64) Operator { return Z(l[0]) }},
	"H":      {legs: 1, build: func(l []int, _ []float64) Operator { return H(l[0]) }},
	"RZ":     {legs: 1, params: 1, build: func(l []int, p []float64) Operator { return Rz(l[0], p[0]) }},
	"CX":     {legs: 2, build: func(l []int, _ []float64) Operator { return CX(l[0], l[1]) }},
	"CPHASE": {legs: 2, params: 1, build: func(l []int, p []float64) Operator { return CPhase(l[0], l[1], p[0]) }},
}

// Names returns the registered operator names in stable order.
func Names() []string {
	return []string{"CPHASE", "CX", "H", "I", "RZ", "X", "Z"}
}

// ByName builds a registered operator for particle legs of the given
// dimensions. Lookup is case-insensitive. It is the construction-time
// backing of the dynamic "gate name + params" surface.
func ByName(name string, legs []int, params []float64) (Operator, error) {
	s, ok := registry[strings.ToUpper(name)]
	if !ok {
		return Operator{}, &ErrUnknownOperator{Name: name}
	}
	if len(legs) != s.legs {
		return Operator{}, &ErrArity{Name: strings.ToUpper(name), Want: s.legs, Got: len(legs)}
	}
	if len(params) != s.params {
		return Operator{}, &ErrParams{Name: strings.ToUpper(name), Want: s.params, Got: len(params)}
	}
	return s.build(legs, params), nil
}
