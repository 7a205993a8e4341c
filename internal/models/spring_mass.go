package models

import "github.com/san-kum/dynctl/internal/dynamo"

const (
	DefaultStiffness = 10.0
	DefaultDamping   = 0.5
)

type SpringMass struct {
	Mass      float64
	Stiffness float64
	Damping   float64
}

func NewSpringMass() *SpringMass {
	return &SpringMass{
		Mass:      DefaultMass,
		Stiffness: DefaultStiffness,
		Damping:   DefaultDamping,
	}
}

func (s *SpringMass) StateDim() int   { return 2 }
func (s *SpringMass) ControlDim() int { return 1 }

func (s *SpringMass) Derivative(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	force := 0.0
	if len(u) > 0 {
		force = u[0]
	}
	acc := (-s.Stiffness*x[0] - s.Damping*x[1] + force) / s.Mass
	return dynamo.State{x[1], acc}
}

// StaticDeflection is the resting position under a constant force.
func (s *SpringMass) StaticDeflection(force float64) float64 {
	return force / s.Stiffness
}

func (s *SpringMass) Energy(x dynamo.State) float64 {
	return 0.5*s.Mass*x[1]*x[1] + 0.5*s.Stiffness*x[0]*x[0]
}
