package models

import (
	"math"
	"testing"

	"github.com/san-kum/dynctl/internal/dynamo"
)

func TestSpringMassDerivative_Equilibrium(t *testing.T) {
	sm := NewSpringMass()
	x := dynamo.State{0.0, 0.0}
	u := dynamo.Control{0.0}

	dx := sm.Derivative(x, u, 0.0)

	if dx[0] != 0 {
		t.Errorf("velocity at equilibrium should be 0, got %f", dx[0])
	}
	if dx[1] != 0 {
		t.Errorf("acceleration at equilibrium should be 0, got %f", dx[1])
	}
}

func TestSpringMassDerivative_Displaced(t *testing.T) {
	sm := NewSpringMass()
	x := dynamo.State{1.0, 0.0}
	u := dynamo.Control{0.0}

	dx := sm.Derivative(x, u, 0.0)

	if dx[0] != 0 {
		t.Errorf("velocity should be 0, got %f", dx[0])
	}

	expectedAcc := -DefaultStiffness * 1.0 / DefaultMass
	if math.Abs(dx[1]-expectedAcc) > 0.001 {
		t.Errorf("expected acceleration %f, got %f", expectedAcc, dx[1])
	}
}

func TestSpringMassEnergy(t *testing.T) {
	sm := NewSpringMass()

	x := dynamo.State{1.0, 0.0}
	e1 := sm.Energy(x)

	x = dynamo.State{0.0, 3.16}
	e2 := sm.Energy(x)

	if math.Abs(e1-e2) > 1.0 {
		t.Errorf("energy should be approximately conserved: PE=%f, KE=%f", e1, e2)
	}
}

func TestSpringMassStaticDeflection(t *testing.T) {
	sm := NewSpringMass()
	force := 2.0
	x := dynamo.State{sm.StaticDeflection(force), 0.0}

	dx := sm.Derivative(x, dynamo.Control{force}, 0.0)
	if math.Abs(dx[1]) > 1e-12 {
		t.Errorf("expected rest at static deflection, got acceleration %f", dx[1])
	}
}
