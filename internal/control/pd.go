package control

import (
	"fmt"

	"github.com/san-kum/dynctl/internal/dynamo"
)

// PD regulates the first state coordinate towards Target, damping with the
// second coordinate taken as its rate. The action depends on x alone, so
// one instance may serve concurrent callers.
//
// Gains are configuration: change them through SetParam between runs, not
// while a simulation is driving the controller.
type PD[M dynamo.Euclidean[S], S dynamo.Scalar, T dynamo.Time] struct {
	Kp     float64
	Kd     float64
	Target float64
}

func NewPD[M dynamo.Euclidean[S], S dynamo.Scalar, T dynamo.Time](kp, kd, target float64) *PD[M, S, T] {
	return &PD[M, S, T]{Kp: kp, Kd: kd, Target: target}
}

// ComputeControl returns Kp*(Target-x0) - Kd*x1. States with a single
// coordinate get no damping term.
func (p *PD[M, S, T]) ComputeControl(x M, _ T, u dynamo.Vector[S]) dynamo.Vector[S] {
	u = sized(u, 1)
	xs := x.Coords()
	if len(xs) == 0 {
		panic(&dynamo.DimensionError{What: "pd state", Want: 1, Got: 0})
	}

	out := p.Kp * (p.Target - float64(xs[0]))
	if len(xs) > 1 {
		out -= p.Kd * float64(xs[1])
	}
	u[0] = S(out)
	return u
}

func (p *PD[M, S, T]) ControlDim() int { return 1 }

func (p *PD[M, S, T]) Clone() Controller[M, S, T] {
	c := *p
	return &c
}

// GetParams returns the tunable gains keyed by their flag names.
func (p *PD[M, S, T]) GetParams() map[string]float64 {
	return map[string]float64{
		"kp":     p.Kp,
		"kd":     p.Kd,
		"target": p.Target,
	}
}

func (p *PD[M, S, T]) SetParam(name string, value float64) error {
	switch name {
	case "kp":
		p.Kp = value
	case "kd":
		p.Kd = value
	case "target":
		p.Target = value
	default:
		return fmt.Errorf("pd: %q: %w", name, dynamo.ErrUnknownParam)
	}
	return nil
}
