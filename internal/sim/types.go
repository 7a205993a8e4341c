package sim

import (
	"github.com/san-kum/dynctl/internal/control"
	"github.com/san-kum/dynctl/internal/dynamo"
)

type Dynamics interface {
	Derivative(x dynamo.State, u dynamo.Control, t float64) dynamo.State
	StateDim() int
	ControlDim() int
}

// EnergyComputer is implemented by dynamics with a conserved energy.
type EnergyComputer interface {
	Energy(x dynamo.State) float64
}

// Trimmer is implemented by dynamics with a known equilibrium input: Trim
// holds the system at rest in its reference attitude.
type Trimmer interface {
	Trim() dynamo.Control
}

type Integrator interface {
	Step(dyn Dynamics, x dynamo.State, u dynamo.Control, t float64, dt float64) dynamo.State
}

// IntegratorCloner is implemented by integrators holding scratch buffers
// that must not be shared between goroutines.
type IntegratorCloner interface {
	CloneIntegrator() Integrator
}

// Controller is the continuous-time controller the simulator drives.
type Controller = control.Controller[dynamo.State, float64, dynamo.ContinuousTime]

type Metric interface {
	Name() string
	Observe(x dynamo.State, u dynamo.Control, t float64)
	Value() float64
	Reset()
}

// MetricCloner is implemented by metrics that can be duplicated for
// parallel rollouts. Metrics without it are not carried into an Ensemble.
type MetricCloner interface {
	CloneMetric() Metric
}

type Observer interface {
	OnStep(x dynamo.State, u dynamo.Control, t float64)
}

type Config struct {
	Dt            float64 `yaml:"dt"`
	Duration      float64 `yaml:"duration"`
	ValidateState bool    `yaml:"validate_state"`
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.01,
		Duration:      10.0,
		ValidateState: true,
	}
}

type Result struct {
	States      []dynamo.State
	Controls    []dynamo.Control
	Times       []float64
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
}
