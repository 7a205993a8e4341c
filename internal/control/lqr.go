package control

import (
	"fmt"

	"github.com/san-kum/dynctl/internal/dynamo"
)

// LQR is a linear state-feedback controller u = -K (x - target). It has
// no initial-control parameterization and therefore no control derivative.
type LQR[M dynamo.Euclidean[S], S dynamo.Scalar, T dynamo.Time] struct {
	k      [][]S
	target dynamo.Vector[S]
}

// NewLQR builds a controller from gain rows k. It panics on ragged gains or
// a target whose length differs from the gain columns.
func NewLQR[M dynamo.Euclidean[S], S dynamo.Scalar, T dynamo.Time](k [][]S, target dynamo.Vector[S]) *LQR[M, S, T] {
	gains := make([][]S, len(k))
	for i, row := range k {
		if len(row) != len(target) {
			panic(fmt.Sprintf("control: gain row %d has %d columns, target has %d", i, len(row), len(target)))
		}
		gains[i] = append([]S(nil), row...)
	}
	return &LQR[M, S, T]{k: gains, target: target.Clone()}
}

func (l *LQR[M, S, T]) ComputeControl(x M, _ T, u dynamo.Vector[S]) dynamo.Vector[S] {
	xs := x.Coords()
	if len(xs) != len(l.target) {
		panic(&dynamo.DimensionError{What: "lqr state", Want: len(l.target), Got: len(xs)})
	}
	u = sized(u, len(l.k))
	for i, row := range l.k {
		var acc S
		for j, kij := range row {
			acc -= kij * (xs[j] - l.target[j])
		}
		u[i] = acc
	}
	return u
}

func (l *LQR[M, S, T]) ControlDim() int { return len(l.k) }

func (l *LQR[M, S, T]) Clone() Controller[M, S, T] {
	return NewLQR[M, S, T](l.k, l.target)
}

var (
	pendulumGains  = [][]float64{{31.62, 10.0}}
	doubleIntGains = [][]float64{{1.0, 1.73}}
)

// NewPendulumLQR stabilizes the damped pendulum at the bottom equilibrium.
func NewPendulumLQR() *LQR[dynamo.State, float64, dynamo.ContinuousTime] {
	return NewLQR[dynamo.State, float64, dynamo.ContinuousTime](pendulumGains, dynamo.State{0, 0})
}

// NewDoubleIntegratorLQR drives a double integrator to position target.
func NewDoubleIntegratorLQR(target float64) *LQR[dynamo.State, float64, dynamo.ContinuousTime] {
	return NewLQR[dynamo.State, float64, dynamo.ContinuousTime](doubleIntGains, dynamo.State{target, 0})
}
