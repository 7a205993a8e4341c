package control

import (
	"errors"

	"github.com/san-kum/dynctl/internal/dynamo"
)

// ErrDerivativeUnsupported is returned by [DerivativeU0] for controllers
// that do not expose a control derivative.
var ErrDerivativeUnsupported = errors.New("control: derivative w.r.t. initial control not supported")

// Controller computes a control action from a state and a time.
type Controller[M dynamo.Manifold[S], S dynamo.Scalar, T dynamo.Time] interface {
	// ComputeControl writes the control action for state x at time t into
	// u and returns it. u is reallocated when its length differs from
	// ControlDim, so callers must use the returned slice.
	ComputeControl(x M, t T, u dynamo.Vector[S]) dynamo.Vector[S]

	// ControlDim is the length of every action this controller produces.
	// It is fixed at construction; zero denotes a no-op controller.
	ControlDim() int

	// Clone returns an independent deep copy.
	Clone() Controller[M, S, T]
}

// DerivativeProvider is implemented by controllers that can report the
// Jacobian of their action with respect to the initial control.
type DerivativeProvider[M dynamo.Manifold[S], S dynamo.Scalar, T dynamo.Time] interface {
	DerivativeU0(x M, t T) *ControlMatrix[S]
}

// DerivativeU0 returns c's control derivative at (x, t), or
// ErrDerivativeUnsupported when c does not implement DerivativeProvider.
func DerivativeU0[M dynamo.Manifold[S], S dynamo.Scalar, T dynamo.Time](c Controller[M, S, T], x M, t T) (*ControlMatrix[S], error) {
	dp, ok := c.(DerivativeProvider[M, S, T])
	if !ok {
		return nil, ErrDerivativeUnsupported
	}
	return dp.DerivativeU0(x, t), nil
}

// Compute is a convenience wrapper that allocates the action vector.
func Compute[M dynamo.Manifold[S], S dynamo.Scalar, T dynamo.Time](c Controller[M, S, T], x M, t T) dynamo.Vector[S] {
	return c.ComputeControl(x, t, dynamo.NewVector[S](c.ControlDim()))
}

func sized[S dynamo.Scalar](u dynamo.Vector[S], n int) dynamo.Vector[S] {
	if len(u) != n {
		return make(dynamo.Vector[S], n)
	}
	return u
}
