// Package control provides controllers for dynamical systems.
//
// Every controller implements [Controller], generic over the state
// manifold M, its scalar field S and the time axis T:
//
//   - [Constant]: time- and state-invariant control
//   - [LQR]: linear state feedback around a target
//   - [PD]: proportional-derivative regulation of the first coordinate
//
// # Usage
//
//	c := control.NewConstantFrom[dynamo.State, float64, dynamo.ContinuousTime](dynamo.Control{1, 2, 3})
//	u := dynamo.NewVector[float64](c.ControlDim())
//	u = c.ComputeControl(x, 0, u)
//
// A simulator that duplicates itself (parallel rollouts) must Clone its
// controller; clones never share buffers with the original.
//
// # Control derivative
//
// Controllers with a meaningful sensitivity to their initial control
// additionally implement [DerivativeProvider]. Callers query it through
// [DerivativeU0], which returns [ErrDerivativeUnsupported] for every other
// controller rather than a zero matrix.
//
// ComputeControl never mutates the controller, so concurrent calls on one
// instance are safe. SetControl and SetParam are configuration and must not
// race with ComputeControl; give each goroutine its own Clone instead.
package control
