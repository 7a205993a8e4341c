// Package sensitivity propagates the derivative of a trajectory with
// respect to a controller's initial control.
//
// Along a trajectory x(t) driven by u(t) the sensitivity S = dx/du0
// satisfies the variational equation
//
//	dS/dt = A S + B D
//
// where A = df/dx and B = df/du are evaluated by finite differences and
// D = du/du0 is supplied by the controller through
// [control.DerivativeU0]. The state and the sensitivity are stepped together
// with the caller's integrator, so S matches the discrete flow the
// simulator produces.
//
// Controllers without the derivative capability are rejected with
// [control.ErrDerivativeUnsupported].
package sensitivity
