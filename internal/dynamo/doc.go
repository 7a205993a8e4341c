// Package dynamo provides the core value types shared by controllers and
// the simulation driver.
//
// The package defines the type parameters the rest of the module is
// generic over:
//
//   - [Scalar]: scalar field of a state space (float32 or float64)
//   - [Time]: continuous ([ContinuousTime]) or discrete ([DiscreteTime]) time
//   - [Manifold]: opaque state-space point with an associated scalar type
//   - [Euclidean]: manifold whose points expose plain coordinates
//   - [Vector]: fixed-length sequence of scalars; also the Euclidean state
//
// # Example
//
//	x := dynamo.State{0.1, 0.0}
//	u := dynamo.NewVector[float64](1)
//	ctrl.ComputeControl(x, dynamo.ContinuousTime(0), u)
//
// Values in this package carry no synchronization. Copy with Clone before
// handing a vector to another goroutine.
package dynamo
