package control

import (
	"fmt"

	"github.com/san-kum/dynctl/internal/dynamo"
)

// Constant is a time- and state-invariant controller. It is useful to
// integrate a system forward subject to a fixed control input.
//
// The zero value is not usable; construct with NewConstant or
// NewConstantFrom. Methods other than ControlDim and Control panic on a
// zero value.
type Constant[M dynamo.Manifold[S], S dynamo.Scalar, T dynamo.Time] struct {
	u            dynamo.Vector[S]
	derivativeU0 *ControlMatrix[S]
}

// NewConstant returns a d-dimensional constant controller emitting zeros.
// It panics if d < 0.
func NewConstant[M dynamo.Manifold[S], S dynamo.Scalar, T dynamo.Time](d int) *Constant[M, S, T] {
	if d < 0 {
		panic(fmt.Sprintf("control: negative control dimension %d", d))
	}
	return newConstant[M, S, T](dynamo.NewVector[S](d), Identity[S](d))
}

// NewConstantFrom returns a constant controller emitting a copy of u.
func NewConstantFrom[M dynamo.Manifold[S], S dynamo.Scalar, T dynamo.Time](u dynamo.Vector[S]) *Constant[M, S, T] {
	return newConstant[M, S, T](u.Clone(), Identity[S](len(u)))
}

func newConstant[M dynamo.Manifold[S], S dynamo.Scalar, T dynamo.Time](u dynamo.Vector[S], du0 *ControlMatrix[S]) *Constant[M, S, T] {
	if r, _ := du0.Dims(); r != len(u) {
		panic(fmt.Sprintf("control: derivative is %dx%d for control of length %d", r, r, len(u)))
	}
	return &Constant[M, S, T]{u: u, derivativeU0: du0}
}

func (c *Constant[M, S, T]) mustInit() {
	if c.derivativeU0 == nil {
		panic("control: zero-value Constant; use NewConstant or NewConstantFrom")
	}
}

// ComputeControl ignores x and t and returns the stored control.
func (c *Constant[M, S, T]) ComputeControl(_ M, _ T, u dynamo.Vector[S]) dynamo.Vector[S] {
	c.mustInit()
	u = sized(u, len(c.u))
	copy(u, c.u)
	return u
}

func (c *Constant[M, S, T]) ControlDim() int { return len(c.u) }

// SetControl replaces the stored control. The dimension is fixed at
// construction, so u must have length ControlDim.
func (c *Constant[M, S, T]) SetControl(u dynamo.Vector[S]) error {
	c.mustInit()
	if len(u) != len(c.u) {
		return fmt.Errorf("control: set constant control: %w",
			&dynamo.DimensionError{What: "control", Want: len(c.u), Got: len(u)})
	}
	copy(c.u, u)
	return nil
}

// Control returns a copy of the stored control.
func (c *Constant[M, S, T]) Control() dynamo.Vector[S] {
	return c.u.Clone()
}

// DerivativeU0 returns the identity: the action equals the stored control
// one-to-one and does not depend on x or t.
func (c *Constant[M, S, T]) DerivativeU0(_ M, _ T) *ControlMatrix[S] {
	c.mustInit()
	return c.derivativeU0.Clone()
}

// Copy returns an independent copy with its own buffers.
func (c *Constant[M, S, T]) Copy() *Constant[M, S, T] {
	c.mustInit()
	return newConstant[M, S, T](c.u.Clone(), c.derivativeU0.Clone())
}

func (c *Constant[M, S, T]) Clone() Controller[M, S, T] {
	return c.Copy()
}
