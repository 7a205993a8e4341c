package control_test

import (
	"errors"
	"math"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dynctl/internal/control"
	"github.com/san-kum/dynctl/internal/dynamo"
)

type (
	constant   = control.Constant[dynamo.State, float64, dynamo.ContinuousTime]
	controller = control.Controller[dynamo.State, float64, dynamo.ContinuousTime]
)

var (
	newConstant     = control.NewConstant[dynamo.State, float64, dynamo.ContinuousTime]
	newConstantFrom = control.NewConstantFrom[dynamo.State, float64, dynamo.ContinuousTime]
)

// attitude is a manifold point without Euclidean coordinates.
type attitude struct {
	q [4]float32
}

func (attitude) Dim() int        { return 3 }
func (attitude) Scalar() float32 { return 0 }

var (
	_ dynamo.Manifold[float32]  = attitude{}
	_ dynamo.Manifold[float32]  = dynamo.Vector[float32](nil)
	_ dynamo.Euclidean[float64] = dynamo.State(nil)
)

var sampleTimes = []dynamo.ContinuousTime{-1e9, -1, 0, 0.5, 100, 1e12, dynamo.ContinuousTime(math.MaxFloat64)}

func sampleStates(n int) []dynamo.State {
	return []dynamo.State{
		nil,
		dynamo.NewVector[float64](n),
		{1, -2, 3, -4},
		{math.Inf(1), math.NaN()},
	}
}

var _ = Describe("Constant", func() {
	Describe("construction", func() {
		DescribeTable("by dimension is zero with identity derivative",
			func(d int) {
				c := newConstant(d)
				Expect(c.ControlDim()).To(Equal(d))

				u := c.Control()
				Expect(u).To(HaveLen(d))
				for _, v := range u {
					Expect(v).To(BeZero())
				}

				du0, err := control.DerivativeU0[dynamo.State](controller(c), nil, 0)
				Expect(err).NotTo(HaveOccurred())
				r, cols := du0.Dims()
				Expect(r).To(Equal(d))
				Expect(cols).To(Equal(d))
				Expect(du0.IsIdentity()).To(BeTrue())
			},
			Entry("null controller", 0),
			Entry("scalar", 1),
			Entry("three inputs", 3),
			Entry("eight inputs", 8),
		)

		It("copies the initial vector", func() {
			u := dynamo.Control{1, 2, 3}
			c := newConstantFrom(u)
			u[0] = 42

			Expect(c.Control().Equal(dynamo.Control{1, 2, 3})).To(BeTrue())
			Expect(c.ControlDim()).To(Equal(3))
		})

		It("rejects a negative dimension", func() {
			Expect(func() { newConstant(-1) }).To(Panic())
		})

		It("fails loudly when used as a zero value", func() {
			var c constant
			zeroValue := ContainSubstring("zero-value Constant")
			Expect(func() { c.Clone() }).To(PanicWith(zeroValue))
			Expect(func() { c.Copy() }).To(PanicWith(zeroValue))
			Expect(func() { c.DerivativeU0(nil, 0) }).To(PanicWith(zeroValue))
			Expect(func() { c.ComputeControl(nil, 0, nil) }).To(PanicWith(zeroValue))
			Expect(func() { _ = c.SetControl(nil) }).To(PanicWith(zeroValue))
			Expect(c.ControlDim()).To(BeZero())
		})

		It("returns a copy from Control", func() {
			c := newConstantFrom(dynamo.Control{1, 2})
			got := c.Control()
			got[0] = 7
			Expect(c.Control()[0]).To(Equal(1.0))
		})
	})

	Describe("ComputeControl", func() {
		DescribeTable("returns the stored vector for every state and time",
			func(u dynamo.Control) {
				c := newConstantFrom(u)
				for _, x := range sampleStates(len(u)) {
					for _, t := range sampleTimes {
						got := c.ComputeControl(x, t, dynamo.NewVector[float64](len(u)))
						Expect(got.Equal(u)).To(BeTrue(), "x=%v t=%v got=%v", x, t, got)
						Expect(c.ControlDim()).To(Equal(len(u)))
					}
				}
			},
			Entry("empty", dynamo.Control{}),
			Entry("one", dynamo.Control{-0.5}),
			Entry("three", dynamo.Control{1, 2, 3}),
			Entry("extreme values", dynamo.Control{math.MaxFloat64, -math.SmallestNonzeroFloat64, 0}),
		)

		It("writes into the caller's buffer when it is sized", func() {
			c := newConstantFrom(dynamo.Control{1, 2, 3})
			buf := dynamo.NewVector[float64](3)
			got := c.ComputeControl(nil, 0, buf)
			Expect(&got[0]).To(BeIdenticalTo(&buf[0]))
			Expect(buf.Equal(dynamo.Control{1, 2, 3})).To(BeTrue())
		})

		It("resizes a wrongly sized buffer instead of truncating", func() {
			c := newConstantFrom(dynamo.Control{1, 2, 3})
			got := c.ComputeControl(nil, 0, dynamo.NewVector[float64](1))
			Expect(got.Equal(dynamo.Control{1, 2, 3})).To(BeTrue())

			got = c.ComputeControl(nil, 0, nil)
			Expect(got).To(HaveLen(3))
		})

		It("does not alias the stored vector", func() {
			c := newConstantFrom(dynamo.Control{1, 2, 3})
			got := control.Compute[dynamo.State](controller(c), nil, 0)
			got[0] = 99
			Expect(c.Control()[0]).To(Equal(1.0))
		})
	})

	Describe("SetControl", func() {
		It("is visible to the next ComputeControl call", func() {
			c := newConstantFrom(dynamo.Control{1, 2, 3})
			Expect(c.SetControl(dynamo.Control{4, 5, 6})).To(Succeed())

			got := control.Compute[dynamo.State](controller(c), dynamo.State{0}, 100)
			Expect(got.Equal(dynamo.Control{4, 5, 6})).To(BeTrue())
		})

		It("rejects a dimension change", func() {
			c := newConstant(2)
			err := c.SetControl(dynamo.Control{1, 2, 3})
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, dynamo.ErrDimensionMismatch)).To(BeTrue())

			var dimErr *dynamo.DimensionError
			Expect(errors.As(err, &dimErr)).To(BeTrue())
			Expect(dimErr.Want).To(Equal(2))
			Expect(dimErr.Got).To(Equal(3))

			Expect(c.ControlDim()).To(Equal(2))
			Expect(c.Control().Equal(dynamo.Control{0, 0})).To(BeTrue())
		})

		It("does not keep a reference to the argument", func() {
			c := newConstant(2)
			u := dynamo.Control{1, 2}
			Expect(c.SetControl(u)).To(Succeed())
			u[1] = 50
			Expect(c.Control().Equal(dynamo.Control{1, 2})).To(BeTrue())
		})
	})

	Describe("Clone", func() {
		It("matches the original and stays independent", func() {
			orig := newConstantFrom(dynamo.Control{1, 2, 3})
			clone := orig.Clone()

			Expect(control.Compute(clone, nil, 0).Equal(dynamo.Control{1, 2, 3})).To(BeTrue())
			Expect(clone.ControlDim()).To(Equal(3))

			Expect(orig.SetControl(dynamo.Control{4, 5, 6})).To(Succeed())
			Expect(control.Compute[dynamo.State](controller(orig), nil, 100).Equal(dynamo.Control{4, 5, 6})).To(BeTrue())
			Expect(control.Compute(clone, nil, 0).Equal(dynamo.Control{1, 2, 3})).To(BeTrue())

			Expect(clone.(*constant).SetControl(dynamo.Control{7, 8, 9})).To(Succeed())
			Expect(orig.Control().Equal(dynamo.Control{4, 5, 6})).To(BeTrue())
		})

		It("copies the derivative matrix", func() {
			orig := newConstant(2)
			clone := orig.Copy()

			d1 := orig.DerivativeU0(nil, 0)
			d1.Set(0, 1, 5)
			Expect(orig.DerivativeU0(nil, 0).IsIdentity()).To(BeTrue())
			Expect(clone.DerivativeU0(nil, 0).IsIdentity()).To(BeTrue())
		})

		It("supports concurrent use of distinct clones", func() {
			orig := newConstantFrom(dynamo.Control{1, 2, 3})

			const workers = 8
			var wg sync.WaitGroup
			results := make([]dynamo.Control, workers)
			for i := 0; i < workers; i++ {
				c := orig.Copy()
				wg.Add(1)
				go func(idx int) {
					defer wg.Done()
					defer GinkgoRecover()
					off := float64(idx)
					Expect(c.SetControl(dynamo.Control{off, off, off})).To(Succeed())
					u := dynamo.NewVector[float64](3)
					for step := 0; step < 100; step++ {
						u = c.ComputeControl(nil, dynamo.ContinuousTime(step), u)
					}
					results[idx] = u
				}(i)
			}
			wg.Wait()

			for i, u := range results {
				off := float64(i)
				Expect(u.Equal(dynamo.Control{off, off, off})).To(BeTrue())
			}
			Expect(orig.Control().Equal(dynamo.Control{1, 2, 3})).To(BeTrue())
		})
	})

	Describe("DerivativeU0", func() {
		It("is the identity regardless of state and time", func() {
			c := newConstantFrom(dynamo.Control{1, 2, 3})
			for _, x := range sampleStates(3) {
				for _, t := range sampleTimes {
					du0 := c.DerivativeU0(x, t)
					Expect(du0.IsIdentity()).To(BeTrue())
					Expect(du0.Dense().RawMatrix().Rows).To(Equal(3))
				}
			}
		})
	})

	Describe("generic instantiation", func() {
		It("works over a discrete time axis", func() {
			c := control.NewConstantFrom[dynamo.State, float64, dynamo.DiscreteTime](dynamo.Control{2})
			for _, k := range []dynamo.DiscreteTime{-1, 0, 1, math.MaxInt} {
				Expect(control.Compute(control.Controller[dynamo.State, float64, dynamo.DiscreteTime](c), nil, k).Equal(dynamo.Control{2})).To(BeTrue())
			}
		})

		It("works over single precision on a non-Euclidean manifold", func() {
			c := control.NewConstantFrom[attitude, float32, dynamo.ContinuousTime](dynamo.Vector[float32]{0.25, -1})
			got := c.ComputeControl(attitude{q: [4]float32{1, 0, 0, 0}}, 3, nil)
			Expect(got.Equal(dynamo.Vector[float32]{0.25, -1})).To(BeTrue())

			var clone control.Controller[attitude, float32, dynamo.ContinuousTime] = c.Clone()
			du0, err := control.DerivativeU0(clone, attitude{}, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(du0.Entry(1, 1)).To(Equal(float32(1)))
		})
	})
})

var _ = Describe("DerivativeU0", func() {
	It("reports unsupported for controllers without the capability", func() {
		lqr := control.NewPendulumLQR()
		var c control.Controller[dynamo.State, float64, dynamo.ContinuousTime] = lqr
		du0, err := control.DerivativeU0(c, dynamo.State{0.1, 0}, 0)
		Expect(err).To(MatchError(control.ErrDerivativeUnsupported))
		Expect(du0).To(BeNil())
	})
})
