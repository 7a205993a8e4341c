package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/dynctl/internal/control"
	"github.com/san-kum/dynctl/internal/dynamo"
)

type constantController = control.Constant[dynamo.State, float64, dynamo.ContinuousTime]

func TestEnsembleClonesController(t *testing.T) {
	base := newConstant(1.0)
	sim := New(&testDynamics{}, &testIntegrator{}, base)

	ens := NewEnsemble(sim, 6)
	results, err := ens.Run(context.Background(), dynamo.State{0}, Config{Dt: 0.01, Duration: 10.0},
		func(run int, ctrl Controller) error {
			return ctrl.(*constantController).SetControl(dynamo.Control{float64(run)})
		})
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}

	for run, res := range results {
		final := res.States[len(res.States)-1][0]
		if math.Abs(final-float64(run)) > 1e-2 {
			t.Errorf("run %d: expected ~%d, got %f", run, run, final)
		}
	}

	if !base.Control().Equal(dynamo.Control{1.0}) {
		t.Errorf("base controller mutated by ensemble: %v", base.Control())
	}
}

func TestEnsemblePrepareError(t *testing.T) {
	sim := New(&testDynamics{}, &testIntegrator{}, newConstant(1.0))

	_, err := NewEnsemble(sim, 3).Run(context.Background(), dynamo.State{0}, Config{Dt: 0.1, Duration: 1.0},
		func(run int, ctrl Controller) error {
			return ctrl.(*constantController).SetControl(dynamo.Control{1, 2})
		})
	if !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

type countingMetric struct{ n int }

func (c *countingMetric) Name() string                                  { return "count" }
func (c *countingMetric) Observe(dynamo.State, dynamo.Control, float64) { c.n++ }
func (c *countingMetric) Value() float64                                { return float64(c.n) }
func (c *countingMetric) Reset()                                        { c.n = 0 }
func (c *countingMetric) CloneMetric() Metric                           { return &countingMetric{} }

func TestSimulatorClone(t *testing.T) {
	m := &countingMetric{}
	sim := New(&testDynamics{}, &testIntegrator{}, newConstant(1.0))
	sim.AddMetric(m)
	sim.AddMetric(&testMetric{})

	dup := sim.Clone()
	if dup.Controller() == sim.Controller() {
		t.Fatal("clone shares controller")
	}
	if len(dup.metrics) != 1 {
		t.Fatalf("expected only cloneable metrics to be carried, got %d", len(dup.metrics))
	}

	res, err := dup.Run(context.Background(), dynamo.State{0}, Config{Dt: 0.1, Duration: 1.0})
	if err != nil {
		t.Fatal(err)
	}
	if res.Metrics["count"] != 10 {
		t.Errorf("expected 10 observations, got %f", res.Metrics["count"])
	}
	if m.n != 0 {
		t.Error("original metric observed the cloned run")
	}
}
