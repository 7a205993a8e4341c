package control

import (
	"errors"
	"sync"
	"testing"

	"github.com/san-kum/dynctl/internal/dynamo"
)

func newTestPD() *PD[testState, float64, testTime] {
	return NewPD[testState, float64, testTime](10.0, 5.0, 0.0)
}

func TestPD(t *testing.T) {
	ctrl := newTestPD()
	u := ctrl.ComputeControl(dynamo.State{1.0, 0.0}, 0, nil)
	if len(u) != 1 {
		t.Fatalf("expected 1 control, got %d", len(u))
	}
	if u[0] != -10 {
		t.Errorf("u = %v, want [-10]", u)
	}

	u = ctrl.ComputeControl(dynamo.State{0, 2}, 0, u)
	if u[0] != -10 {
		t.Errorf("damping term: u = %v, want [-10]", u)
	}

	u = ctrl.ComputeControl(dynamo.State{-1}, 0, u)
	if u[0] != 10 {
		t.Errorf("single coordinate: u = %v, want [10]", u)
	}
}

func TestPDRepeatable(t *testing.T) {
	ctrl := newTestPD()
	ctrl.ComputeControl(dynamo.State{1.0, 0.0}, 0, nil)
	ctrl.ComputeControl(dynamo.State{0.8, 0.0}, 0.1, nil)

	got := ctrl.ComputeControl(dynamo.State{1, 0}, 1, nil)
	want := newTestPD().ComputeControl(dynamo.State{1, 0}, 1, nil)
	if !got.Equal(want) {
		t.Errorf("history changed the action: %v vs fresh %v", got, want)
	}
}

func TestPDConcurrent(t *testing.T) {
	ctrl := newTestPD()
	want := ctrl.ComputeControl(dynamo.State{0.5, -1}, 0, nil)

	var wg sync.WaitGroup
	errs := make(chan dynamo.Vector[float64], 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u := dynamo.NewVector[float64](1)
			for k := 0; k < 100; k++ {
				u = ctrl.ComputeControl(dynamo.State{0.5, -1}, testTime(k), u)
				if !u.Equal(want) {
					errs <- u.Clone()
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for u := range errs {
		t.Errorf("concurrent call returned %v, want %v", u, want)
	}
}

func TestPDCloneIndependent(t *testing.T) {
	ctrl := newTestPD()
	clone := ctrl.Clone()

	if err := ctrl.SetParam("kp", 1.0); err != nil {
		t.Fatal(err)
	}
	if clone.(*PD[testState, float64, testTime]).Kp != 10.0 {
		t.Error("SetParam on original leaked into clone")
	}
}

func TestPDParams(t *testing.T) {
	var ctrl dynamo.Configurable = newTestPD()

	if err := ctrl.SetParam("target", 2.0); err != nil {
		t.Fatalf("SetParam failed: %v", err)
	}
	if got := ctrl.GetParams()["target"]; got != 2.0 {
		t.Errorf("target = %f, want 2.0", got)
	}

	err := ctrl.SetParam("ki", 1.0)
	if !errors.Is(err, dynamo.ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
}

func TestPDNoDerivative(t *testing.T) {
	_, err := DerivativeU0[testState](Controller[testState, float64, testTime](newTestPD()), dynamo.State{0}, 0)
	if !errors.Is(err, ErrDerivativeUnsupported) {
		t.Errorf("expected ErrDerivativeUnsupported, got %v", err)
	}
}
