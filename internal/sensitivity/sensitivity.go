package sensitivity

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/dynctl/internal/control"
	"github.com/san-kum/dynctl/internal/dynamo"
	"github.com/san-kum/dynctl/internal/sim"
)

// ErrNoControl is returned for controllers with zero control dimension.
var ErrNoControl = errors.New("sensitivity: controller has no inputs")

type Analyzer struct {
	dyn      sim.Dynamics
	integ    sim.Integrator
	settings *fd.JacobianSettings
	logger   *zap.Logger
}

type Option func(*Analyzer)

func WithLogger(l *zap.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

// WithJacobianSettings overrides the finite-difference settings used for
// the state and input Jacobians. Central differences are the default.
func WithJacobianSettings(s *fd.JacobianSettings) Option {
	return func(a *Analyzer) { a.settings = s }
}

func New(dyn sim.Dynamics, integ sim.Integrator, opts ...Option) *Analyzer {
	a := &Analyzer{
		dyn:      dyn,
		integ:    integ,
		settings: &fd.JacobianSettings{Formula: fd.Central},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type Result struct {
	Times  []float64
	States []dynamo.State
	// Sensitivities[k] is dx(Times[k])/du0, StateDim x ControlDim.
	Sensitivities []*mat.Dense
}

// Final returns the sensitivity at the end of the horizon.
func (r *Result) Final() *mat.Dense {
	return r.Sensitivities[len(r.Sensitivities)-1]
}

// Propagate integrates the state and its sensitivity to the controller's
// initial control over cfg.Duration. The controller is not modified.
func (a *Analyzer) Propagate(ctx context.Context, ctrl sim.Controller, x0 dynamo.State, cfg sim.Config) (*Result, error) {
	n, m := a.dyn.StateDim(), a.dyn.ControlDim()
	if err := validate(n, m, ctrl, x0, cfg); err != nil {
		return nil, err
	}

	aug := &augmented{dyn: a.dyn, n: n, m: m, settings: a.settings}
	steps := int(math.Round(cfg.Duration / cfg.Dt))

	z := make(dynamo.State, n+n*m)
	copy(z, x0)
	u := dynamo.NewVector[float64](m)

	res := &Result{
		Times:         make([]float64, 0, steps+1),
		States:        make([]dynamo.State, 0, steps+1),
		Sensitivities: make([]*mat.Dense, 0, steps+1),
	}
	res.record(0, z, n, m)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		t := float64(i) * cfg.Dt
		x := z[:n]
		u = ctrl.ComputeControl(x, dynamo.ContinuousTime(t), u)

		du0, err := control.DerivativeU0(ctrl, x, dynamo.ContinuousTime(t))
		if err != nil {
			return nil, fmt.Errorf("sensitivity: step %d: %w", i, err)
		}
		aug.du0 = du0.Dense()

		z = a.integ.Step(aug, z, u, t, cfg.Dt)
		if !z.IsValid() {
			a.logger.Warn("sensitivity diverged", zap.Int("step", i), zap.Float64("t", t))
			return res, &dynamo.SimulationError{Step: i, Time: t, Wrapped: dynamo.ErrInvalidState}
		}
		res.record(float64(i+1)*cfg.Dt, z, n, m)
	}

	a.logger.Debug("sensitivity propagated",
		zap.Int("steps", steps),
		zap.Int("state_dim", n),
		zap.Int("control_dim", m))

	return res, nil
}

func validate(n, m int, ctrl sim.Controller, x0 dynamo.State, cfg sim.Config) error {
	if cfg.Dt <= 0 || cfg.Duration <= 0 {
		return fmt.Errorf("sensitivity: dt and duration must be positive: %w", dynamo.ErrParameterBounds)
	}
	if len(x0) != n {
		return fmt.Errorf("sensitivity: %w", &dynamo.DimensionError{What: "state", Want: n, Got: len(x0)})
	}
	if ctrl.ControlDim() != m {
		return fmt.Errorf("sensitivity: %w", &dynamo.DimensionError{What: "control", Want: m, Got: ctrl.ControlDim()})
	}
	if m == 0 {
		return ErrNoControl
	}
	return nil
}

func (r *Result) record(t float64, z dynamo.State, n, m int) {
	r.Times = append(r.Times, t)
	r.States = append(r.States, z[:n].Clone())
	s := make([]float64, n*m)
	copy(s, z[n:])
	r.Sensitivities = append(r.Sensitivities, mat.NewDense(n, m, s))
}

// augmented stacks the state and the row-major sensitivity matrix into
// one vector so any sim.Integrator can step them together.
type augmented struct {
	dyn      sim.Dynamics
	n, m     int
	du0      *mat.Dense
	settings *fd.JacobianSettings
}

func (a *augmented) StateDim() int   { return a.n + a.n*a.m }
func (a *augmented) ControlDim() int { return a.m }

func (a *augmented) Derivative(z dynamo.State, u dynamo.Control, t float64) dynamo.State {
	x := z[:a.n]
	s := mat.NewDense(a.n, a.m, z[a.n:a.n+a.n*a.m])

	jx := mat.NewDense(a.n, a.n, nil)
	fd.Jacobian(jx, func(y, xp []float64) {
		copy(y, a.dyn.Derivative(xp, u, t))
	}, x, a.settings)

	ju := mat.NewDense(a.n, a.m, nil)
	fd.Jacobian(ju, func(y, up []float64) {
		copy(y, a.dyn.Derivative(x, up, t))
	}, u, a.settings)

	var ds, bd mat.Dense
	ds.Mul(jx, s)
	bd.Mul(ju, a.du0)
	ds.Add(&ds, &bd)

	out := make(dynamo.State, a.n+a.n*a.m)
	copy(out, a.dyn.Derivative(x, u, t))
	for i := 0; i < a.n; i++ {
		for j := 0; j < a.m; j++ {
			out[a.n+i*a.m+j] = ds.At(i, j)
		}
	}
	return out
}
