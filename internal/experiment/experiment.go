package experiment

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/diff/fd"

	"github.com/san-kum/dynctl/internal/config"
	"github.com/san-kum/dynctl/internal/dynamo"
	"github.com/san-kum/dynctl/internal/sensitivity"
	"github.com/san-kum/dynctl/internal/sim"
)

// Experiment wires a model, an integrator and a controller from a Config.
type Experiment struct {
	cfg        *config.Config
	dyn        sim.Dynamics
	integrator sim.Integrator
	controller sim.Controller
	simulator  *sim.Simulator
	logger     *zap.Logger
}

func New(cfg *config.Config, reg *Registry, logger *zap.Logger) (*Experiment, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dyn, err := reg.GetModel(cfg.Model)
	if err != nil {
		return nil, err
	}
	integ, err := reg.GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	ctrl, err := reg.GetController(cfg.Controller, dyn, cfg.ControllerParams)
	if err != nil {
		return nil, fmt.Errorf("controller %s: %w", cfg.Controller, err)
	}

	s := sim.New(dyn, integ, ctrl, sim.WithLogger(logger))
	for _, m := range reg.DefaultMetrics(dyn) {
		s.AddMetric(m)
	}

	logger.Debug("experiment set up",
		zap.String("model", cfg.Model),
		zap.String("integrator", cfg.Integrator),
		zap.String("controller", cfg.Controller),
		zap.Int("control_dim", ctrl.ControlDim()))

	return &Experiment{
		cfg:        cfg,
		dyn:        dyn,
		integrator: integ,
		controller: ctrl,
		simulator:  s,
		logger:     logger,
	}, nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	return e.simulator.Run(ctx, e.cfg.GetInitState(), e.cfg.SimConfig())
}

// RunEnsemble runs cfg.Ensemble.Runs cloned rollouts. Constant controllers
// get their action offset by run*Spread on every input.
func (e *Experiment) RunEnsemble(ctx context.Context) ([]*sim.Result, error) {
	runs := e.cfg.Ensemble.Runs
	if runs <= 0 {
		return nil, fmt.Errorf("ensemble runs must be positive, got %d: %w", runs, dynamo.ErrParameterBounds)
	}
	spread := e.cfg.Ensemble.Spread

	prepare := func(run int, ctrl sim.Controller) error {
		setter, ok := ctrl.(interface {
			Control() dynamo.Vector[float64]
			SetControl(dynamo.Vector[float64]) error
		})
		if !ok {
			return nil
		}
		u := setter.Control()
		for i := range u {
			u[i] += float64(run) * spread
		}
		return setter.SetControl(u)
	}

	return sim.NewEnsemble(e.simulator, runs).Run(ctx, e.cfg.GetInitState(), e.cfg.SimConfig(), prepare)
}

// Sensitivity propagates dx/du0 for the configured controller using the
// difference scheme of cfg.Sensitivity.
func (e *Experiment) Sensitivity(ctx context.Context) (*sensitivity.Result, error) {
	formula, err := differenceFormula(e.cfg.Sensitivity.Formula)
	if err != nil {
		return nil, err
	}
	integ := e.integrator
	if c, ok := integ.(sim.IntegratorCloner); ok {
		integ = c.CloneIntegrator()
	}
	a := sensitivity.New(e.dyn, integ,
		sensitivity.WithLogger(e.logger),
		sensitivity.WithJacobianSettings(&fd.JacobianSettings{
			Formula: formula,
			Step:    e.cfg.Sensitivity.Step,
		}))
	return a.Propagate(ctx, e.controller, e.cfg.GetInitState(), e.cfg.SimConfig())
}

func differenceFormula(name string) (fd.Formula, error) {
	switch name {
	case "", "central":
		return fd.Central, nil
	case "forward":
		return fd.Forward, nil
	case "backward":
		return fd.Backward, nil
	}
	return fd.Formula{}, fmt.Errorf("unknown difference formula %q (central, forward, backward): %w", name, dynamo.ErrParameterBounds)
}
