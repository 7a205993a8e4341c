package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/dynctl/internal/config"
	"github.com/san-kum/dynctl/internal/control"
	"github.com/san-kum/dynctl/internal/dynamo"
	"github.com/san-kum/dynctl/internal/integrators"
	"github.com/san-kum/dynctl/internal/metrics"
	"github.com/san-kum/dynctl/internal/models"
	"github.com/san-kum/dynctl/internal/sim"
)

// ControllerFactory builds a controller for dyn.
type ControllerFactory func(dyn sim.Dynamics, params config.ControllerConfig) (sim.Controller, error)

type Registry struct {
	models      map[string]func() sim.Dynamics
	integrators map[string]func() sim.Integrator
	controllers map[string]ControllerFactory
}

func NewRegistry() *Registry {
	r := &Registry{
		models:      make(map[string]func() sim.Dynamics),
		integrators: make(map[string]func() sim.Integrator),
		controllers: make(map[string]ControllerFactory),
	}

	r.models["pendulum"] = func() sim.Dynamics { return models.NewPendulum() }
	r.models["spring_mass"] = func() sim.Dynamics { return models.NewSpringMass() }
	r.models["drone"] = func() sim.Dynamics { return models.NewDrone() }

	r.integrators["euler"] = func() sim.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() sim.Integrator { return integrators.NewRK4() }

	r.controllers["constant"] = newConstant
	r.controllers["none"] = func(dyn sim.Dynamics, _ config.ControllerConfig) (sim.Controller, error) {
		return control.NewConstant[dynamo.State, float64, dynamo.ContinuousTime](dyn.ControlDim()), nil
	}
	r.controllers["trim"] = func(dyn sim.Dynamics, _ config.ControllerConfig) (sim.Controller, error) {
		t, ok := dyn.(sim.Trimmer)
		if !ok {
			return nil, fmt.Errorf("trim: model has no equilibrium input")
		}
		return control.NewConstantFrom[dynamo.State, float64, dynamo.ContinuousTime](t.Trim()), nil
	}
	r.controllers["pd"] = func(dyn sim.Dynamics, p config.ControllerConfig) (sim.Controller, error) {
		if dim := dyn.ControlDim(); dim != 1 {
			return nil, fmt.Errorf("pd: %w", &dynamo.DimensionError{What: "control", Want: dim, Got: 1})
		}
		return control.NewPD[dynamo.State, float64, dynamo.ContinuousTime](config.DefaultKp, config.DefaultKd, p.Target), nil
	}
	r.controllers["lqr"] = func(dyn sim.Dynamics, _ config.ControllerConfig) (sim.Controller, error) {
		if dim := dyn.ControlDim(); dim != 1 {
			return nil, fmt.Errorf("lqr: %w", &dynamo.DimensionError{What: "control", Want: dim, Got: 1})
		}
		return control.NewPendulumLQR(), nil
	}

	return r
}

func newConstant(dyn sim.Dynamics, p config.ControllerConfig) (sim.Controller, error) {
	c := control.NewConstant[dynamo.State, float64, dynamo.ContinuousTime](dyn.ControlDim())
	if len(p.U) == 0 {
		return c, nil
	}
	if err := c.SetControl(p.U); err != nil {
		return nil, err
	}
	return c, nil
}

// configure applies params by name, in sorted order, to a controller that
// implements dynamo.Configurable.
func configure(ctrl sim.Controller, params map[string]float64) error {
	if len(params) == 0 {
		return nil
	}
	c, ok := ctrl.(dynamo.Configurable)
	if !ok {
		return fmt.Errorf("controller takes no params: %w", dynamo.ErrUnknownParam)
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := c.SetParam(name, params[name]); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) GetModel(name string) (sim.Dynamics, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetIntegrator(name string) (sim.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

// GetController builds the named controller for dyn and applies
// params.Params to it.
func (r *Registry) GetController(name string, dyn sim.Dynamics, params config.ControllerConfig) (sim.Controller, error) {
	fn, ok := r.controllers[name]
	if !ok {
		return nil, fmt.Errorf("unknown controller: %s", name)
	}
	ctrl, err := fn(dyn, params)
	if err != nil {
		return nil, err
	}
	if err := configure(ctrl, params.Params); err != nil {
		return nil, err
	}
	return ctrl, nil
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListControllers() []string {
	names := make([]string, 0, len(r.controllers))
	for name := range r.controllers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics(dyn sim.Dynamics) []sim.Metric {
	return []sim.Metric{
		metrics.NewEnergyDrift(dyn),
		metrics.NewStability(10.0),
		metrics.NewControlEffort(),
	}
}
