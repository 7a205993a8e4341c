package config

var Presets = map[string]map[string]*Config{
	"pendulum": {
		"hold": {
			Model: "pendulum", Integrator: "rk4", Controller: "constant", Dt: 0.01, Duration: 20.0,
			InitState:        []float64{0, 0},
			ControllerParams: ControllerConfig{U: []float64{4.905}},
		},
		"swing": {
			Model: "pendulum", Integrator: "rk4", Controller: "constant", Dt: 0.01, Duration: 20.0,
			InitState: []float64{1.0, 0},
		},
		"balance": {
			Model: "pendulum", Integrator: "rk4", Controller: "lqr", Dt: 0.01, Duration: 10.0,
			InitState: []float64{0.5, 0},
		},
	},
	"spring_mass": {
		"push": {
			Model: "spring_mass", Integrator: "rk4", Controller: "constant", Dt: 0.01, Duration: 20.0,
			InitState:        []float64{0, 0},
			ControllerParams: ControllerConfig{U: []float64{2.0}},
		},
		"regulate": {
			Model: "spring_mass", Integrator: "rk4", Controller: "pd", Dt: 0.01, Duration: 20.0,
			InitState: []float64{1.0, 0},
			ControllerParams: ControllerConfig{
				Target: 0.5,
				Params: map[string]float64{"kp": 10, "kd": 2},
			},
		},
	},
	"drone": {
		"hover": {
			Model: "drone", Integrator: "rk4", Controller: "trim", Dt: 0.01, Duration: 10.0,
			InitState: []float64{0, 5, 0, 0, 0, 0},
		},
		"drop": {
			Model: "drone", Integrator: "rk4", Controller: "constant", Dt: 0.01, Duration: 1.0,
			InitState: []float64{0, 10, 0, 0, 0, 0},
		},
	},
}

func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	return names
}
