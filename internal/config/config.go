package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/dynctl/internal/sim"
)

const (
	DefaultDt       = 0.01
	DefaultDuration = 10.0
	DefaultKp       = 10.0
	DefaultKd       = 5.0
	DefaultRuns     = 4
)

type Config struct {
	Model            string            `yaml:"model"`
	Integrator       string            `yaml:"integrator"`
	Controller       string            `yaml:"controller"`
	Dt               float64           `yaml:"dt"`
	Duration         float64           `yaml:"duration"`
	InitState        []float64         `yaml:"init_state"`
	ControllerParams ControllerConfig  `yaml:"controller_params"`
	Ensemble         EnsembleConfig    `yaml:"ensemble"`
	Sensitivity      SensitivityConfig `yaml:"sensitivity"`
}

// ControllerConfig parameterizes the registry factories. U is the fixed
// action of the constant controller; empty means zero. Params are applied
// by name to configurable controllers after construction, e.g. {kp: 3}
// for pd.
type ControllerConfig struct {
	U      []float64          `yaml:"u"`
	Target float64            `yaml:"target"`
	Params map[string]float64 `yaml:"params"`
}

// EnsembleConfig configures parallel rollouts; run i applies
// U + i*Spread to every input.
type EnsembleConfig struct {
	Runs   int     `yaml:"runs"`
	Spread float64 `yaml:"spread"`
}

// SensitivityConfig selects the finite-difference scheme for the state and
// input Jacobians. Formula is one of central, forward or backward; a zero
// Step lets the formula pick its own.
type SensitivityConfig struct {
	Formula string  `yaml:"formula"`
	Step    float64 `yaml:"step"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:      "pendulum",
		Integrator: "rk4",
		Controller: "constant",
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Ensemble: EnsembleConfig{
			Runs:   DefaultRuns,
			Spread: 0.1,
		},
		Sensitivity: SensitivityConfig{Formula: "central"},
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads path on top of a copy of base: keys present in the file
// replace base values, absent keys keep them. base is not modified.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.InitState = append([]float64(nil), c.InitState...)
	out.ControllerParams.U = append([]float64(nil), c.ControllerParams.U...)
	if c.ControllerParams.Params != nil {
		out.ControllerParams.Params = make(map[string]float64, len(c.ControllerParams.Params))
		for k, v := range c.ControllerParams.Params {
			out.ControllerParams.Params[k] = v
		}
	}
	return &out
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SimConfig returns the simulator settings of c.
func (c *Config) SimConfig() sim.Config {
	cfg := sim.DefaultConfig()
	cfg.Dt = c.Dt
	cfg.Duration = c.Duration
	return cfg
}

// GetInitState returns the configured initial state, falling back to a
// per-model default.
func (c *Config) GetInitState() []float64 {
	if len(c.InitState) > 0 {
		return append([]float64(nil), c.InitState...)
	}
	switch c.Model {
	case "spring_mass":
		return []float64{1.0, 0}
	case "drone":
		return []float64{0, 5, 0, 0, 0, 0}
	default:
		return []float64{0.5, 0}
	}
}
