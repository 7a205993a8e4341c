package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/dynctl/internal/config"
	"github.com/san-kum/dynctl/internal/experiment"
	"github.com/san-kum/dynctl/internal/sim"
)

var (
	configFile string
	preset     string
	verbose    bool
	dt         float64
	duration   float64
	integrator string
	controller string
	u          []float64
	initState  []float64
	target     float64
	params     map[string]string
	runs       int
	spread     float64
	plotIndex  int
	formula    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "dynctl",
		Short:         "controller playground for dynamical systems",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	rootCmd.PersistentFlags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	rootCmd.PersistentFlags().StringVar(&integrator, "integrator", "rk4", "integrator")
	rootCmd.PersistentFlags().StringVar(&controller, "controller", "constant", "controller")
	rootCmd.PersistentFlags().Float64SliceVar(&u, "u", nil, "constant control action")
	rootCmd.PersistentFlags().Float64SliceVar(&initState, "x0", nil, "initial state")
	rootCmd.PersistentFlags().Float64Var(&target, "target", 0.0, "pd target")
	rootCmd.PersistentFlags().StringToStringVar(&params, "param", nil, "controller parameter, e.g. --param kp=3,kd=1")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run a single simulation",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().IntVar(&plotIndex, "plot", 0, "state index to plot")

	rolloutCmd := &cobra.Command{
		Use:   "rollout [model]",
		Short: "run parallel rollouts with cloned controllers",
		Args:  cobra.ExactArgs(1),
		RunE:  runRollout,
	}
	rolloutCmd.Flags().IntVar(&runs, "runs", config.DefaultRuns, "number of rollouts")
	rolloutCmd.Flags().Float64Var(&spread, "spread", 0.1, "control offset between rollouts")

	sensCmd := &cobra.Command{
		Use:   "sensitivity [model]",
		Short: "final state sensitivity to the initial control",
		Args:  cobra.ExactArgs(1),
		RunE:  runSensitivity,
	}
	sensCmd.Flags().StringVar(&formula, "formula", "central", "jacobian difference scheme: central, forward or backward")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			sort.Strings(presets)
			fmt.Println(titleStyle.Render("presets for " + args[0]))
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list models and controllers",
		Run: func(cmd *cobra.Command, args []string) {
			reg := experiment.NewRegistry()
			fmt.Println(metricLineText("models", strings.Join(reg.ListModels(), ", ")))
			fmt.Println(metricLineText("controllers", strings.Join(reg.ListControllers(), ", ")))
		},
	}

	rootCmd.AddCommand(runCmd, rolloutCmd, sensCmd, presetsCmd, modelsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewNop(), nil
}

// loadConfig layers preset, config file and explicitly set flags, in that
// order of increasing precedence. A config file only replaces the keys it
// sets, so it can refine a preset.
func loadConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
		c := p.Clone()
		c.Ensemble = cfg.Ensemble
		c.Sensitivity = cfg.Sensitivity
		cfg = c
	}

	if configFile != "" {
		fileCfg, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = fileCfg
	}

	cfg.Model = model
	flags := cmd.Flags()
	if flags.Changed("dt") || (preset == "" && configFile == "") {
		cfg.Dt = dt
	}
	if flags.Changed("time") || (preset == "" && configFile == "") {
		cfg.Duration = duration
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("controller") {
		cfg.Controller = controller
	}
	if flags.Changed("u") {
		cfg.ControllerParams.U = u
	}
	if flags.Changed("x0") {
		cfg.InitState = initState
	}
	if flags.Changed("target") {
		cfg.ControllerParams.Target = target
	}
	if flags.Changed("param") {
		if cfg.ControllerParams.Params == nil {
			cfg.ControllerParams.Params = make(map[string]float64, len(params))
		}
		for name, raw := range params {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("param %s: %w", name, err)
			}
			cfg.ControllerParams.Params[name] = v
		}
	}
	if flags.Lookup("formula") != nil && flags.Changed("formula") {
		cfg.Sensitivity.Formula = formula
	}
	if flags.Lookup("runs") != nil && flags.Changed("runs") {
		cfg.Ensemble.Runs = runs
	}
	if flags.Lookup("spread") != nil && flags.Changed("spread") {
		cfg.Ensemble.Spread = spread
	}
	return cfg, nil
}

func setup(cmd *cobra.Command, args []string) (*experiment.Experiment, *config.Config, *zap.Logger, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, nil, nil, err
	}
	cfg, err := loadConfig(cmd, args[0])
	if err != nil {
		return nil, nil, nil, err
	}
	exp, err := experiment.New(cfg, experiment.NewRegistry(), logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return exp, cfg, logger, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	exp, cfg, logger, err := setup(cmd, args)
	if err != nil {
		return err
	}
	defer logger.Sync()

	fmt.Printf("running %s simulation with %s controller...\n", cfg.Model, cfg.Controller)
	start := time.Now()

	result, err := exp.Run(context.Background())
	if err != nil {
		return err
	}

	printSummary(cfg, result, time.Since(start))
	return plotState(result, plotIndex)
}

func printSummary(cfg *config.Config, result *sim.Result, elapsed time.Duration) {
	lines := []string{
		titleStyle.Render(cfg.Model + " / " + cfg.Controller),
		metricLineText("elapsed", elapsed.String()),
		metricLineText("steps", strconv.Itoa(result.StepsTaken)),
		metricLineText("final state", fmt.Sprint(result.States[len(result.States)-1])),
	}
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		lines = append(lines, metricLine(name, result.Metrics[name]))
	}
	fmt.Println(panelStyle.Render(strings.Join(lines, "\n")))
}

func plotState(result *sim.Result, idx int) error {
	if len(result.States) == 0 {
		return nil
	}
	if idx < 0 || idx >= len(result.States[0]) {
		return fmt.Errorf("state index %d out of range [0, %d)", idx, len(result.States[0]))
	}
	data := make([]float64, len(result.States))
	for i, s := range result.States {
		data[i] = s[idx]
	}
	graph := asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("x%d", idx)),
	)
	fmt.Println(graph)
	return nil
}

func runRollout(cmd *cobra.Command, args []string) error {
	exp, cfg, logger, err := setup(cmd, args)
	if err != nil {
		return err
	}
	defer logger.Sync()

	fmt.Printf("running %d %s rollouts...\n", cfg.Ensemble.Runs, cfg.Model)
	start := time.Now()

	results, err := exp.RunEnsemble(context.Background())
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("%d rollouts in %v", len(results), time.Since(start))))
	finals := make([][]float64, len(results))
	for i, res := range results {
		final := res.States[len(res.States)-1]
		finals[i] = final
		u0 := "[]"
		if len(res.Controls) > 0 {
			u0 = fmt.Sprint(res.Controls[0])
		}
		fmt.Printf("  %s u=%s x(T)=%v\n", labelStyle.Render(fmt.Sprintf("run %d", i)), u0, final)
	}

	if len(finals) > 1 {
		series := make([][]float64, 0, len(finals[0]))
		for j := range finals[0] {
			col := make([]float64, len(finals))
			for i := range finals {
				col[i] = finals[i][j]
			}
			series = append(series, col)
		}
		fmt.Println(asciigraph.PlotMany(series,
			asciigraph.Height(10),
			asciigraph.Caption("final state per rollout"),
		))
	}
	return nil
}

func runSensitivity(cmd *cobra.Command, args []string) error {
	exp, cfg, logger, err := setup(cmd, args)
	if err != nil {
		return err
	}
	defer logger.Sync()

	res, err := exp.Sensitivity(context.Background())
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("dx(T)/du0 for %s at T=%.3f (%s differences)",
		cfg.Model, res.Times[len(res.Times)-1], cfg.Sensitivity.Formula)))
	fmt.Printf("%v\n", mat.Formatted(res.Final(), mat.Prefix(""), mat.Squeeze()))
	return nil
}

func metricLineText(name, value string) string {
	return labelStyle.Render(name+":") + " " + valueStyle.Render(value)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
