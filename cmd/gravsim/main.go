package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/san-kum/gravsim/internal/analysis"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/export"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/stream"
	"github.com/san-kum/gravsim/internal/viz"
)

// scenarioFlags are the settings every simulation command accepts. A flag
// only overrides the scenario when it was set on the command line.
type scenarioFlags struct {
	configFile string
	g          float64
	dt         float64
	steps      int
	pace       time.Duration
	policy     string
	scheme     string
	softening  float64
	validate   bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	sf := &scenarioFlags{}

	rootCmd := &cobra.Command{
		Use:          "gravsim",
		Short:        "gravitational n-body simulator",
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&sf.configFile, "config", "", "scenario file (yaml)")
	pf.Float64Var(&sf.g, "g", physics.G, "gravitational constant")
	pf.Float64Var(&sf.dt, "dt", config.DefaultDt, "time delta per tick")
	pf.IntVar(&sf.steps, "steps", 0, "number of ticks (0 = scenario value)")
	pf.DurationVar(&sf.pace, "pace", time.Millisecond, "wall-clock interval between ticks (0 = as fast as possible)")
	pf.StringVar(&sf.policy, "policy", config.DefaultPolicy, "coincident bodies: skip, soften, fail, propagate")
	pf.StringVar(&sf.scheme, "scheme", config.DefaultScheme, "velocity update: current, lagged, reference")
	pf.Float64Var(&sf.softening, "softening", 0, "softening length for the soften policy")
	pf.BoolVar(&sf.validate, "validate", false, "stop when the state becomes non-finite")

	rootCmd.AddCommand(
		newRunCmd(sf),
		newPlotCmd(sf),
		newAnalyzeCmd(sf),
		newLiveCmd(sf),
		newServeCmd(sf),
		newCompareCmd(sf),
		newPresetsCmd(),
		newBenchCmd(),
	)

	return rootCmd
}

// loadScenario resolves the scenario from --config or the preset argument
// (default binary), then applies explicitly set flags.
func loadScenario(cmd *cobra.Command, args []string, sf *scenarioFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case sf.configFile != "" && len(args) > 0:
		return nil, fmt.Errorf("use either --config or a preset name, not both")
	case sf.configFile != "":
		cfg, err = config.Load(sf.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	case len(args) > 0:
		cfg, err = config.MustPreset(args[0])
		if err != nil {
			return nil, err
		}
	default:
		cfg = config.DefaultConfig()
	}

	changed := func(name string) bool {
		f := cmd.Flag(name)
		return f != nil && f.Changed
	}
	if changed("g") {
		cfg.G = sf.g
	}
	if changed("dt") {
		cfg.Dt = sf.dt
	}
	if changed("steps") {
		cfg.Steps = sf.steps
	}
	if changed("pace") {
		cfg.Pace = sf.pace.String()
	}
	if changed("policy") {
		cfg.Policy = sf.policy
	}
	if changed("scheme") {
		cfg.Scheme = sf.scheme
	}
	if changed("softening") {
		cfg.Softening = sf.softening
	}
	if changed("validate") {
		cfg.ValidateState = sf.validate
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newRunCmd(sf *scenarioFlags) *cobra.Command {
	var (
		format string
		every  int
	)
	cmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a scenario, printing every tick",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadScenario(cmd, args, sf)
			if err != nil {
				return err
			}
			if every < 1 {
				return fmt.Errorf("--every must be at least 1")
			}
			sys, err := cfg.Build()
			if err != nil {
				return err
			}
			runCfg, err := cfg.RunConfig()
			if err != nil {
				return err
			}
			sim, err := dynamo.New(sys, runCfg)
			if err != nil {
				return err
			}

			printer, err := export.NewPrinter(format, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			sim.AddObserver(dynamo.ObserverFunc(func(f dynamo.Frame) error {
				if f.Step%every != 0 {
					return nil
				}
				return printer.OnStep(f)
			}))
			for _, m := range metrics.Defaults(sys) {
				sim.AddMetric(m)
			}

			ctx, cancel := signalContext()
			defer cancel()

			start := time.Now()
			result, err := sim.Run(ctx)
			printSummary(cmd.ErrOrStderr(), cfg.Name, result, time.Since(start))
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, csv, json")
	cmd.Flags().IntVar(&every, "every", 1, "print every n-th tick")
	return cmd
}

func printSummary(w io.Writer, name string, result *dynamo.Result, elapsed time.Duration) {
	fmt.Fprintf(w, "\n%s: %d steps, t=%g, %v\n", name, result.StepsTaken, result.Time, elapsed.Round(time.Millisecond))

	names := make([]string, 0, len(result.Metrics))
	for n := range result.Metrics {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(w, "  %s: %.6g\n", n, result.Metrics[n])
	}
}

// record runs the scenario unpaced and samples one value per frame,
// including the initial state.
func record(cfg *config.Config, steps int, sample func(sys *physics.System) float64) ([]float64, error) {
	sys, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	sim, err := dynamo.New(sys, dynamo.Config{Dt: cfg.Dt, Steps: steps, ValidateState: cfg.ValidateState})
	if err != nil {
		return nil, err
	}

	data := make([]float64, 0, steps+1)
	data = append(data, sample(sys))
	sim.AddObserver(dynamo.ObserverFunc(func(dynamo.Frame) error {
		data = append(data, sample(sys))
		return nil
	}))

	if _, err := sim.Run(context.Background()); err != nil {
		return data, err
	}
	return data, nil
}

// sampler returns the series extractor for plot and analyze. n is the
// number of bodies in the scenario.
func sampler(series string, body, other, n int) (func(*physics.System) float64, string, error) {
	inRange := func(i int) bool { return i >= 0 && i < n }
	switch series {
	case "separation":
		if !inRange(other) || other == body {
			return nil, "", fmt.Errorf("invalid second body index %d", other)
		}
		fallthrough
	case "x", "y", "z":
		if !inRange(body) {
			return nil, "", fmt.Errorf("body index %d out of range [0, %d)", body, n)
		}
	}
	coord := func(sys *physics.System, axis int) float64 {
		return sys.Body(body).Pos.Slice()[axis]
	}

	switch series {
	case "energy":
		return func(s *physics.System) float64 { return s.Energy() }, "total energy", nil
	case "kinetic":
		return func(s *physics.System) float64 { return s.KineticEnergy() }, "kinetic energy", nil
	case "momentum":
		return func(s *physics.System) float64 { return s.Momentum().Magnitude() }, "|momentum|", nil
	case "angular":
		return func(s *physics.System) float64 { return s.AngularMomentum().Magnitude() }, "|angular momentum|", nil
	case "separation":
		return func(s *physics.System) float64 { return s.Separation(body, other) },
			fmt.Sprintf("separation %d-%d", body, other), nil
	case "x", "y", "z":
		axis := int(series[0] - 'x')
		return func(s *physics.System) float64 { return coord(s, axis) },
			fmt.Sprintf("body %d %s", body, series), nil
	default:
		return nil, "", fmt.Errorf("unknown series: %s (available: energy, kinetic, momentum, angular, separation, x, y, z)", series)
	}
}

func stepsOrDefault(cfg *config.Config, fallback int) int {
	if cfg.Steps > 0 {
		return cfg.Steps
	}
	return fallback
}

func newPlotCmd(sf *scenarioFlags) *cobra.Command {
	var (
		series      string
		body, other int
	)
	cmd := &cobra.Command{
		Use:   "plot [preset]",
		Short: "run a scenario and plot a series",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadScenario(cmd, args, sf)
			if err != nil {
				return err
			}
			sample, caption, err := sampler(series, body, other, len(cfg.Bodies))
			if err != nil {
				return err
			}

			steps := stepsOrDefault(cfg, 1000)
			data, err := record(cfg, steps, sample)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "scenario: %s\n", cfg.Name)
			fmt.Fprintf(out, "samples: %d\n\n", len(data))

			graph := asciigraph.Plot(data,
				asciigraph.Height(15),
				asciigraph.Width(80),
				asciigraph.Caption(caption),
			)
			fmt.Fprintln(out, graph)
			return nil
		},
	}
	cmd.Flags().StringVar(&series, "series", "energy", "energy, kinetic, momentum, angular, separation, x, y, z")
	cmd.Flags().IntVar(&body, "body", 0, "body index")
	cmd.Flags().IntVar(&other, "other", 1, "second body index for separation")
	return cmd
}

func newAnalyzeCmd(sf *scenarioFlags) *cobra.Command {
	var (
		series      string
		body, other int
	)
	cmd := &cobra.Command{
		Use:   "analyze [preset]",
		Short: "frequency analysis of a series",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadScenario(cmd, args, sf)
			if err != nil {
				return err
			}
			sample, caption, err := sampler(series, body, other, len(cfg.Bodies))
			if err != nil {
				return err
			}

			data, err := record(cfg, stepsOrDefault(cfg, 4096), sample)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "frequency analysis: %s\n", cfg.Name)
			fmt.Fprintf(out, "series: %s\n\n", caption)

			ps := analysis.PowerSpectrum(analysis.Detrend(data))
			plotData := ps[:max(len(ps)/4, 2)]
			graph := asciigraph.Plot(plotData,
				asciigraph.Height(15),
				asciigraph.Width(80),
				asciigraph.Caption("power spectrum ("+caption+")"),
			)
			fmt.Fprintln(out, graph)
			fmt.Fprintln(out)

			period, err := analysis.DominantPeriod(data, cfg.Dt)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "dominant period: %.6g\n", period)
			fmt.Fprintf(out, "frequency: %.6g\n", 1/period)
			return nil
		},
	}
	cmd.Flags().StringVar(&series, "series", "x", "energy, kinetic, momentum, angular, separation, x, y, z")
	cmd.Flags().IntVar(&body, "body", 1, "body index")
	cmd.Flags().IntVar(&other, "other", 0, "second body index for separation")
	return cmd
}

func newLiveCmd(sf *scenarioFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "live [preset]",
		Short: "run a scenario with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadScenario(cmd, args, sf)
			if err != nil {
				return err
			}
			runCfg, err := cfg.RunConfig()
			if err != nil {
				return err
			}

			m, err := viz.NewModel(cfg.Name, cfg.Build, runCfg)
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}
}

func newServeCmd(sf *scenarioFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve [preset]",
		Short: "stream a running scenario over websocket with prometheus metrics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadScenario(cmd, args, sf)
			if err != nil {
				return err
			}
			sys, err := cfg.Build()
			if err != nil {
				return err
			}
			runCfg, err := cfg.RunConfig()
			if err != nil {
				return err
			}
			sim, err := dynamo.New(sys, runCfg)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			m := stream.NewMetrics(reg, sys)
			hub := stream.NewHub(m)
			sim.AddObserver(m)
			sim.AddObserver(hub)

			srv := stream.NewServer(addr, hub, reg)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Printf("[serve] http server: %v", err)
				}
			}()
			log.Printf("[serve] %s on %s (ws: /ws, metrics: /metrics)", cfg.Name, addr)

			ctx, cancel := signalContext()
			defer cancel()

			result, err := sim.Run(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("[serve] simulation stopped: %v", err)
			} else if ctx.Err() == nil {
				log.Printf("[serve] simulation finished after %d steps; serving final state", result.StepsTaken)
			}
			<-ctx.Done()

			hub.Close()
			shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
			defer stop()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

// newCompareCmd runs the scenario once per velocity scheme, concurrently,
// and reports how far each drifts.
func newCompareCmd(sf *scenarioFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "compare [preset]",
		Short: "compare velocity schemes on the same scenario",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadScenario(cmd, args, sf)
			if err != nil {
				return err
			}
			schemes := []string{"current", "lagged", "reference"}

			systems := make([]*physics.System, len(schemes))
			sims := make([]*dynamo.Simulator, len(schemes))
			for i, scheme := range schemes {
				c := cfg.Clone()
				c.Scheme = scheme
				sys, err := c.Build()
				if err != nil {
					return err
				}
				sim, err := dynamo.New(sys, dynamo.Config{Dt: c.Dt, Steps: stepsOrDefault(c, 1000), ValidateState: c.ValidateState})
				if err != nil {
					return err
				}
				for _, m := range metrics.Defaults(sys) {
					sim.AddMetric(m)
				}
				systems[i], sims[i] = sys, sim
			}

			start := time.Now()
			results, runErr := dynamo.NewEnsemble(sims...).Run(cmd.Context())
			elapsed := time.Since(start)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "comparing schemes for %s (dt=%g, steps=%d, %v)\n\n", cfg.Name, cfg.Dt, sims[0].Config().Steps, elapsed.Round(time.Millisecond))
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SCHEME\tSTEPS\tENERGY\tENERGY_DRIFT\tMOMENTUM_DRIFT")
			for i, res := range results {
				fmt.Fprintf(w, "%s\t%d\t%.6g\t%.3e\t%.3e\n", schemes[i], res.StepsTaken, systems[i].Energy(),
					res.Metrics["energy_drift"], res.Metrics["momentum_drift"])
			}
			if err := w.Flush(); err != nil {
				return err
			}
			return runErr
		},
	}
}

func newPresetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tBODIES\tG\tDT\tSTEPS\tPOLICY")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				steps := "forever"
				if p.Steps > 0 {
					steps = fmt.Sprint(p.Steps)
				}
				fmt.Fprintf(w, "%s\t%d\t%g\t%g\t%s\t%s\n", name, len(p.Bodies), p.G, p.Dt, steps, p.Policy)
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show [preset]",
		Short: "print a preset as a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.MustPreset(args[0])
			if err != nil {
				return err
			}
			return config.Save(cmd.OutOrStdout(), cfg)
		},
	})

	return cmd
}

func newBenchCmd() *cobra.Command {
	var (
		sizes      []int
		iterations int
		seed       int64
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the engine on random systems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if iterations < 1 {
				return fmt.Errorf("--iterations must be at least 1")
			}
			rng := rand.New(rand.NewSource(seed))

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "benchmarking %d steps per size\n\n", iterations)
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "BODIES\tSTEPS\tTIME\tSTEPS/SEC\tPAIRS/SEC")

			for _, n := range sizes {
				if n < 1 {
					return fmt.Errorf("invalid size: %d", n)
				}
				sys := randomSystem(rng, n)

				start := time.Now()
				for i := 0; i < iterations; i++ {
					if err := sys.Step(0.001); err != nil {
						return err
					}
				}
				elapsed := time.Since(start)

				stepsPerSec := float64(iterations) / elapsed.Seconds()
				pairsPerSec := stepsPerSec * float64(n*(n-1))
				fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\t%.3g\n", n, iterations, elapsed.Round(time.Microsecond), stepsPerSec, pairsPerSec)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntSliceVar(&sizes, "sizes", []int{2, 4, 8, 16, 32, 64, 128}, "system sizes")
	cmd.Flags().IntVar(&iterations, "iterations", 1000, "steps per size")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed")
	return cmd
}

// randomSystem scatters n unit-ish masses in a unit cube with G = 1.
func randomSystem(rng *rand.Rand, n int) *physics.System {
	sys := physics.New(physics.WithG(1), physics.WithPolicy(physics.Soften), physics.WithSoftening(0.01))
	for i := 0; i < n; i++ {
		b := physics.Body{
			Name: fmt.Sprintf("b%d", i),
			Mass: 0.5 + rng.Float64(),
		}
		b.Pos.X, b.Pos.Y, b.Pos.Z = rng.Float64()*2-1, rng.Float64()*2-1, rng.Float64()*2-1
		b.Vel.X, b.Vel.Y, b.Vel.Z = (rng.Float64()-0.5)*0.1, (rng.Float64()-0.5)*0.1, (rng.Float64()-0.5)*0.1
		sys.AddBody(b)
	}
	return sys
}
