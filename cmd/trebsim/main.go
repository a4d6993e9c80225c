package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/trebsim/internal/config"
	"github.com/san-kum/trebsim/internal/export"
	"github.com/san-kum/trebsim/internal/flight"
	"github.com/san-kum/trebsim/internal/logging"
	"github.com/san-kum/trebsim/internal/metrics"
	"github.com/san-kum/trebsim/internal/storage"
	"github.com/san-kum/trebsim/internal/sweep"
	"github.com/san-kum/trebsim/internal/tui"
	"github.com/san-kum/trebsim/internal/world"
)

var (
	dataDir    string
	logLevel   string
	logFormat  string
	preset     string
	configFile string
	integrator string
	tick       float64
	frameTime  float64
	maxTime    float64
	seed       int64
	params     []string
	compress   bool
	save       bool
	plot       bool
	svgWidth   int
	svgHeight  int
	outFile    string
	planFile   string
	axes       []string
	metric     string
	workers    int
	top        int
)

var logger *log.Logger

func main() {
	rootCmd := &cobra.Command{
		Use:   "trebsim",
		Short: "trebuchet launch and orbital flight simulator",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New(logLevel, logFormat, os.Stderr)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		RunE: runLive,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".trebsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json, logfmt)")
	addScenarioFlags(rootCmd)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "fly a scenario headless and save the run",
		RunE:  runHeadless,
	}
	addScenarioFlags(runCmd)
	runCmd.Flags().BoolVar(&save, "save", true, "save the run to the data directory")
	runCmd.Flags().BoolVar(&compress, "compress", false, "zstd-compress the stored trajectory")
	runCmd.Flags().BoolVar(&plot, "plot", false, "plot altitude after the run")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "fly a scenario interactively",
		RunE:  runLive,
	}
	addScenarioFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot altitude and speed of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a run trajectory to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a run trajectory over its terrain as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 600, "image height")
	for _, c := range []*cobra.Command{exportCmd, exportCSVCmd, exportSVGCmd} {
		c.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tRADIUS\tGRAVITY\tVERTICES\tINTEG")
			for _, name := range config.ListPresets() {
				c := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%.0f\t%.2f\t%d\t%s\n",
					name, c.World.Radius, c.World.SurfaceGravity, c.World.Vertices, c.Integrator)
			}
			return w.Flush()
		},
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "fly a grid of trebuchet parameters and rank the throws",
		RunE:  runSweep,
	}
	addScenarioFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&planFile, "plan", "", "sweep plan file (yaml)")
	sweepCmd.Flags().StringArrayVar(&axes, "axis", nil, "parameter axis name=min:max:steps (repeatable)")
	sweepCmd.Flags().StringVar(&metric, "metric", "downrange", "metric to rank by")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "parallel flights (default: one per CPU)")
	sweepCmd.Flags().IntVar(&top, "top", 10, "rows to print")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportSVGCmd, presetsCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&preset, "preset", "default", "preset configuration")
	f.StringVar(&configFile, "config", "", "config file path (yaml), overrides the preset")
	f.StringVar(&integrator, "integrator", "rk4", "trebuchet integrator")
	f.Float64Var(&tick, "tick", 0, "physics tick in seconds")
	f.Float64Var(&frameTime, "frame-time", 0, "frame length for headless runs")
	f.Float64Var(&maxTime, "max-time", 0, "give up after this many seconds")
	f.Int64Var(&seed, "seed", 0, "terrain seed")
	f.StringArrayVar(&params, "param", nil, "trebuchet parameter override name=value (repeatable)")
}

// loadConfig resolves preset, then config file, then flags that were set
// explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.GetPreset(preset)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}
	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	}

	f := cmd.Flags()
	if f.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if f.Changed("tick") {
		cfg.Tick = tick
	}
	if f.Changed("frame-time") {
		cfg.FrameTime = frameTime
	}
	if f.Changed("max-time") {
		cfg.MaxTime = maxTime
	}
	if f.Changed("seed") {
		cfg.World.Seed = seed
	}
	for _, kv := range params {
		name, raw, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("bad --param %q, want name=value", kv)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("bad --param %q: %w", kv, err)
		}
		if err := cfg.SetParam(name, v); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	sc, err := cfg.Build(logger)
	if err != nil {
		return err
	}
	sess := sc.Session()
	sess.SetLogger(logger)
	for _, m := range metrics.Default(sc.Planet) {
		sess.AddMetric(m)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("flying %s...\n", cfg.Name)
	start := time.Now()
	result, err := sess.Run(ctx, cfg.RunConfig(), cfg.Inputs)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("frames: %d\n", result.Frames)
	fmt.Printf("landed: %v\n", result.Landed)
	fmt.Println("\nstats:")
	fmt.Printf("  time: %.3fs\n", result.Stats.Time)
	fmt.Printf("  distance: %.2f\n", result.Stats.Distance)
	fmt.Printf("  max_altitude: %.2f\n", result.Stats.MaxAltitude)
	fmt.Printf("  max_speed: %.2f\n", result.Stats.MaxSpeed)
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}

	if plot {
		fmt.Println()
		plotSamples(altitudes(result.Samples), "altitude")
	}

	if !save {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(storage.RunMetadata{
		Preset:     cfg.Name,
		Seed:       cfg.World.Seed,
		Tick:       cfg.Tick,
		FrameTime:  cfg.FrameTime,
		Integrator: cfg.Integrator,
		World:      cfg.World,
		Params:     sc.Trebuchet.GetParams(),
	}, result, compress)
	if err != nil {
		return err
	}
	fmt.Printf("\nrun id: %s\n", runID)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// The alternate screen owns stdout, so interactive logs are dropped
	// below warn.
	if logger.GetLevel() < log.WarnLevel {
		logger.SetLevel(log.WarnLevel)
	}
	return tui.Run(cfg, logger)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tFLIGHT\tDIST\tMAX ALT\tINTEG\tLANDED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.1f\t%.1f\t%s\t%v\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Stats.Time,
			run.Stats.Distance,
			run.Stats.MaxAltitude,
			run.Integrator,
			run.Landed,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadTrajectory(meta.ID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Preset)
	fmt.Printf("samples: %d\n\n", len(samples))

	speed := make([]float64, len(samples))
	for i, s := range samples {
		speed[i] = s.Velocity.Len()
	}
	plotSamples(altitudes(samples), "altitude")
	fmt.Println()
	plotSamples(speed, "speed")
	return nil
}

func altitudes(samples []flight.Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Altitude
	}
	return out
}

func plotSamples(data []float64, caption string) {
	if len(data) < 2 {
		fmt.Printf("%s: not enough samples\n", caption)
		return
	}
	fmt.Println(asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	))
}

// output opens --out, or stdout when unset.
func output() (*os.File, func() error, error) {
	if outFile == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func loadRun(id string) (*storage.RunMetadata, []flight.Sample, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(id)
	if err != nil {
		return nil, nil, err
	}
	samples, err := st.LoadTrajectory(meta.ID)
	if err != nil {
		return nil, nil, err
	}
	return meta, samples, nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	w, done, err := output()
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(w, *meta, samples); err != nil {
		done()
		return err
	}
	return done()
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	w, done, err := output()
	if err != nil {
		return err
	}
	if err := storage.WriteCSV(w, samples); err != nil {
		done()
		return err
	}
	return done()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	planet, err := world.Generate(meta.World)
	if err != nil {
		return fmt.Errorf("regenerate terrain: %w", err)
	}
	svg := export.TrajectoryToSVG(planet.Terrain().Vertices(), samples, svgWidth, svgHeight)
	if svg == "" {
		return fmt.Errorf("run %s has too few samples to draw", meta.ID)
	}

	w, done, err := output()
	if err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, svg); err != nil {
		done()
		return err
	}
	return done()
}

func parseAxis(raw string) (sweep.Axis, error) {
	name, bounds, ok := strings.Cut(raw, "=")
	parts := strings.Split(bounds, ":")
	if !ok || len(parts) != 3 {
		return sweep.Axis{}, fmt.Errorf("bad --axis %q, want name=min:max:steps", raw)
	}
	lo, err1 := strconv.ParseFloat(parts[0], 64)
	hi, err2 := strconv.ParseFloat(parts[1], 64)
	n, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return sweep.Axis{}, fmt.Errorf("bad --axis %q, want name=min:max:steps", raw)
	}
	return sweep.Axis{Param: name, Min: lo, Max: hi, Steps: n}, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	plan := &sweep.Plan{Metric: metric, Workers: workers}
	if planFile != "" {
		p, err := sweep.LoadPlan(planFile)
		if err != nil {
			return err
		}
		plan = p
		if p.Preset != "" && !cmd.Flags().Changed("preset") {
			preset = p.Preset
		}
		if cmd.Flags().Changed("metric") || plan.Metric == "" {
			plan.Metric = metric
		}
		if cmd.Flags().Changed("workers") {
			plan.Workers = workers
		}
	}
	for _, raw := range axes {
		a, err := parseAxis(raw)
		if err != nil {
			return err
		}
		plan.Axes = append(plan.Axes, a)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	points, err := sweep.Run(ctx, cfg, plan)
	if err != nil {
		return err
	}
	for _, pt := range points {
		if pt.Err != nil {
			logger.Warn("cell skipped", "params", pt.Params, "err", pt.Err)
		}
	}
	ranked, err := sweep.Rank(points, plan.Metric)
	if err != nil {
		return err
	}
	fmt.Printf("%d flights in %v\n\n", len(points), time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := []string{"RANK"}
	for _, a := range plan.Axes {
		header = append(header, strings.ToUpper(a.Param))
	}
	header = append(header, strings.ToUpper(plan.Metric), "LANDED")
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for i, pt := range ranked {
		if i == top {
			break
		}
		row := []string{strconv.Itoa(i + 1)}
		for _, a := range plan.Axes {
			row = append(row, strconv.FormatFloat(pt.Params[a.Param], 'g', 5, 64))
		}
		v, _ := pt.Value(plan.Metric)
		row = append(row, fmt.Sprintf("%.3f", v), strconv.FormatBool(pt.Landed))
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}
