package main

import (
	"fmt"
	"math"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/jointsim/internal/automation"
	"github.com/san-kum/jointsim/internal/config"
	"github.com/san-kum/jointsim/internal/export"
	"github.com/san-kum/jointsim/internal/logging"
	"github.com/san-kum/jointsim/internal/metrics"
	"github.com/san-kum/jointsim/internal/sim"
	"github.com/san-kum/jointsim/internal/storage"
	"github.com/san-kum/jointsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir string
	// Run parameters; flags override the config file, which overrides the preset.
	target      float64
	targetDeg   float64
	duration    float64
	dt          float64
	inertia     float64
	damping     float64
	kp          float64
	ki          float64
	kd          float64
	torqueLimit float64
	outputMin   float64
	outputMax   float64
	tolerance   float64
	configFile  string
	preset      string
	// Output
	figurePath    string
	saveRun       bool
	showPlot      bool
	logEvery      int
	stepsPerFrame int
	outFile       string
	// Sweep
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "jointsim",
		Short:         "PID control of a single rotational joint",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".jointsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a step-response experiment",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().StringVar(&figurePath, "figure", "", "figure path (.png or .svg); defaults to the config output")
	runCmd.Flags().BoolVar(&saveRun, "save", false, "store the run in the data directory")
	runCmd.Flags().BoolVar(&showPlot, "plot", false, "print terminal charts")
	runCmd.Flags().IntVar(&logEvery, "log-every", 0, "log controller state every N steps (0 disables)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&figurePath, "figure", "", "also save the figure to this path")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [preset] [preset] ...",
		Short: "run presets side by side",
		Args:  cobra.MinimumNArgs(1),
		RunE:  comparePresets,
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run every experiment of a YAML scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&saveRun, "save", false, "store every run, not only those with save_as")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "vary one parameter and tabulate the response",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "kp", "kp, ki, kd, inertia, damping, torque_limit, target_deg or dt")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 10, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 50, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of runs")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "step the run in a live terminal view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)
	liveCmd.Flags().IntVar(&stepsPerFrame, "steps-per-frame", 10, "control updates per frame")

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write the default configuration as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Save(args[0], config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportJSONCmd, exportCSVCmd, presetsCmd, compareCmd, scenarioCmd, sweepCmd, liveCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "start from a named preset")
	f.Float64Var(&target, "target", d.Target, "target angle [rad]")
	f.Float64Var(&targetDeg, "target-deg", config.DefaultTargetDeg, "target angle [deg]")
	f.Float64Var(&duration, "duration", d.Duration, "simulated time [s]")
	f.Float64Var(&dt, "dt", d.Dt, "timestep [s]")
	f.Float64Var(&inertia, "inertia", d.Plant.Inertia, "joint inertia [kg m^2]")
	f.Float64Var(&damping, "damping", d.Plant.Damping, "viscous damping [N m s/rad]")
	f.Float64Var(&kp, "kp", d.Controller.Kp, "proportional gain")
	f.Float64Var(&ki, "ki", d.Controller.Ki, "integral gain")
	f.Float64Var(&kd, "kd", d.Controller.Kd, "derivative gain")
	f.Float64Var(&torqueLimit, "torque-limit", config.DefaultTorqueLimit, "symmetric torque bound [N m]; 0 removes bounds")
	f.Float64Var(&outputMin, "output-min", 0, "lower torque bound [N m]")
	f.Float64Var(&outputMax, "output-max", 0, "upper torque bound [N m]")
	f.Float64Var(&tolerance, "tolerance", d.Tolerance, "settling band as a fraction of |target|")
	cmd.MarkFlagsMutuallyExclusive("target", "target-deg")
}

// buildConfig layers preset, config file and explicitly set flags.
func buildConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg, label := config.DefaultConfig(), "run"
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %s)", preset, strings.Join(config.ListPresets(), ", "))
		}
		label = preset
	}

	if configFile != "" {
		if err := config.LoadInto(configFile, cfg); err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
	}

	changed := cmd.Flags().Changed
	if changed("target") {
		cfg.Target, cfg.TargetDeg = target, nil
	}
	if changed("target-deg") {
		v := targetDeg
		cfg.TargetDeg = &v
	}
	if changed("duration") {
		cfg.Duration = duration
	}
	if changed("dt") {
		cfg.Dt = dt
	}
	if changed("inertia") {
		cfg.Plant.Inertia = inertia
	}
	if changed("damping") {
		cfg.Plant.Damping = damping
	}
	if changed("kp") {
		cfg.Controller.Kp = kp
	}
	if changed("ki") {
		cfg.Controller.Ki = ki
	}
	if changed("kd") {
		cfg.Controller.Kd = kd
	}
	if changed("torque-limit") {
		cfg.SetTorqueLimit(torqueLimit)
	}
	if changed("output-min") {
		v := outputMin
		cfg.Controller.OutputMin = &v
	}
	if changed("output-max") {
		v := outputMax
		cfg.Controller.OutputMax = &v
	}
	if changed("tolerance") {
		cfg.Tolerance = tolerance
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, label, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, label, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	runCfg := cfg.RunConfig()

	var logger logging.Logger = logging.NewNoopLogger()
	simulator := sim.New()
	if logEvery > 0 {
		logger = logging.NewStdoutLogger(logEvery)
		simulator.AddObserver(logging.Observer(logger))
	}
	defer logger.Sync()

	logger.LogRunStart(runCfg)
	start := time.Now()
	result, err := simulator.Run(runCfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	report, err := metrics.Evaluate(result, cfg.Tolerance)
	if err != nil {
		return err
	}
	logger.LogRunComplete(report, elapsed)

	for _, line := range viz.SummaryLines(report) {
		fmt.Println(line)
	}
	fmt.Printf("samples: %d, completed in %v\n", len(result.Record), elapsed)

	if showPlot {
		charts, err := viz.ResponseCharts(result, 80, 10)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(charts)
		fmt.Println(viz.Summary(label, report))
	}

	path := cfg.Output
	if cmd.Flags().Changed("figure") {
		path = figurePath
	}
	if path != "" {
		if err := export.SaveFigure(path, result, export.DefaultFigure()); err != nil {
			return err
		}
		fmt.Printf("figure saved: %s\n", path)
	}

	if saveRun {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(label, result, report.Map())
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	return nil
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
	fmt.Fprintln(w, "ID\tLABEL\tTIME\tDURATION\tDT\tOVERSHOOT\tSETTLING")

	for _, run := range runs {
		settling := "-"
		if v, ok := run.Metrics["settling_time"]; ok {
			settling = fmt.Sprintf("%.3fs", v)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%.2f%%\t%s\n",
			run.ID,
			run.Label,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Config.Duration,
			run.Config.Dt,
			run.Metrics["overshoot_pct"],
			settling,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(result.Record))

	charts, err := viz.ResponseCharts(result, 80, 10)
	if err != nil {
		return err
	}
	fmt.Println(charts)

	if figurePath != "" {
		if err := export.SaveFigure(figurePath, result, export.DefaultFigure()); err != nil {
			return err
		}
		fmt.Printf("figure saved: %s\n", figurePath)
	}
	return nil
}

// output returns stdout or the --out file.
func output() (*os.File, func() error, error) {
	if outFile == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	if err := export.EnsureDir(outFile); err != nil {
		return nil, nil, err
	}
	f, err := os.Create(outFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	w, done, err := output()
	if err != nil {
		return err
	}
	if err := st.ExportJSON(w, args[0]); err != nil {
		done()
		return err
	}
	return done()
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	record, err := st.LoadRecord(args[0])
	if err != nil {
		return err
	}

	w, done, err := output()
	if err != nil {
		return err
	}
	if err := storage.WriteCSV(w, record); err != nil {
		done()
		return err
	}
	return done()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTARGET\tKP\tKI\tKD\tLIMITS\tJ\tB")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		lo, hi := p.Limits()
		fmt.Fprintf(w, "%s\t%.1f°\t%g\t%g\t%g\t%s\t%g\t%g\n",
			name,
			p.TargetRad()*180/math.Pi,
			p.Controller.Kp, p.Controller.Ki, p.Controller.Kd,
			formatLimits(lo, hi),
			p.Plant.Inertia, p.Plant.Damping,
		)
	}
	return w.Flush()
}

func formatLimits(lo, hi *float64) string {
	if lo == nil && hi == nil {
		return "none"
	}
	bound := func(p *float64, inf string) string {
		if p == nil {
			return inf
		}
		return fmt.Sprintf("%g", *p)
	}
	return "[" + bound(lo, "-inf") + ", " + bound(hi, "+inf") + "]"
}

func comparePresets(cmd *cobra.Command, args []string) error {
	scenario := &automation.Scenario{Name: "compare"}
	for _, name := range args {
		if config.GetPreset(name) == nil {
			return fmt.Errorf("unknown preset: %s (available: %s)", name, strings.Join(config.ListPresets(), ", "))
		}
		scenario.Runs = append(scenario.Runs, automation.ScenarioRun{Name: name, Preset: name})
	}

	start := time.Now()
	outcomes, err := automation.RunScenario(cmd.Context(), scenario)
	if err != nil {
		return err
	}
	printOutcomes(outcomes, time.Since(start))
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	if scenario.Description != "" {
		fmt.Printf("%s: %s\n\n", scenario.Name, scenario.Description)
	}

	start := time.Now()
	outcomes, err := automation.RunScenario(cmd.Context(), scenario)
	if err != nil {
		return err
	}
	printOutcomes(outcomes, time.Since(start))

	st := storage.New(dataDir)
	for i, o := range outcomes {
		label := scenario.Runs[i].SaveAs
		if label == "" && !saveRun {
			continue
		}
		if label == "" {
			label = o.Name
		}
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(label, o.Result, o.Report.Map())
		if err != nil {
			return err
		}
		fmt.Printf("saved %s as %s\n", o.Name, runID)
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	base, _, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	start := time.Now()
	outcomes, err := automation.RunSweep(cmd.Context(), automation.Sweep{
		Base:  base,
		Param: sweepParam,
		Min:   sweepMin,
		Max:   sweepMax,
		Steps: sweepSteps,
	})
	if err != nil {
		return err
	}
	printOutcomes(outcomes, time.Since(start))
	return nil
}

func printOutcomes(outcomes []automation.Outcome, elapsed time.Duration) {
	names := make([]string, len(outcomes))
	reports := make([]metrics.Report, len(outcomes))
	for i, o := range outcomes {
		names[i], reports[i] = o.Name, o.Report
	}
	fmt.Print(viz.CompareTable(names, reports))
	fmt.Printf("\n%d runs in %v\n", len(outcomes), elapsed)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, _, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	m, err := viz.NewLive(cfg.RunConfig(), stepsPerFrame)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
