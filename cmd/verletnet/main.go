package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/verletnet/internal/analysis"
	"github.com/san-kum/verletnet/internal/automation"
	"github.com/san-kum/verletnet/internal/config"
	"github.com/san-kum/verletnet/internal/export"
	"github.com/san-kum/verletnet/internal/metrics"
	"github.com/san-kum/verletnet/internal/optim"
	"github.com/san-kum/verletnet/internal/sim"
	"github.com/san-kum/verletnet/internal/storage"
	"github.com/san-kum/verletnet/internal/storage/sqlite"
	"github.com/san-kum/verletnet/internal/viz"
)

var (
	dataDir    string
	verbose    bool
	configFile string
	preset     string

	width      int
	height     int
	mode       string
	dt         float64
	frames     int
	iterations int
	stiffness  float64
	passes     int
	resolve    string
	dispatch   string

	releaseAt  int
	teleportAt int
	teleportBy float64
	scriptPath string

	recordPath string
	dbPath     string
	stride     int
	svgPath    string
	jsonOut    string
	every      int

	settleTol     float64
	iterGrid      []float64
	stiffnessGrid []float64
	topN          int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "verletnet",
		Short: "verlet cloth and net simulator",
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive(sim.WithLogger(newLogger()))
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".verletnet", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log simulator events to stderr")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a net headless and save the result",
		RunE:  runNet,
	}
	addNetFlags(runCmd)
	runCmd.Flags().IntVar(&releaseAt, "release-at", 0, "release all pins after this tick (0 = never)")
	runCmd.Flags().IntVar(&teleportAt, "teleport-at", 0, "teleport the rig after this tick (0 = never)")
	runCmd.Flags().Float64Var(&teleportBy, "teleport-by", 10, "teleport distance along x")
	runCmd.Flags().StringVar(&scriptPath, "script", "", "yaml script of timed rig moves and releases")
	runCmd.Flags().StringVar(&recordPath, "record", "", "record frames into this sqlite database")
	runCmd.Flags().IntVar(&stride, "stride", 10, "record every n-th tick")
	runCmd.Flags().StringVar(&svgPath, "svg", "", "write the final net as svg")
	runCmd.Flags().StringVar(&jsonOut, "json", "", "write series and final geometry as json")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch a net in the terminal",
		RunE:  runLive,
	}
	addNetFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the metric series of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the metric series of a run to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and series to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "run the sequential and parallel solvers side by side",
		RunE:  compareSolvers,
	}
	addNetFlags(compareCmd)
	compareCmd.Flags().IntVar(&every, "every", 5, "sample divergence every n ticks")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency and settling analysis of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().Float64Var(&settleTol, "tol", 1e-4, "motion below which the net counts as settled")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search iterations and stiffness for the lowest residual",
		RunE:  tuneNet,
	}
	addNetFlags(tuneCmd)
	tuneCmd.Flags().Float64SliceVar(&iterGrid, "iterations-grid", []float64{10, 20, 40, 80}, "iteration counts to try")
	tuneCmd.Flags().Float64SliceVar(&stiffnessGrid, "stiffness-grid", []float64{0.25, 0.5, 0.75, 1}, "stiffness values to try")
	tuneCmd.Flags().IntVar(&topN, "top", 5, "rows to print")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark both solvers over several lattice sizes",
		RunE:  benchSolvers,
	}
	benchCmd.Flags().IntVar(&frames, "frames", 200, "ticks per measurement")

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets, or print one as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPresets,
	}

	recordingsCmd := &cobra.Command{
		Use:   "recordings",
		Short: "list runs recorded into a sqlite database",
		RunE:  listRecordings,
	}
	recordingsCmd.Flags().StringVar(&dbPath, "db", "frames.db", "sqlite database")

	frameCmd := &cobra.Command{
		Use:   "frame [run_id] [tick]",
		Short: "print one recorded frame as CSV",
		Args:  cobra.ExactArgs(2),
		RunE:  printFrame,
	}
	frameCmd.Flags().StringVar(&dbPath, "db", "frames.db", "sqlite database")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, compareCmd, analyzeCmd, tuneCmd, benchCmd, presetsCmd, recordingsCmd, frameCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addNetFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&preset, "preset", "", "start from a preset")
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.IntVar(&width, "width", def.Width, "lattice width")
	f.IntVar(&height, "height", def.Height, "lattice height")
	f.StringVar(&mode, "mode", def.Mode, "solver: sequential or parallel")
	f.Float64Var(&dt, "dt", def.Dt, "timestep")
	f.IntVar(&frames, "frames", def.Frames, "ticks to run")
	f.IntVar(&iterations, "iterations", def.Physics.Iterations, "relaxation sweeps per tick")
	f.Float64Var(&stiffness, "stiffness", def.Physics.Stiffness, "constraint stiffness in (0, 1]")
	f.IntVar(&passes, "passes", def.Parallel.Passes, "parallel resolve passes per tick")
	f.StringVar(&resolve, "resolve", def.Parallel.Resolve, "parallel resolve: mean or sum")
	f.StringVar(&dispatch, "dispatch", def.Parallel.Dispatch, "parallel dispatch: cover or truncate")
}

// buildConfig applies the preset, then the config file, then any flag the
// user set explicitly.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	f := cmd.Flags()
	if f.Changed("width") {
		cfg.Width = width
	}
	if f.Changed("height") {
		cfg.Height = height
	}
	if f.Changed("mode") {
		cfg.Mode = mode
	}
	if f.Changed("dt") {
		cfg.Dt = dt
	}
	if f.Changed("frames") {
		cfg.Frames = frames
	}
	if f.Changed("iterations") {
		cfg.Physics.Iterations = iterations
	}
	if f.Changed("stiffness") {
		cfg.Physics.Stiffness = stiffness
	}
	if f.Changed("passes") {
		cfg.Parallel.Passes = passes
	}
	if f.Changed("resolve") {
		cfg.Parallel.Resolve = resolve
	}
	if f.Changed("dispatch") {
		cfg.Parallel.Dispatch = dispatch
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runName() string {
	if preset != "" {
		return preset
	}
	return "net"
}

func newLogger() logr.Logger {
	if !verbose {
		return logr.Discard()
	}
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintf(os.Stderr, "%s: %s\n", prefix, args)
			return
		}
		fmt.Fprintln(os.Stderr, args)
	}, funcr.Options{Verbosity: 1})
}

func runNet(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s, net, err := cfg.NewSimulator(sim.WithLogger(newLogger()), sim.WithMetrics(metrics.Default()...))
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.Init(); err != nil {
		return err
	}

	name := runName()
	var obs *sqlite.FrameObserver
	if recordPath != "" {
		rec, err := sqlite.Open(recordPath)
		if err != nil {
			return err
		}
		defer rec.Close()

		id, err := rec.BeginRun(ctx, sqlite.Run{Name: name, Width: cfg.Width, Height: cfg.Height, Mode: cfg.Mode, Dt: cfg.Dt})
		if err != nil {
			return err
		}
		obs = rec.Observer(ctx, id, stride)
		s.AddObserver(obs)
	}

	scripted := func(sim.Frame) bool { return true }
	if scriptPath != "" {
		script, err := automation.LoadScript(scriptPath)
		if err != nil {
			return fmt.Errorf("script %s: %w", scriptPath, err)
		}
		scripted = script.Callback(s, net.Rig)
	}

	callback := func(f sim.Frame) bool {
		if f.Tick == releaseAt {
			s.Post(sim.EventReleasePins)
		}
		if f.Tick == teleportAt {
			net.Rig.Translate(mgl64.Vec3{teleportBy, 0, 0})
		}
		return scripted(f)
	}

	fmt.Printf("running %dx%d net (%s, %d frames)...\n", cfg.Width, cfg.Height, s.SolverName(), cfg.Frames)
	start := time.Now()

	result, err := s.Run(ctx, cfg.Dt, cfg.Frames, callback)
	if err != nil && result == nil {
		return err
	}
	elapsed := time.Since(start)
	if err != nil {
		fmt.Printf("stopped after %d ticks: %v\n", result.Ticks, err)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(storage.Describe(name, s, cfg.Dt, cfg.Frames), result, s.Positions())
	if err != nil {
		return err
	}

	if svgPath != "" {
		if err := writeFile(svgPath, func(f *os.File) error {
			return export.NetSVG(f, s, export.DefaultSVGOptions())
		}); err != nil {
			return err
		}
	}
	if jsonOut != "" {
		if err := writeFile(jsonOut, func(f *os.File) error {
			return storage.ExportJSON(f, s, cfg.Dt, result)
		}); err != nil {
			return err
		}
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("ticks: %d\n", result.Ticks)
	fmt.Printf("pinned: %d\n", s.Pinned())
	if obs != nil {
		if err := obs.Err(); err != nil {
			return fmt.Errorf("recording frames: %w", err)
		}
		fmt.Printf("recorded frames: %d\n", obs.Recorded())
	}
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}

	return nil
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	s, net, err := cfg.NewSimulator(sim.WithLogger(newLogger()))
	if err != nil {
		return err
	}
	defer s.Close()

	m, err := viz.NewModel(s, net.Rig, cfg.Dt, runName())
	if err != nil {
		return err
	}
	return viz.Run(m)
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
	fmt.Fprintln(w, "ID\tNAME\tTIME\tSIZE\tSOLVER\tTICKS\tRESIDUAL")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%s\t%d\t%.2e\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Width, run.Height,
			run.Solver,
			run.Ticks,
			run.Metrics["residual"],
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	series, times, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("net: %dx%d %s\n", meta.Width, meta.Height, meta.Solver)
	fmt.Printf("ticks: %d\n\n", len(times))

	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		graph := asciigraph.Plot(series[name],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name+" vs tick"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	series, times, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(times) == 0 {
		return fmt.Errorf("no data to export")
	}

	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write(append([]string{"time"}, names...)); err != nil {
		return err
	}
	for i := range times {
		row := []string{strconv.FormatFloat(times[i], 'f', 6, 64)}
		for _, name := range names {
			row = append(row, strconv.FormatFloat(series[name][i], 'g', 10, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	series, times, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		*storage.RunMetadata
		Times  []float64            `json:"times"`
		Series map[string][]float64 `json:"series"`
	}{meta, times, series})
}

// compareSolvers advances one sequential and one parallel copy of the same
// net in lockstep and reports how far apart their nodes drift.
func compareSolvers(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if every < 1 {
		return fmt.Errorf("--every must be positive, got %d", every)
	}

	seqCfg, parCfg := cfg.Clone(), cfg.Clone()
	seqCfg.Mode, parCfg.Mode = "sequential", "parallel"

	log := newLogger()
	seq, _, err := seqCfg.NewSimulator(sim.WithLogger(log.WithName("sequential")), sim.WithMetrics(metrics.Default()...))
	if err != nil {
		return err
	}
	par, _, err := parCfg.NewSimulator(sim.WithLogger(log.WithName("parallel")), sim.WithMetrics(metrics.Default()...))
	if err != nil {
		return err
	}
	defer seq.Close()
	defer par.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("comparing %s and %s on a %dx%d net (dt=%.4f, %d frames)\n\n",
		seq.SolverName(), par.SolverName(), cfg.Width, cfg.Height, cfg.Dt, cfg.Frames)

	ensemble := sim.NewEnsemble(seq, par)
	divergence := make([]float64, 0, cfg.Frames/every+1)
	var results []*sim.Result
	for done := 0; done < cfg.Frames; done += every {
		n := min(every, cfg.Frames-done)
		results, err = ensemble.Run(ctx, cfg.Dt, n)
		if err != nil {
			return err
		}
		divergence = append(divergence, maxDistance(seq.Positions(), par.Positions()))
	}
	if len(divergence) == 0 {
		return fmt.Errorf("no frames to compare")
	}

	if len(divergence) > 1 {
		fmt.Println(asciigraph.Plot(divergence,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("max node distance, sampled every %d ticks", every)),
		))
		fmt.Println()
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOLVER\tRESIDUAL\tMOTION\tSAG\tKINETIC")
	for i, s := range []*sim.Simulator{seq, par} {
		m := results[i].Metrics
		fmt.Fprintf(w, "%s\t%.3e\t%.3e\t%.4f\t%.3e\n", s.SolverName(), m["residual"], m["motion"], m["sag"], m["kinetic"])
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nfinal max node distance: %.6f\n", divergence[len(divergence)-1])
	return nil
}

func maxDistance(a, b []mgl64.Vec3) float64 {
	worst := 0.0
	for i := range a {
		worst = max(worst, a[i].Sub(b[i]).Len())
	}
	return worst
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	series, times, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(times) < 2 {
		return fmt.Errorf("no data")
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("net: %dx%d %s, %d ticks\n\n", meta.Width, meta.Height, meta.Solver, len(times))

	if sag, ok := series["sag"]; ok {
		ps := analysis.PowerSpectrum(sag)
		if len(ps) > 1 {
			fmt.Println(asciigraph.Plot(ps[1:],
				asciigraph.Height(15),
				asciigraph.Width(80),
				asciigraph.Caption("power spectrum (sag)"),
			))
			fmt.Println()
		}
		freq, _ := analysis.DominantFrequency(sag, meta.Dt)
		fmt.Printf("dominant sag frequency: %.3f hz\n", freq)
		if freq > 0 {
			fmt.Printf("period: %.3f s\n", 1.0/freq)
		}
		final := sag[len(sag)-1]
		fmt.Printf("final sag: %.4f\n", final)
	}

	if motion, ok := series["motion"]; ok {
		peak, at := analysis.Peak(motion)
		fmt.Printf("peak motion: %.5f at tick %d\n", peak, at+1)
		if tick := analysis.SettleTick(motion, settleTol); tick >= 0 {
			fmt.Printf("settled below %.1e from tick %d (%.2fs)\n", settleTol, tick+1, times[tick])
		} else {
			fmt.Printf("not settled below %.1e\n", settleTol)
		}
	}

	return nil
}

func tuneNet(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	search := optim.NewGridSearch(
		optim.IterationsAxis(iterGrid...),
		optim.StiffnessAxis(stiffnessGrid...),
	)
	fmt.Printf("searching %d configurations on a %dx%d net (%d frames)...\n\n",
		len(iterGrid)*len(stiffnessGrid), cfg.Width, cfg.Height, cfg.Frames)

	start := time.Now()
	trials, err := search.Search(ctx, cfg, optim.FinalResidual)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ITERATIONS\tSTIFFNESS\tRESIDUAL")
	for _, tr := range trials[:min(topN, len(trials))] {
		score := fmt.Sprintf("%.3e", tr.Score)
		if tr.Err != nil {
			score = tr.Err.Error()
		}
		fmt.Fprintf(w, "%.0f\t%.3f\t%s\n", tr.Params["iterations"], tr.Params["stiffness"], score)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\ncompleted in %v\n", time.Since(start))
	return nil
}

func benchSolvers(cmd *cobra.Command, args []string) error {
	sizes := []int{5, 10, 20}
	modes := []string{"sequential", "parallel"}

	fmt.Printf("benchmarking %d ticks per run\n\n", frames)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SIZE\tSOLVER\tTICKS\tTIME\tTICKS/SEC")

	for _, n := range sizes {
		for _, m := range modes {
			cfg := config.DefaultConfig()
			cfg.Width, cfg.Height, cfg.Mode = n, n, m

			s, _, err := cfg.NewSimulator()
			if err != nil {
				return err
			}

			start := time.Now()
			result, err := s.Run(context.Background(), cfg.Dt, frames, nil)
			s.Close()
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%dx%d\t%s\t%d\t%v\t%.0f\n",
				n, n, s.SolverName(), result.Ticks, elapsed, float64(result.Ticks)/elapsed.Seconds())
		}
	}

	return w.Flush()
}

func showPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		cfg := config.GetPreset(args[0])
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(cfg)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSIZE\tMODE\tFRAMES\tITERATIONS")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%dx%d\t%s\t%d\t%d\n", name, cfg.Width, cfg.Height, cfg.Mode, cfg.Frames, cfg.Physics.Iterations)
	}
	return w.Flush()
}

func listRecordings(cmd *cobra.Command, args []string) error {
	rec, err := sqlite.Open(dbPath)
	if err != nil {
		return err
	}
	defer rec.Close()

	runs, err := rec.Runs(cmd.Context())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no recordings found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCREATED\tSIZE\tMODE\tDT\tFRAMES")
	for _, r := range runs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%dx%d\t%s\t%.4f\t%d\n",
			r.ID, r.Name, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Width, r.Height, r.Mode, r.Dt, r.Frames)
	}
	return w.Flush()
}

func printFrame(cmd *cobra.Command, args []string) error {
	runID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", args[0], err)
	}
	tick, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid tick %q: %w", args[1], err)
	}

	rec, err := sqlite.Open(dbPath)
	if err != nil {
		return err
	}
	defer rec.Close()

	positions, err := rec.Frame(cmd.Context(), runID, tick)
	if err != nil {
		return err
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()
	if err := w.Write([]string{"node", "x", "y", "z"}); err != nil {
		return err
	}
	for i, p := range positions {
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(p.X(), 'g', 10, 64),
			strconv.FormatFloat(p.Y(), 'g', 10, 64),
			strconv.FormatFloat(p.Z(), 'g', 10, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
