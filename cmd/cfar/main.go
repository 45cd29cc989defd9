package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/san-kum/cfar/internal/config"
	"github.com/san-kum/cfar/internal/control"
	"github.com/san-kum/cfar/internal/export"
	"github.com/san-kum/cfar/internal/metrics"
	"github.com/san-kum/cfar/internal/sim"
	"github.com/san-kum/cfar/internal/storage"
	"github.com/san-kum/cfar/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	target     float64
	horizon    int
	seed       int64
	noiseStd   float64
	kp, ki, kd float64
	adaptive   bool
	daysPerSec int
	svgOut     string
)

func main() {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelInfo,
			TimeFormat: time.Kitchen,
		}),
	))

	rootCmd := &cobra.Command{
		Use:   "cfar",
		Short: "resolution-limited control simulator",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".cfar", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation",
		RunE:  runSimulation,
	}
	addScenarioFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with live day-by-day view",
		RunE:  runLive,
	}
	addScenarioFlags(liveCmd)
	liveCmd.Flags().IntVar(&daysPerSec, "speed", 10, "simulated days per second")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	summaryCmd := &cobra.Command{
		Use:   "summary [run_id]",
		Short: "print a stored run's rollup",
		Args:  cobra.ExactArgs(1),
		RunE:  summarizeRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export full run data as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run steps as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render the outcome timeline as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&svgOut, "out", "", "output path (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list scenario presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
		},
	}

	strategiesCmd := &cobra.Command{
		Use:   "strategies",
		Short: "list fluctuation strategies",
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tMAX_PULSE\tCOOLDOWN\tDESCRIPTION")
			for _, name := range control.StrategyNames() {
				s, _ := control.GetStrategy(name)
				fmt.Fprintf(w, "%s\t%.2f\t%dd\t%s\n", name, s.MaxPulse, s.CooldownDays, s.Description)
			}
			w.Flush()
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, summaryCmd,
		exportCmd, exportJSONCmd, exportCSVCmd, exportSVGCmd, presetsCmd, strategiesCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "scenario preset")
	cmd.Flags().Float64Var(&target, "target", config.DefaultTargetY, "target outcome")
	cmd.Flags().IntVar(&horizon, "horizon", config.DefaultHorizonDays, "horizon in days")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed")
	cmd.Flags().Float64Var(&noiseStd, "noise", config.DefaultNoiseStd, "outcome noise std")
	cmd.Flags().Float64Var(&kp, "kp", 0.8, "pid kp")
	cmd.Flags().Float64Var(&ki, "ki", 0.05, "pid ki")
	cmd.Flags().Float64Var(&kd, "kd", 0.2, "pid kd")
	cmd.Flags().BoolVar(&adaptive, "adaptive", false, "adaptive fluctuation controller")
}

// resolveConfig layers preset, config file, and CLI flags: flags win over
// the file, the file wins over the preset.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("target") {
		cfg.TargetY = target
	}
	if cmd.Flags().Changed("horizon") {
		cfg.HorizonDays = horizon
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("noise") {
		cfg.NoiseStd = noiseStd
	}
	if cmd.Flags().Changed("kp") {
		cfg.PID.Kp = kp
	}
	if cmd.Flags().Changed("ki") {
		cfg.PID.Ki = ki
	}
	if cmd.Flags().Changed("kd") {
		cfg.PID.Kd = kd
	}
	if cmd.Flags().Changed("adaptive") {
		cfg.Fluctuation.Adaptive = adaptive
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildSimulator(cfg *config.Config) (*sim.Simulator, error) {
	rng := rand.New(rand.NewSource(cfg.Seed))
	s, err := sim.New(
		cfg.SimConfig(),
		cfg.PIDController(),
		cfg.BanditController(rng),
		cfg.FluctuationController(),
	)
	if err != nil {
		return nil, err
	}
	for _, m := range metrics.Defaults(cfg.TargetY) {
		s.AddMetric(m)
	}
	return s, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	s, err := buildSimulator(cfg)
	if err != nil {
		return err
	}

	slog.Info("starting run", "scenario", cfg.Name, "target", cfg.TargetY, "horizon", cfg.HorizonDays, "seed", cfg.Seed)
	start := time.Now()

	result, err := s.Run(context.Background())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(cfg.Name, cfg.Seed, cfg.TargetY, cfg.HorizonDays, result)
	if err != nil {
		return err
	}
	slog.Info("run complete", "id", runID, "elapsed", elapsed)

	armNames := make([]string, len(cfg.Arms))
	for i, arm := range cfg.Arms {
		armNames[i] = arm.Name
	}
	fmt.Println()
	fmt.Print(viz.FormatSummary(result.Summary, armNames))
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	s, err := buildSimulator(cfg)
	if err != nil {
		return err
	}

	m := viz.NewModel(cfg.Name, s, daysPerSec, func() (*sim.Simulator, error) {
		return buildSimulator(cfg)
	})

	p := tea.NewProgram(m)
	_, err = p.Run()
	return err
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
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tHORIZON\tTARGET\tFINAL_Y\tPULSES")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dd\t%.2f\t%.3f\t%d\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.HorizonDays,
			run.TargetY,
			run.Summary.FinalState.Outcome,
			run.Summary.Pulses,
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
	steps, err := st.LoadSteps(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\nscenario: %s\nsamples: %d\n\n", meta.ID, meta.Scenario, len(steps))
	fmt.Println(viz.PlotRun(steps))
	return nil
}

func summarizeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s (scenario %s, seed %d)\n\n", meta.ID, meta.Scenario, meta.Seed)
	fmt.Print(viz.FormatSummary(meta.Summary, nil))
	if len(meta.Metrics) > 0 {
		fmt.Println("\nmetrics:")
		for name, val := range meta.Metrics {
			fmt.Printf("  %s: %.6f\n", name, val)
		}
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	steps, err := st.LoadSteps(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta, steps)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	steps, err := st.LoadSteps(args[0])
	if err != nil {
		return err
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"day", "y", "n", "a", "c", "b", "floor", "error", "mode", "u_attention", "u_structural", "u_pulse", "arm", "reward"}); err != nil {
		return err
	}
	for _, rec := range steps {
		row := []string{
			fmt.Sprintf("%d", rec.Day),
			fmt.Sprintf("%.6f", rec.State.Outcome),
			fmt.Sprintf("%.6f", rec.State.Norm),
			fmt.Sprintf("%.6f", rec.State.Attention),
			fmt.Sprintf("%.6f", rec.State.Constraint),
			fmt.Sprintf("%.6f", rec.State.Burden),
			fmt.Sprintf("%.6f", rec.Resolution.Floor),
			fmt.Sprintf("%.6f", rec.Error),
			string(rec.Mode),
			fmt.Sprintf("%.6f", rec.Attention),
			fmt.Sprintf("%.6f", rec.Structural),
			fmt.Sprintf("%.6f", rec.Pulse),
			fmt.Sprintf("%d", rec.Arm),
			fmt.Sprintf("%.0f", rec.Reward),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	steps, err := st.LoadSteps(args[0])
	if err != nil {
		return err
	}

	svg := export.TimelineSVG(steps, meta.TargetY, 960, 240)
	if svg == "" {
		return fmt.Errorf("not enough data to render")
	}

	if svgOut == "" {
		fmt.Println(svg)
		return nil
	}
	if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
		return err
	}
	slog.Info("svg written", "path", svgOut)
	return nil
}
