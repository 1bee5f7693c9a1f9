package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/san-kum/chronogrid/internal/app"
	"github.com/san-kum/chronogrid/internal/audio"
	"github.com/san-kum/chronogrid/internal/config"
	"github.com/san-kum/chronogrid/internal/script"
	"github.com/san-kum/chronogrid/internal/store"
	"github.com/san-kum/chronogrid/internal/tui"
	"github.com/san-kum/chronogrid/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	logFile    string
	// Layout mode for year, offsets and export-svg
	modeName string
	// replay
	asJSON  bool
	asCSV   bool
	outFile string
	trials  int
	seed    int64
	// export-svg
	cellSize float64
	// offsets
	svgFile string
)

// env is what every command shares after flags are parsed.
type env struct {
	cfg    *config.Config
	paths  config.Paths
	logger *slog.Logger
	closer io.Closer
}

func (e *env) Close() {
	if e.closer != nil {
		e.closer.Close()
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:          "chronogrid",
		Short:        "scroll through centuries of calendar days",
		SilenceUsage: true,
		RunE:         runTUI,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", "", "data directory (default "+config.DefaultDataDir+")")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "apply a preset: "+fmt.Sprint(config.ListPresets()))
	pf.StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	pf.StringVar(&logFile, "log-file", "", `log file, "-" for stderr (default <data>/chronogrid.log)`)

	yearCmd := &cobra.Command{
		Use:   "year [year]",
		Short: "print one year of the grid",
		Args:  cobra.MaximumNArgs(1),
		RunE:  printYear,
	}
	yearCmd.Flags().StringVar(&modeName, "mode", "", "structured or random")

	offsetsCmd := &cobra.Command{
		Use:   "offsets [from] [to]",
		Short: "plot the grid offset of a range of years",
		Args:  cobra.RangeArgs(0, 2),
		RunE:  plotOffsets,
	}
	offsetsCmd.Flags().StringVar(&modeName, "mode", "", "structured or random")
	offsetsCmd.Flags().StringVar(&svgFile, "svg", "", "also write the plot as SVG")

	stateCmd := &cobra.Command{
		Use:   "state",
		Short: "show the saved state",
		Args:  cobra.NoArgs,
		RunE:  showState,
	}

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "forget the saved state",
		Args:  cobra.NoArgs,
		RunE:  resetState,
	}

	replayCmd := &cobra.Command{
		Use:   "replay [scenario.yaml]",
		Short: "run a navigation scenario headless and print its event trace",
		Long: "Replay boots the engine against a manual clock, runs the steps of a YAML scenario\n" +
			"and prints every event it caused.\n\nSteps: " + strings.Join(script.StepNames(), ", "),
		Args:  cobra.ExactArgs(1),
		RunE:  replay,
	}
	replayCmd.Flags().BoolVar(&asJSON, "json", false, "write the trace as JSON")
	replayCmd.Flags().BoolVar(&asCSV, "csv", false, "write the trace as CSV")
	replayCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	replayCmd.Flags().IntVar(&trials, "trials", 0, "replay with this many consecutive seeds and summarize")
	replayCmd.Flags().Int64Var(&seed, "seed", 0, "override the scenario seed")

	keysCmd := &cobra.Command{
		Use:   "keys",
		Short: "list keyboard shortcuts",
		Args:  cobra.NoArgs,
		RunE:  showKeys,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [year]",
		Short: "export one year as SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&modeName, "mode", "", "structured or random")
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default <year>.svg)")
	exportSVGCmd.Flags().Float64Var(&cellSize, "cell", 24, "cell size in pixels")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range config.ListPresets() {
				fmt.Printf("  %s\n", p)
			}
		},
	}

	rootCmd.AddCommand(yearCmd, offsetsCmd, stateCmd, resetCmd, replayCmd, keysCmd, exportSVGCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

// setup resolves paths, loads the config and opens the logger.
func setup() (*env, error) {
	paths, err := config.ResolvePaths(dataDir, configFile)
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadFor(paths, preset)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	e := &env{cfg: cfg, paths: paths}
	var w io.Writer = os.Stderr
	if logFile != "-" {
		path := logFile
		if path == "" {
			path = paths.Log
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		w, e.closer = f, f
	}
	e.logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return e, nil
}

// termSize falls back to 120x40 when stdout is not a terminal.
func termSize() (cols, rows int) {
	cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || cols <= 0 || rows <= 0 {
		return 120, 40
	}
	return cols, rows
}

func runTUI(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("chronogrid needs a terminal; see --help for the batch commands")
	}
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()
	cfg := e.cfg

	cols, rows := termSize()
	body := tui.BodyRows(rows)
	grid := viz.NewGrid(viz.NewStyles(viz.GetTheme(cfg.Display.Theme)), cols, body,
		cfg.Display.CellWidth, cfg.Display.CellHeight)

	var out audio.Output
	if cfg.Audio.Enabled {
		out = audio.NewDevice(cfg.Audio.SampleRate)
	}
	a := app.New(app.Options{
		Config: cfg,
		Store:  store.Open(e.paths.State),
		Width:  float64(cols) * cfg.Display.CellWidth,
		Height: float64(body) * cfg.Display.CellHeight,
		Canvas: grid,
		Output: out,
		Logger: e.logger,
	})
	e.logger.Info("starting",
		slog.String("state", e.paths.State),
		slog.Int("cols", cols),
		slog.Int("rows", rows))
	return tui.Run(a, grid, cols, rows)
}
