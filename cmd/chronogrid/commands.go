package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/chronogrid/internal/app"
	"github.com/san-kum/chronogrid/internal/config"
	"github.com/san-kum/chronogrid/internal/export"
	"github.com/san-kum/chronogrid/internal/layout"
	"github.com/san-kum/chronogrid/internal/pool"
	"github.com/san-kum/chronogrid/internal/script"
	"github.com/san-kum/chronogrid/internal/store"
	"github.com/san-kum/chronogrid/internal/viz"
)

// mode returns the --mode flag, or the configured default.
func mode(cfg *config.Config) (layout.Mode, error) {
	name := modeName
	if name == "" {
		name = cfg.Display.DefaultMode
	}
	return layout.ParseMode(name)
}

// theme prefers the saved theme over the configured one.
func theme(e *env) viz.Theme {
	if t := store.Open(e.paths.State).Get(store.KeyTheme); t != "" {
		return viz.GetTheme(t)
	}
	return viz.GetTheme(e.cfg.Display.Theme)
}

func yearArg(args []string, i int, def int) (int, error) {
	if len(args) <= i {
		return def, nil
	}
	y, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("year %q: %w", args[i], err)
	}
	return y, nil
}

// block lays out year for a width x height pixel viewport without a pool.
func block(year int, width, height float64, m layout.Mode) *pool.Block {
	today := layout.FromTime(time.Now())
	g := layout.Compute(year, width, height, m)
	b := &pool.Block{
		Year:     year,
		Geometry: g,
		Cells:    layout.BuildCells(nil, g, today),
		Focus:    -1,
	}
	if today.Year == year {
		b.Focus = layout.CellIndex(g, today)
	}
	return b
}

func printYear(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	year, err := yearArg(args, 0, time.Now().Year())
	if err != nil {
		return err
	}
	m, err := mode(e.cfg)
	if err != nil {
		return err
	}
	cols, rows := termSize()
	rows = max(rows-1, 4)
	cw, ch := e.cfg.Display.CellWidth, e.cfg.Display.CellHeight
	b := block(year, float64(cols)*cw, float64(rows)*ch, m)
	fmt.Println(viz.RenderYear(viz.NewStyles(theme(e)), b, cols, rows))
	return nil
}

func plotOffsets(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	now := time.Now().Year()
	from, err := yearArg(args, 0, now-10)
	if err != nil {
		return err
	}
	to, err := yearArg(args, 1, from+40)
	if err != nil {
		return err
	}
	if to <= from {
		return fmt.Errorf("need from < to, got %d..%d", from, to)
	}
	m, err := mode(e.cfg)
	if err != nil {
		return err
	}

	cols, rows := termSize()
	w := float64(cols) * e.cfg.Display.CellWidth
	h := float64(rows) * e.cfg.Display.CellHeight
	offsets := make([]float64, 0, to-from+1)
	gridRows := make([]float64, 0, to-from+1)
	for y := from; y <= to; y++ {
		g := layout.Compute(y, w, h, m)
		offsets = append(offsets, float64(g.Offset))
		gridRows = append(gridRows, float64(g.Rows))
	}

	bold := color.New(color.Bold)
	_, _ = bold.Printf("%s layout, %d..%d\n\n", m, from, to)
	fmt.Println(asciigraph.Plot(offsets,
		asciigraph.Height(10),
		asciigraph.Width(min(80, cols-10)),
		asciigraph.Caption("grid offset"),
	))
	fmt.Println()
	fmt.Println(asciigraph.Plot(gridRows,
		asciigraph.Height(6),
		asciigraph.Width(min(80, cols-10)),
		asciigraph.Caption("grid rows"),
	))

	if svgFile != "" {
		svg := export.OffsetsToSVG(offsets, 800, 200, string(theme(e).Primary))
		if err := os.WriteFile(svgFile, []byte(svg), 0o644); err != nil {
			return err
		}
		fmt.Printf("\nwrote %s\n", svgFile)
	}
	return nil
}

func showState(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	st := store.Open(e.paths.State)
	snap, err := st.Load()
	if errors.Is(err, store.ErrNotFound) {
		fmt.Println(color.New(color.Faint).Sprint("no saved state in " + e.paths.State))
		return nil
	}
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("state"), faint.Sprint(e.paths.State))
	tbl.AddRow("theme", snap.ThemeOrDefault())
	if snap.YearIndex != nil {
		span := layout.NewSpan(e.cfg.Temporal.TotalYears, time.Now().Year())
		tbl.AddRow("year", fmt.Sprintf("%d (index %d)", span.YearForIndex(*snap.YearIndex), *snap.YearIndex))
	} else {
		tbl.AddRow("year", faint.Sprint("today"))
	}
	tbl.AddRow("scroll", fmt.Sprintf("%.0fpx", snap.ScrollPosition))
	tbl.AddRow("mode", snap.Mode)
	audio := color.RedString("off")
	if snap.AudioOn() {
		audio = color.GreenString("on")
	}
	tbl.AddRow("audio", audio)
	if !snap.LastVisit.IsZero() {
		tbl.AddRow("last visit", snap.LastVisit.Local().Format("2006-01-02 15:04:05"))
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(color.Output, tbl)
	return nil
}

func resetState(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	if err := store.Open(e.paths.State).Reset(); err != nil {
		return err
	}
	e.logger.Info("state reset", "path", e.paths.State)
	fmt.Println(color.GreenString("saved state cleared"))
	return nil
}

func replay(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	sc, err := script.LoadScenario(args[0])
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("seed") {
		sc.Seed = seed
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	opts := script.Options{Config: e.cfg, Logger: e.logger}

	var w io.Writer = os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	if trials > 0 {
		start := sc.Seed
		if start == 0 {
			start = 1
		}
		res, err := script.RunTrials(ctx, sc, trials, start, opts)
		if err != nil {
			return err
		}
		tbl := uitable.New()
		tbl.AddRow("SEED", "YEAR", "LANDING", "EVENTS")
		for _, t := range res {
			tbl.AddRow(t.Seed, t.Year, t.Landing.ISO(), t.Events)
		}
		_, err = fmt.Fprintln(w, tbl)
		return err
	}

	res, err := script.Run(ctx, sc, opts)
	if err != nil {
		return err
	}
	switch {
	case asJSON:
		return store.WriteJSON(w, res.Export(sc))
	case asCSV:
		return store.WriteCSV(w, res.Entries)
	}

	tbl := uitable.New()
	tbl.MaxColWidth = 80
	tbl.AddRow("MS", "TOPIC", "DETAIL")
	for _, entry := range res.Entries {
		tbl.AddRow(entry.At.Milliseconds(), entry.Topic, entry.Detail)
	}
	if _, err := fmt.Fprintln(w, tbl); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "\n%s: %d events in %v, ended in %d (landed %s)\n",
		sc.Name, len(res.Entries), res.Duration, res.Year, res.Landing.ISO())
	return err
}

func showKeys(cmd *cobra.Command, args []string) error {
	var b strings.Builder
	b.WriteString("# Shortcuts\n\n| Key | Action |\n| --- | --- |\n")
	for _, k := range app.DefaultKeyMap().Shortcuts() {
		keys := make([]string, 0, len(k.Keys()))
		for _, name := range k.Keys() {
			if name == " " {
				name = "space"
			}
			keys = append(keys, "`"+name+"`")
		}
		fmt.Fprintf(&b, "| %s | %s |\n", strings.Join(keys, " "), k.Help().Desc)
	}
	b.WriteString("\nThe mouse wheel scrolls, clicks fire a burst and moving the pointer steers the ion drive.\n")

	cols, _ := termSize()
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(min(cols, 100)),
	)
	if err != nil {
		fmt.Print(b.String())
		return nil
	}
	out, err := r.Render(b.String())
	if err != nil {
		fmt.Print(b.String())
		return nil
	}
	fmt.Print(out)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	year, err := yearArg(args, 0, time.Now().Year())
	if err != nil {
		return err
	}
	m, err := mode(e.cfg)
	if err != nil {
		return err
	}
	// A 16:9 viewport gives the usual wide grid.
	b := block(year, 1600, 900, m)
	svg := export.YearToSVG(b, theme(e), cellSize)

	path := outFile
	if path == "" {
		path = fmt.Sprintf("%d.svg", year)
	}
	if err := os.WriteFile(path, []byte(svg), 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d×%d cells)\n", path, b.Geometry.Columns, b.Geometry.Rows)
	return nil
}
