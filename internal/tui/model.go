// Package tui is the interactive terminal frontend. It turns bubbletea
// messages into engine calls and paints the year grid, the particle layer
// and the HUD.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/san-kum/chronogrid/internal/app"
	"github.com/san-kum/chronogrid/internal/bus"
	"github.com/san-kum/chronogrid/internal/viz"
)

const (
	hudLines    = 2
	bandHistory = 48
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// BodyRows is how many of rows terminal lines the grid gets.
func BodyRows(rows int) int { return max(rows-hudLines, 1) }

// Model is the bubbletea model around an App.
type Model struct {
	app    *app.App
	grid   *viz.Grid
	canvas *viz.Canvas
	help   help.Model
	keys   app.KeyMap

	cols, rows   int
	cellW, cellH float64
	pendingSize  bool
	spinner      int

	hovering  bool
	hoverYear int
	hoverCell int

	bass   []float64
	unsubs []bus.Unsubscribe
}

// New wraps a that renders into grid. grid must be the Canvas a was built
// with.
func New(a *app.App, grid *viz.Grid, cols, rows int) *Model {
	cfg := a.Config()
	m := &Model{
		app:    a,
		grid:   grid,
		canvas: viz.NewCanvas(cols, BodyRows(rows)),
		help:   help.New(),
		keys:   a.Keys(),
		cols:   cols,
		rows:   rows,
		cellW:  cfg.Display.CellWidth,
		cellH:  cfg.Display.CellHeight,
	}
	grid.SetStyles(viz.NewStyles(viz.GetTheme(a.Effects.Theme())))
	m.unsubs = append(m.unsubs, bus.On(a.Bus, bus.UIThemeChanged, func(t bus.ThemeChanged) {
		m.grid.SetStyles(viz.NewStyles(viz.GetTheme(t.Theme)))
	}))
	return m
}

func (m *Model) Init() tea.Cmd {
	m.app.Boot()
	return tick()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.app.Tick(time.Time(msg))
		if m.pendingSize && m.app.Booted() {
			m.pendingSize = false
			m.applySize()
		}
		m.spinner++
		if m.app.Mixer.Ready() {
			m.bass = append(m.bass, m.app.Mixer.Bands().Bass)
			if len(m.bass) > bandHistory {
				m.bass = m.bass[len(m.bass)-bandHistory:]
			}
		}
		return m, tick()

	case tea.WindowSizeMsg:
		if msg.Width == m.cols && msg.Height == m.rows {
			return m, nil
		}
		m.cols, m.rows = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.pendingSize = !m.app.Booted()
		if !m.pendingSize {
			m.applySize()
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		m.app.HandleKey(msg.String())
		return m, nil

	case tea.MouseMsg:
		m.mouse(msg)
		return m, nil

	case tea.FocusMsg:
		m.app.Focus()
		return m, nil

	case tea.BlurMsg:
		m.app.Blur()
		return m, nil
	}
	return m, nil
}

func (m *Model) applySize() {
	body := BodyRows(m.rows)
	m.grid.Resize(m.cols, body)
	m.canvas.Resize(m.cols, body)
	m.app.Resize(float64(m.cols)*m.cellW, float64(body)*m.cellH)
}

func (m *Model) mouse(msg tea.MouseMsg) {
	px := (float64(msg.X) + 0.5) * m.cellW
	py := (float64(msg.Y) + 0.5) * m.cellH

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.app.ScrollStep(-1)
	case msg.Button == tea.MouseButtonWheelDown:
		m.app.ScrollStep(1)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.app.Click(px, py)
	case msg.Action == tea.MouseActionMotion:
		m.app.PointerMove(px, py)
		m.trackHover(msg.X, msg.Y)
	}
}

// trackHover fires hover side effects when the pointer enters a new cell.
func (m *Model) trackHover(col, row int) {
	year, idx, cell, ok := m.grid.CellAt(m.app.Nav.ScrollTop(), col, row)
	if !ok {
		if m.hovering {
			m.hovering = false
			m.app.HoverOut()
			m.grid.SetHover(m.hoverYear, -1)
		}
		return
	}
	if m.hovering && year == m.hoverYear && idx == m.hoverCell {
		return
	}
	m.hovering = true
	m.hoverYear, m.hoverCell = year, idx
	m.grid.SetHover(year, idx)
	m.app.Hover(cell.IsFiller())
}

func (m *Model) View() string {
	st := m.grid.Styles()
	if m.app.Loading() {
		return m.loadingView(st)
	}

	body := BodyRows(m.rows)
	var lines []string
	if m.app.Effects.Veiled() {
		lines = make([]string, body)
		for i := range lines {
			lines[i] = st.Veil.Render(strings.Repeat("░", m.cols))
		}
	} else {
		lines = m.grid.View(m.app.Nav.ScrollTop(), body)
		m.overlayParticles(lines, st)
		m.overlayCursor(lines, st)
	}
	if t := m.app.Toasts.View(st); t != "" {
		placed := strings.Split(lipgloss.PlaceHorizontal(m.cols, lipgloss.Right, t), "\n")
		for i := 0; i < len(placed) && i < len(lines); i++ {
			lines[i] = placed[i]
		}
	}
	if m.help.ShowAll {
		full := strings.Split(st.Panel.Render(m.help.FullHelpView(m.keys.FullHelp())), "\n")
		off := max(body-len(full), 0)
		for i := 0; i < len(full) && off+i < len(lines); i++ {
			lines[off+i] = full[i]
		}
	}

	lines = append(lines, st.Separator(m.cols), m.hud(st))
	return strings.Join(lines, "\n")
}

func (m *Model) loadingView(st viz.Styles) string {
	p := m.app.Progress()
	width := min(40, max(m.cols-4, 10))
	status := p.Status
	if status == "" {
		status = "Powering Up"
	}
	content := lipgloss.JoinVertical(lipgloss.Center,
		viz.GradientText("CHRONOGRID", st.Theme.Primary, st.Theme.Secondary),
		"",
		st.ProgressBar(float64(p.Percent)/100, width),
		st.HUD.Render(viz.Spinner(m.spinner/4)+" "+status),
	)
	return lipgloss.Place(m.cols, m.rows, lipgloss.Center, lipgloss.Center, content)
}

// overlayParticles splices lit braille cells over the grid lines.
func (m *Model) overlayParticles(lines []string, st viz.Styles) {
	m.canvas.Clear()
	m.app.Particles.Draw(m.canvas, m.cellW/2, m.cellH/4)
	for row := range lines {
		if row >= m.canvas.Height {
			break
		}
		for col := 0; col < m.canvas.Width; col++ {
			if m.canvas.Lit(col, row) {
				lines[row] = splice(lines[row], col, st.Particle.Render(string(m.canvas.Rune(col, row))))
			}
		}
	}
}

// overlayCursor marks the ion drive, colored by its glow.
func (m *Model) overlayCursor(lines []string, st viz.Styles) {
	if !m.app.Effects.Enabled() {
		return
	}
	p := m.app.Effects.Cursor()
	col, row := int(p.X/m.cellW), int(p.Y/m.cellH)
	if row < 0 || row >= len(lines) || col < 0 || col >= m.cols {
		return
	}
	style := lipgloss.NewStyle().Foreground(st.Theme.GlowColor(m.app.Effects.Glow()))
	lines[row] = splice(lines[row], col, style.Render("◉"))
}

// splice replaces the single-width cell at col of a styled line.
func splice(line string, col int, cell string) string {
	w := ansi.StringWidth(line)
	if w < col {
		line += strings.Repeat(" ", col-w)
	}
	return ansi.Truncate(line, col, "") + cell + ansi.TruncateLeft(line, col+1, "")
}

func (m *Model) hud(st viz.Styles) string {
	n := m.app.Nav
	audio := "off"
	if m.app.Mixer.Enabled() {
		audio = "on"
	}
	if m.app.Power.Enabled() {
		audio = "saving"
	}
	year := st.HUDValue.Render(fmt.Sprint(n.CurrentYear()))
	if c := n.Chroma(); c > 0 {
		year = lipgloss.NewStyle().Bold(true).Foreground(st.Theme.Chroma(c)).Render(fmt.Sprint(n.CurrentYear()))
	}
	parts := []string{
		year,
		st.HUD.Render(n.State().String()),
		st.HUD.Render("mode ") + st.HUDValue.Render(n.Mode().String()),
		st.HUD.Render("audio ") + st.HUDValue.Render(audio),
	}
	if len(m.bass) > 1 {
		parts = append(parts, st.Particle.Render(sparkline(m.bass, 16)))
	}
	left := strings.Join(parts, st.HUD.Render("  ·  "))
	right := m.help.ShortHelpView(m.keys.ShortHelp())
	gap := m.cols - ansi.StringWidth(left) - ansi.StringWidth(right)
	if gap < 2 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

func sparkline(data []float64, width int) string {
	if len(data) == 0 {
		return ""
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
	}
	rang := maxVal - minVal
	if rang == 0 {
		rang = 1
	}
	step := max(len(data)/width, 1)
	var sb strings.Builder
	for i := 0; i < width && i*step < len(data); i++ {
		idx := int((data[i*step] - minVal) / rang * 7)
		sb.WriteRune(chars[min(max(idx, 0), 7)])
	}
	return sb.String()
}

// Close releases the model's subscriptions.
func (m *Model) Close() {
	for _, u := range m.unsubs {
		u()
	}
	m.unsubs = nil
}

// Run starts the program on the alternate screen with mouse motion and
// focus reporting, and closes the app when it exits.
func Run(a *app.App, grid *viz.Grid, cols, rows int) error {
	m := New(a, grid, cols, rows)
	defer m.Close()
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithReportFocus(),
	)
	_, err := p.Run()
	if cerr := a.Close(); err == nil {
		err = cerr
	}
	return err
}
