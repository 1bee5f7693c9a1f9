package viz

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/chronogrid/internal/layout"
	"github.com/san-kum/chronogrid/internal/pool"
)

// headerLines is the title line plus a separator above the day grid.
const headerLines = 2

// Grid renders year-blocks as terminal lines and composes the visible
// window. It is the pool's Canvas: blocks are copied in on Attach and Move
// and dropped on Detach.
type Grid struct {
	styles Styles
	cols   int
	rows   int
	cellW  float64
	cellH  float64

	blocks    map[int]*blockView
	hoverYear int
	hoverCell int
}

type blockView struct {
	top   float64
	geo   layout.Geometry
	cells []layout.Cell
	focus int
	first int
	lines []string
}

var _ pool.Canvas = (*Grid)(nil)

// NewGrid returns a grid for a terminal of cols x rows characters, each
// character standing for cellW x cellH layout pixels. One year-block is
// rows lines tall.
func NewGrid(st Styles, cols, rows int, cellW, cellH float64) *Grid {
	return &Grid{
		styles:    st,
		cols:      cols,
		rows:      rows,
		cellW:     cellW,
		cellH:     cellH,
		blocks:    make(map[int]*blockView),
		hoverYear: math.MinInt,
		hoverCell: -1,
	}
}

func (g *Grid) Attach(b *pool.Block) {
	v := &blockView{}
	g.blocks[b.Year] = v
	g.copyBlock(v, b)
}

func (g *Grid) Move(b *pool.Block) {
	v, ok := g.blocks[b.Year]
	if !ok {
		g.Attach(b)
		return
	}
	g.copyBlock(v, b)
}

func (g *Grid) Detach(year int) {
	delete(g.blocks, year)
}

func (g *Grid) copyBlock(v *blockView, b *pool.Block) {
	v.top = b.TopOffset
	v.geo = b.Geometry
	v.cells = append(v.cells[:0], b.Cells...)
	v.focus = b.Focus
	g.render(b.Year, v)
}

// Len returns how many blocks the grid holds.
func (g *Grid) Len() int { return len(g.blocks) }

func (g *Grid) SetStyles(st Styles) {
	g.styles = st
	g.renderAll()
}

func (g *Grid) Styles() Styles { return g.styles }

// Resize changes the terminal size. Blocks keep their old geometry until
// the pool re-renders them.
func (g *Grid) Resize(cols, rows int) {
	g.cols = cols
	g.rows = rows
	g.renderAll()
}

// PixelSize is the viewport size in layout pixels.
func (g *Grid) PixelSize() (width, height float64) {
	return float64(g.cols) * g.cellW, float64(g.rows) * g.cellH
}

// SetHover marks the cell under the pointer, or clears it with cell -1.
func (g *Grid) SetHover(year, cell int) {
	prev := g.hoverYear
	g.hoverYear, g.hoverCell = year, cell
	if v, ok := g.blocks[prev]; ok {
		g.render(prev, v)
	}
	if v, ok := g.blocks[year]; ok && year != prev {
		g.render(year, v)
	}
}

func (g *Grid) renderAll() {
	for year, v := range g.blocks {
		g.render(year, v)
	}
}

// View returns height lines of the grid starting at scrollTop.
func (g *Grid) View(scrollTop float64, height int) []string {
	out := make([]string, height)
	for r := range out {
		year, line, ok := g.locate(scrollTop, r)
		if !ok {
			continue
		}
		lines := g.blocks[year].lines
		if line < len(lines) {
			out[r] = lines[line]
		}
	}
	return out
}

// CellAt hit-tests the terminal position (col, row).
func (g *Grid) CellAt(scrollTop float64, col, row int) (year, index int, cell layout.Cell, ok bool) {
	year, line, ok := g.locate(scrollTop, row)
	if !ok {
		return 0, -1, layout.Cell{}, false
	}
	v := g.blocks[year]
	gridLine := line - headerLines
	if gridLine < 0 || v.geo.Columns == 0 {
		return 0, -1, layout.Cell{}, false
	}
	per, _ := g.rowSpan(v)
	var gr int
	if per > 0 {
		gr = gridLine / per
	} else {
		gr = v.first + gridLine
	}
	gc := col / g.cellChars(v)
	if gc >= v.geo.Columns || gr >= v.geo.Rows {
		return 0, -1, layout.Cell{}, false
	}
	idx := gr*v.geo.Columns + gc
	if idx >= len(v.cells) {
		return 0, -1, layout.Cell{}, false
	}
	return year, idx, v.cells[idx], true
}

func (g *Grid) locate(scrollTop float64, row int) (year, line int, ok bool) {
	py := scrollTop + float64(row)*g.cellH
	blockH := float64(g.rows) * g.cellH
	for y, v := range g.blocks {
		if py >= v.top && py < v.top+blockH {
			return y, int(math.Floor((py-v.top)/g.cellH + 1e-9)), true
		}
	}
	return 0, 0, false
}

// rowSpan returns how many lines each grid row gets and how many grid rows
// fit. A zero span means the grid is taller than the block and only a
// window of rows around the focus is shown.
func (g *Grid) rowSpan(v *blockView) (per, avail int) {
	avail = g.rows - headerLines
	if avail < 1 {
		avail = 1
	}
	if v.geo.Rows == 0 {
		return 1, avail
	}
	return avail / v.geo.Rows, avail
}

func (g *Grid) cellChars(v *blockView) int {
	w := 2
	if v.geo.Columns > 0 && g.cols/v.geo.Columns > w {
		w = g.cols / v.geo.Columns
	}
	return w
}

func (g *Grid) render(year int, v *blockView) {
	st := g.styles
	lines := make([]string, 0, g.rows)

	meta := fmt.Sprintf("  %d days · %d×%d", v.geo.DayCount, v.geo.Columns, v.geo.Rows)
	if layout.IsLeapYear(year) {
		meta += " · leap"
	}
	if v.geo.Scrollable {
		meta += " · scroll"
	}
	lines = append(lines, st.YearTitle.Render(strconv.Itoa(year))+st.YearMeta.Render(meta))
	lines = append(lines, st.Separator(g.cols))

	per, avail := g.rowSpan(v)
	first, last := 0, v.geo.Rows
	if per == 0 {
		focusRow := 0
		if v.focus >= 0 && v.geo.Columns > 0 {
			focusRow = v.focus / v.geo.Columns
		}
		first = focusRow - avail/2
		if first > v.geo.Rows-avail {
			first = v.geo.Rows - avail
		}
		if first < 0 {
			first = 0
		}
		last = min(first+avail, v.geo.Rows)
		per = 1
	}
	v.first = first

	w := g.cellChars(v)
	for r := first; r < last; r++ {
		var b strings.Builder
		for c := 0; c < v.geo.Columns; c++ {
			idx := r*v.geo.Columns + c
			if idx >= len(v.cells) {
				break
			}
			b.WriteString(g.styleFor(year, idx, v).Render(cellText(v.cells[idx], w)))
		}
		lines = append(lines, b.String())
		for i := 1; i < per; i++ {
			lines = append(lines, "")
		}
	}
	for len(lines) < g.rows {
		lines = append(lines, "")
	}
	v.lines = lines[:max(g.rows, 0)]
}

func (g *Grid) styleFor(year, idx int, v *blockView) lipgloss.Style {
	c := v.cells[idx]
	st := g.styles
	switch {
	case c.IsToday:
		return st.Today
	case idx == v.focus, year == g.hoverYear && idx == g.hoverCell:
		return st.Focus
	case c.IsFiller():
		return st.Filler
	case c.Label != "":
		return st.MonthLabel
	case c.IsWeekend:
		return st.Weekend
	}
	return st.Day
}

// cellText fits a day into w characters, right aligned with one space of
// gutter when there is room. Month starts carry their label.
func cellText(c layout.Cell, w int) string {
	text := strconv.Itoa(c.Date.Day)
	switch {
	case c.Label != "" && w >= 7:
		text = c.Label + " " + text
	case c.Label != "" && w >= 4:
		text = c.Label
	}
	inner := w
	if w >= 3 {
		inner = w - 1
	}
	if len(text) > inner {
		text = text[:inner]
	}
	text = strings.Repeat(" ", inner-len(text)) + text
	if inner < w {
		text += " "
	}
	return text
}

// RenderYear draws a single block on its own, for non-interactive output.
func RenderYear(st Styles, b *pool.Block, cols, rows int) string {
	g := NewGrid(st, cols, rows, 1, 1)
	g.Attach(b)
	return strings.Join(g.blocks[b.Year].lines, "\n")
}
