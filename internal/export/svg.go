package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/chronogrid/internal/layout"
	"github.com/san-kum/chronogrid/internal/pool"
	"github.com/san-kum/chronogrid/internal/viz"
)

// YearToSVG draws a year-block as a grid of cell squares of side cell
// pixels, with a title row above it.
func YearToSVG(b *pool.Block, theme viz.Theme, cell float64) string {
	if b == nil || b.Geometry.Columns == 0 {
		return ""
	}
	g := b.Geometry
	title := cell * 1.5
	width := float64(g.Columns) * cell
	height := float64(g.Rows)*cell + title

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f" font-family="monospace">
<rect width="100%%" height="100%%" fill="%s"/>
<text x="4" y="%.1f" font-size="%.1f" fill="%s">%d</text>
`, width, height, width, height, theme.Background, title*0.75, cell*0.9, theme.Primary, b.Year)

	inset := cell * 0.08
	for i, c := range b.Cells {
		x := float64(i%g.Columns) * cell
		y := float64(i/g.Columns)*cell + title
		fmt.Fprintf(&sb, "<rect x=\"%.1f\" y=\"%.1f\" width=\"%.1f\" height=\"%.1f\" rx=\"%.1f\" fill=\"%s\"/>\n",
			x+inset, y+inset, cell-2*inset, cell-2*inset, cell*0.15, cellFill(theme, c))
		text := theme.Text
		if c.IsToday {
			text = theme.Background
		}
		fmt.Fprintf(&sb, "<text x=\"%.1f\" y=\"%.1f\" font-size=\"%.1f\" text-anchor=\"middle\" fill=\"%s\">%s</text>\n",
			x+cell/2, y+cell*0.62, cell*0.35, text, cellLabel(c))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func cellFill(t viz.Theme, c layout.Cell) string {
	switch {
	case c.IsToday:
		return string(t.Primary)
	case c.IsFiller():
		return string(t.Filler)
	case c.IsWeekend:
		return string(t.Weekend) + "40"
	}
	return string(t.Muted) + "30"
}

func cellLabel(c layout.Cell) string {
	if c.Label != "" && !c.IsFiller() {
		return fmt.Sprintf("%s %d", c.Label, c.Date.Day)
	}
	return fmt.Sprint(c.Date.Day)
}

// OffsetsToSVG plots a series (grid offsets per year, warp positions per
// frame) as a polyline scaled to width x height.
func OffsetsToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	minY, maxY := values[0], values[0]
	for _, v := range values {
		minY = min(minY, v)
		maxY = max(maxY, v)
	}

	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY
	rangeX := float64(len(values) - 1)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor)

	for i, v := range values {
		x := float64(i) / rangeX * float64(width)
		y := float64(height) - (v-minY)/rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
