package viz

import (
	"strings"
	"testing"

	"github.com/san-kum/chronogrid/internal/layout"
	"github.com/san-kum/chronogrid/internal/pool"
)

func testBlock(year int, top float64) *pool.Block {
	g := layout.Compute(year, 800, 600, layout.Chronological)
	return &pool.Block{
		Year:      year,
		TopOffset: top,
		Geometry:  g,
		Cells:     layout.BuildCells(nil, g, layout.NewDate(2024, 3, 15)),
		Focus:     -1,
	}
}

func TestGridViewStacksBlocks(t *testing.T) {
	g := NewGrid(NewStyles(ThemeDark), 80, 20, 10, 30)
	g.Attach(testBlock(2024, 0))
	g.Attach(testBlock(2025, 600))

	lines := g.View(0, 40)
	if len(lines) != 40 {
		t.Fatalf("lines = %d, want 40", len(lines))
	}
	if !strings.Contains(lines[0], "2024") {
		t.Errorf("first line = %q, want the 2024 title", lines[0])
	}
	if !strings.Contains(lines[20], "2025") {
		t.Errorf("line 20 = %q, want the 2025 title", lines[20])
	}
	if !strings.Contains(lines[0], "leap") {
		t.Error("2024 should be marked leap")
	}

	half := g.View(300, 20)
	if !strings.Contains(half[10], "2025") {
		t.Errorf("half scrolled line 10 = %q, want the 2025 title", half[10])
	}

	g.Detach(2024)
	if g.Len() != 1 {
		t.Fatalf("Len = %d after detach, want 1", g.Len())
	}
	if g.View(0, 1)[0] != "" {
		t.Error("detached block still drawn")
	}
}

func TestGridCellAt(t *testing.T) {
	g := NewGrid(NewStyles(ThemeDark), 80, 20, 10, 30)
	b := testBlock(2024, 0)
	g.Attach(b)

	tests := []struct {
		name     string
		col, row int
		wantOK   bool
	}{
		{"title line", 0, 0, false},
		{"separator", 0, 1, false},
		{"first cell", 0, headerLines, true},
		{"past the last column", 79 + 80, headerLines, false},
		{"below every block", 0, 25, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year, idx, cell, ok := g.CellAt(0, tt.col, tt.row)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if year != 2024 || idx != 0 {
				t.Errorf("got year %d cell %d, want 2024 cell 0", year, idx)
			}
			if cell != b.Cells[0] {
				t.Errorf("cell = %+v, want %+v", cell, b.Cells[0])
			}
		})
	}
}

func TestGridHoverRerenders(t *testing.T) {
	g := NewGrid(NewStyles(ThemeDark), 80, 20, 10, 30)
	g.Attach(testBlock(2024, 0))
	before := strings.Join(g.View(0, 20), "\n")

	g.SetHover(2024, 3)
	g.SetHover(2024, -1)
	if after := strings.Join(g.View(0, 20), "\n"); after != before {
		t.Error("clearing the hover should restore the original lines")
	}
}

func TestRenderYear(t *testing.T) {
	out := RenderYear(NewStyles(ThemeLight), testBlock(2023, 0), 80, 20)
	if !strings.Contains(out, "2023") || !strings.Contains(out, "365 days") {
		t.Errorf("unexpected header:\n%s", out)
	}
	if strings.Contains(out, "leap") {
		t.Error("2023 is not a leap year")
	}
	if n := strings.Count(out, "\n") + 1; n != 20 {
		t.Errorf("lines = %d, want 20", n)
	}
}

func TestCellText(t *testing.T) {
	day := layout.Cell{Date: layout.NewDate(2024, 1, 9)}
	month := layout.Cell{Date: layout.NewDate(2024, 2, 1), Label: "Feb"}

	tests := []struct {
		name string
		cell layout.Cell
		w    int
		want string
	}{
		{"narrow", day, 2, " 9"},
		{"gutter", day, 4, "  9 "},
		{"label replaces day", month, 5, " Feb "},
		{"label and day", month, 8, "  Feb 1 "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cellText(tt.cell, tt.w); got != tt.want {
				t.Errorf("cellText = %q, want %q", got, tt.want)
			}
		})
	}
}
