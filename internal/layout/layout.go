package layout

import (
	"fmt"
	"math"
	"strings"
)

const (
	DaysPerWeek = 7
	// Breakpoint is the viewport width below which the grid is a plain week.
	Breakpoint = 600.0
	// MinRowHeight is the smallest row that still shows a date legibly.
	MinRowHeight = 60.0
)

// Mode selects how the leading filler of a year is computed.
type Mode int

const (
	// Chronological aligns January 1st to its ISO weekday column.
	Chronological Mode = iota
	// Randomized shifts every year by a deterministic function of its date.
	Randomized
)

func (m Mode) String() string {
	switch m {
	case Randomized:
		return "random"
	default:
		return "structured"
	}
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "structured", "chronological", "chrono":
		return Chronological, nil
	case "random", "randomized":
		return Randomized, nil
	}
	return Chronological, fmt.Errorf("layout: unknown mode %q", s)
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func IsLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

func DayCount(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// Columns is always a multiple of 7 from the breakpoint up, 7 below it.
func Columns(width, height float64, dayCount int) int {
	if width < Breakpoint || height <= 0 {
		return DaysPerWeek
	}
	side := math.Ceil(math.Sqrt(float64(dayCount) * (width / height)))
	cols := int(math.Ceil(side/DaysPerWeek)) * DaysPerWeek
	if cols < DaysPerWeek {
		return DaysPerWeek
	}
	return cols
}

func Rows(dayCount, gridOffset, columns int) int {
	if columns <= 0 {
		return 0
	}
	return (dayCount + gridOffset + columns - 1) / columns
}

// GridGeometry returns the column and row count of a year-block.
func GridGeometry(width, height float64, dayCount, gridOffset int) (columns, rows int) {
	columns = Columns(width, height, dayCount)
	return columns, Rows(dayCount, gridOffset, columns)
}

// GridOffset returns the number of filler cells before January 1st. The
// randomized variant depends only on the date, never on session state.
func GridOffset(year int, mode Mode, columns int) int {
	jan1 := DaysFromCivil(year, 1, 1)
	if mode == Randomized && columns > 0 {
		return int(floorMod(jan1, int64(columns)))
	}
	weekday := floorMod(jan1+4, 7)
	return int((weekday + 6) % 7)
}

func IsBlockScrollable(viewportHeight float64, rows int) bool {
	if rows <= 0 {
		return false
	}
	return viewportHeight/float64(rows) < MinRowHeight
}

// Geometry is the full layout of one year at a given viewport size.
type Geometry struct {
	Year       int
	DayCount   int
	Columns    int
	Rows       int
	Offset     int
	Scrollable bool
}

func (g Geometry) Cells() int { return g.Columns * g.Rows }

// Compute lays out year for a viewport of width x height.
func Compute(year int, width, height float64, mode Mode) Geometry {
	days := DayCount(year)
	cols := Columns(width, height, days)
	offset := GridOffset(year, mode, cols)
	rows := Rows(days, offset, cols)
	return Geometry{
		Year:       year,
		DayCount:   days,
		Columns:    cols,
		Rows:       rows,
		Offset:     offset,
		Scrollable: IsBlockScrollable(height, rows),
	}
}
