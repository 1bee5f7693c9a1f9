package layout

import "time"

// Cell is one slot of a year-block grid, either a day of the block's year or
// a filler day borrowed from a neighbouring year.
type Cell struct {
	Date                Date
	IsCurrentYearMember bool
	IsToday             bool
	IsWeekend           bool
	IsMonthStart        bool
	IsWeekStart         bool
	IsFillerPast        bool
	IsFillerFuture      bool
	// Label is the short month name shown on month starts and on the first
	// real day of the grid.
	Label string
}

func (c Cell) IsFiller() bool { return !c.IsCurrentYearMember }

// WeekdayLabel is empty for filler cells.
func (c Cell) WeekdayLabel() string {
	if !c.IsCurrentYearMember {
		return ""
	}
	return DaysShort[c.Date.Weekday()]
}

// BuildCells fills dst (reusing its capacity) with the g.Cells() cells of the
// year, starting g.Offset days before January 1st.
func BuildCells(dst []Cell, g Geometry, today Date) []Cell {
	n := g.Cells()
	if cap(dst) < n {
		dst = make([]Cell, n)
	}
	dst = dst[:n]

	day := DaysFromCivil(g.Year, 1, 1) - int64(g.Offset)
	for step := 0; step < n; step++ {
		d := DateFromDays(day)
		member := d.Year == g.Year
		wd := d.Weekday()

		c := Cell{
			Date:                d,
			IsCurrentYearMember: member,
			IsToday:             d.Equal(today),
			IsWeekend:           member && (wd == time.Saturday || wd == time.Sunday),
			IsMonthStart:        member && d.Day == 1,
			IsWeekStart:         member && wd == time.Monday,
			IsFillerPast:        !member && d.Year < g.Year,
			IsFillerFuture:      !member && d.Year > g.Year,
		}
		if c.IsMonthStart || (member && step == g.Offset) {
			c.Label = MonthsShort[d.Month-1]
		}
		dst[step] = c
		day++
	}
	return dst
}

// CellIndex returns the grid position of date within a block laid out as g,
// or -1 when the date is not on the grid.
func CellIndex(g Geometry, date Date) int {
	idx := int(date.Days()-DaysFromCivil(g.Year, 1, 1)) + g.Offset
	if idx < 0 || idx >= g.Cells() {
		return -1
	}
	return idx
}
