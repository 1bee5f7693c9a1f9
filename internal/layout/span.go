package layout

import "math"

// DefaultTotalYears is the fixed number of year slots on the canvas.
const DefaultTotalYears = 2000

// Span maps scroll positions to years. Index BaseOffset() is the year of
// today; every other index is a year before or after it.
type Span struct {
	TotalYears int
	TodayYear  int
}

func NewSpan(totalYears, todayYear int) Span {
	if totalYears <= 0 {
		totalYears = DefaultTotalYears
	}
	return Span{TotalYears: totalYears, TodayYear: todayYear}
}

func (s Span) BaseOffset() int { return s.TotalYears / 2 }

func (s Span) YearForIndex(index int) int {
	return s.TodayYear + (index - s.BaseOffset())
}

func (s Span) IndexForYear(year int) int {
	return year - s.TodayYear + s.BaseOffset()
}

// Extent is the total scrollable height of the canvas.
func (s Span) Extent(yearHeight float64) float64 {
	return float64(s.TotalYears) * yearHeight
}

func (s Span) ClampIndex(index int) int {
	if index < 0 {
		return 0
	}
	if index > s.TotalYears-1 {
		return s.TotalYears - 1
	}
	return index
}

// IndexFromScroll rounds to the nearest year slot.
func IndexFromScroll(scrollTop, yearHeight float64) int {
	if yearHeight <= 0 {
		return 0
	}
	return int(math.Round(scrollTop / yearHeight))
}

// FloorIndexFromScroll is the slot whose top edge is at or above scrollTop.
func FloorIndexFromScroll(scrollTop, yearHeight float64) int {
	if yearHeight <= 0 {
		return 0
	}
	return int(math.Floor(scrollTop / yearHeight))
}

// YearFromScroll implements
// currentYear = today.year + (round(scrollTop / yearHeight) - baseYearOffset).
func (s Span) YearFromScroll(scrollTop, yearHeight float64) int {
	return s.YearForIndex(IndexFromScroll(scrollTop, yearHeight))
}

func OffsetForIndex(index int, yearHeight float64) float64 {
	return float64(index) * yearHeight
}

func (s Span) OffsetForYear(year int, yearHeight float64) float64 {
	return OffsetForIndex(s.IndexForYear(year), yearHeight)
}
