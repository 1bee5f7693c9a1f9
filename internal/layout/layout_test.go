package layout

import (
	"testing"
	"time"
)

func TestIsLeapYear(t *testing.T) {
	tests := []struct {
		year int
		want bool
	}{
		{2000, true},
		{1900, false},
		{2024, true},
		{2023, false},
		{0, true},
		{-4, true},
		{-100, false},
		{-400, true},
	}

	for _, tt := range tests {
		if got := IsLeapYear(tt.year); got != tt.want {
			t.Errorf("IsLeapYear(%d) = %v, want %v", tt.year, got, tt.want)
		}
	}

	if DayCount(2024) != 366 || DayCount(2023) != 365 {
		t.Errorf("unexpected day counts: %d %d", DayCount(2024), DayCount(2023))
	}
}

func TestColumnsMultipleOfSeven(t *testing.T) {
	sizes := []struct{ w, h float64 }{
		{600, 400}, {800, 600}, {1280, 640}, {1920, 1080}, {3840, 600}, {601, 2000}, {2560, 300},
	}
	for year := 1990; year <= 2030; year++ {
		days := DayCount(year)
		for _, s := range sizes {
			cols := Columns(s.w, s.h, days)
			if cols%7 != 0 || cols < 7 {
				t.Fatalf("Columns(%v, %v, %d) = %d, not a positive multiple of 7", s.w, s.h, days, cols)
			}
		}
		for _, w := range []float64{0, 320, 599.9} {
			if cols := Columns(w, 800, days); cols != 7 {
				t.Fatalf("Columns(%v) below breakpoint = %d, want 7", w, cols)
			}
		}
	}
}

func TestGridGeometry(t *testing.T) {
	cols, rows := GridGeometry(1280, 640, 366, 0)
	if cols != 28 {
		t.Errorf("expected 28 columns, got %d", cols)
	}
	if rows != 14 {
		t.Errorf("expected 14 rows, got %d", rows)
	}

	cols, rows = GridGeometry(400, 800, 365, 6)
	if cols != 7 || rows != 53 {
		t.Errorf("narrow viewport: expected 7x53, got %dx%d", cols, rows)
	}
}

func TestGridOffsetChronological(t *testing.T) {
	tests := []struct {
		year int
		want int
	}{
		{2024, 0}, // Monday
		{2023, 6}, // Sunday
		{1850, 1}, // Tuesday
		{1900, 0}, // Monday
	}
	for _, tt := range tests {
		if got := GridOffset(tt.year, Chronological, 28); got != tt.want {
			t.Errorf("GridOffset(%d) = %d, want %d", tt.year, got, tt.want)
		}
	}
}

func TestGridOffsetRandomized(t *testing.T) {
	if got := GridOffset(2024, Randomized, 28); got != 11 {
		t.Errorf("expected 11, got %d", got)
	}
	if got := GridOffset(1850, Randomized, 28); got != 19 {
		t.Errorf("pre-epoch year: expected 19, got %d", got)
	}
	for year := -500; year < 3000; year += 37 {
		a := GridOffset(year, Randomized, 35)
		b := GridOffset(year, Randomized, 35)
		if a != b {
			t.Fatalf("randomized offset not reproducible for %d", year)
		}
		if a < 0 || a >= 35 {
			t.Fatalf("offset %d out of range for %d", a, year)
		}
	}
}

func TestIsBlockScrollable(t *testing.T) {
	if !IsBlockScrollable(640, 14) {
		t.Error("640/14 rows should be scrollable")
	}
	if IsBlockScrollable(1200, 14) {
		t.Error("1200/14 rows should not be scrollable")
	}
	if IsBlockScrollable(640, 0) {
		t.Error("zero rows is never scrollable")
	}
}

func TestDateArithmetic(t *testing.T) {
	d := DayOfYear(1850, 40)
	if d.String() != "Sat Feb 09 1850" {
		t.Errorf("unexpected date: %s", d)
	}

	for _, tm := range []time.Time{
		time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		time.Date(1600, 12, 31, 0, 0, 0, 0, time.UTC),
		time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC),
	} {
		got := FromTime(tm)
		if back := DateFromDays(got.Days()); !back.Equal(got) {
			t.Errorf("round trip failed for %v: %v", tm, back)
		}
		if got.Weekday() != tm.Weekday() {
			t.Errorf("weekday mismatch for %v: %v", tm, got.Weekday())
		}
	}

	if DayOfYear(2024, 366).String() != "Tue Dec 31 2024" {
		t.Errorf("unexpected last day: %s", DayOfYear(2024, 366))
	}
}

func TestBuildCells(t *testing.T) {
	g := Compute(2023, 1280, 640, Chronological)
	today := NewDate(2023, 3, 1)
	cells := BuildCells(nil, g, today)

	if len(cells) != g.Columns*g.Rows {
		t.Fatalf("expected %d cells, got %d", g.Columns*g.Rows, len(cells))
	}

	members, todays, monthStarts := 0, 0, 0
	for i, c := range cells {
		if c.IsCurrentYearMember {
			members++
		}
		if c.IsToday {
			todays++
		}
		if c.IsMonthStart {
			monthStarts++
		}
		if i < g.Offset && !c.IsFillerPast {
			t.Errorf("cell %d should be past filler", i)
		}
	}
	if members != 365 {
		t.Errorf("expected 365 member cells, got %d", members)
	}
	if todays != 1 || monthStarts != 12 {
		t.Errorf("expected 1 today and 12 month starts, got %d and %d", todays, monthStarts)
	}

	first := cells[g.Offset]
	if first.Date.String() != "Sun Jan 01 2023" || first.Label != "JAN" {
		t.Errorf("unexpected first day: %s %q", first.Date, first.Label)
	}
	if !first.IsWeekend {
		t.Error("Jan 1 2023 is a Sunday")
	}

	if idx := CellIndex(g, today); idx < 0 || !cells[idx].IsToday {
		t.Errorf("CellIndex did not locate today: %d", idx)
	}
	if CellIndex(g, NewDate(2030, 1, 1)) != -1 {
		t.Error("expected -1 for date outside the grid")
	}
}

func TestSpanRoundTrip(t *testing.T) {
	span := NewSpan(2000, 2024)
	h := 640.0

	if span.BaseOffset() != 1000 {
		t.Fatalf("expected base offset 1000, got %d", span.BaseOffset())
	}

	for _, top := range []float64{0, 319, 321, 640000, 640000 + 300, 1279999} {
		year := span.YearFromScroll(top, h)
		want := float64(IndexFromScroll(top, h)) * h
		got := span.OffsetForYear(year, h)
		if got != want {
			t.Errorf("scrollTop %v: block offset %v, want %v", top, got, want)
		}
		if d := got - top; d > h || d < -h {
			t.Errorf("scrollTop %v: offset %v more than one year away", top, got)
		}
	}

	if span.YearFromScroll(640000, h) != 2024 {
		t.Errorf("base offset should map to today")
	}
	if span.IndexForYear(1850) != 1000-174 {
		t.Errorf("unexpected index for 1850: %d", span.IndexForYear(1850))
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("random")
	if err != nil || m != Randomized {
		t.Errorf("expected randomized, got %v %v", m, err)
	}
	if _, err := ParseMode("sideways"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
