// Package layout holds the pure calendar geometry behind the temporal grid.
//
// Nothing here keeps state. The functions convert between scroll offsets,
// year indices and years, and compute how a single year is laid out as a
// grid of day cells:
//
//   - [IsLeapYear] and [DayCount]: Gregorian year length
//   - [Columns], [Rows] and [GridGeometry]: grid shape for a viewport
//   - [GridOffset]: leading filler cells before January 1st
//   - [IsBlockScrollable]: whether a block needs internal scrolling
//   - [BuildCells]: the ordered cells of one year-block
//   - [Span]: the mapping between scroll position, index and year
//
// Dates are handled with proleptic Gregorian day arithmetic ([Date]) so any
// integer year works, including negative ones.
package layout
