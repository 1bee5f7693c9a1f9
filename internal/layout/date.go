package layout

import (
	"fmt"
	"time"
)

var (
	MonthsShort = [12]string{"JAN", "FEB", "MAR", "APR", "MAY", "JUN", "JUL", "AUG", "SEP", "OCT", "NOV", "DEC"}
	DaysShort   = [7]string{"SUN", "MON", "TUE", "WED", "THU", "FRI", "SAT"}

	monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	dayNames   = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
)

// Date is a proleptic Gregorian calendar date. Month and Day are 1-based.
type Date struct {
	Year  int
	Month int
	Day   int
}

func NewDate(year, month, day int) Date {
	return DateFromDays(DaysFromCivil(year, month, day))
}

// FromTime converts the calendar date of t in its own location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: int(m), Day: d}
}

// DayOfYear returns the n-th day (1-based) of year. Values past the end of
// the year roll over into the next one.
func DayOfYear(year, n int) Date {
	return DateFromDays(DaysFromCivil(year, 1, 1) + int64(n-1))
}

// DaysFromCivil returns the number of days since 1970-01-01.
func DaysFromCivil(year, month, day int) int64 {
	y := int64(year)
	if month <= 2 {
		y--
	}
	era := floorDiv(y, 400)
	yoe := y - era*400
	mp := (int64(month) + 9) % 12
	doy := (153*mp+2)/5 + int64(day) - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}

// DateFromDays is the inverse of DaysFromCivil.
func DateFromDays(days int64) Date {
	z := days + 719468
	era := floorDiv(z, 146097)
	doe := z - era*146097
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	y := yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	d := doy - (153*mp+2)/5 + 1
	m := mp + 3
	if m > 12 {
		m -= 12
	}
	if m <= 2 {
		y++
	}
	return Date{Year: int(y), Month: int(m), Day: int(d)}
}

func (d Date) Days() int64 {
	return DaysFromCivil(d.Year, d.Month, d.Day)
}

func (d Date) AddDays(n int) Date {
	return DateFromDays(d.Days() + int64(n))
}

// Weekday counts from Sunday, like time.Weekday.
func (d Date) Weekday() time.Weekday {
	return time.Weekday(floorMod(d.Days()+4, 7))
}

func (d Date) YearDay() int {
	return int(d.Days()-DaysFromCivil(d.Year, 1, 1)) + 1
}

func (d Date) Equal(o Date) bool {
	return d.Year == o.Year && d.Month == o.Month && d.Day == o.Day
}

func (d Date) Before(o Date) bool {
	return d.Days() < o.Days()
}

func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// String renders the date as "Tue Feb 09 1850".
func (d Date) String() string {
	if d.Month < 1 || d.Month > 12 {
		return "Invalid Date"
	}
	year := fmt.Sprintf("%04d", d.Year)
	if d.Year < 0 {
		year = fmt.Sprintf("-%06d", -d.Year)
	}
	return fmt.Sprintf("%s %s %02d %s", dayNames[d.Weekday()], monthNames[d.Month-1], d.Day, year)
}

// ISO renders the date as YYYY-MM-DD.
func (d Date) ISO() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}
