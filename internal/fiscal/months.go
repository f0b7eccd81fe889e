// Package fiscal maps between calendar months and a farm's fiscal year.
//
// A fiscal year is named after the calendar year it ends in. With the default
// November start, FY2025 runs Nov 2024 through Oct 2025.
package fiscal

import (
	"strconv"
	"strings"
	"time"
)

// DefaultStartMonth is used when an assumption has no start month.
const DefaultStartMonth = "Nov"

const (
	minYear = 2000
	maxYear = 2100
)

// CalendarMonths are the month keys used in monthly records, January first.
var CalendarMonths = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// DefaultMonths is the Nov-Oct sequence.
var DefaultMonths = Months(DefaultStartMonth)

func calendarIndex(month string) int {
	for i, m := range CalendarMonths {
		if m == month {
			return i
		}
	}
	return -1
}

// IsValidMonth reports whether month is one of the calendar month keys. The
// match is case-sensitive.
func IsValidMonth(month string) bool {
	return calendarIndex(month) >= 0
}

// Months returns the 12 month keys in fiscal order starting at start. An empty
// or unknown start falls back to DefaultStartMonth.
func Months(start string) []string {
	s := calendarIndex(start)
	if s < 0 {
		s = calendarIndex(DefaultStartMonth)
	}
	out := make([]string, 12)
	for i := range out {
		out[i] = CalendarMonths[(s+i)%12]
	}
	return out
}

// MonthIndex returns the position of month within the fiscal year, or -1.
func MonthIndex(month, start string) int {
	for i, m := range Months(start) {
		if m == month {
			return i
		}
	}
	return -1
}

// EndMonth is the month before start.
func EndMonth(start string) string {
	return Months(start)[11]
}

// ValidYear reports whether y is in [2000, 2100].
func ValidYear(y int) bool {
	return y >= minYear && y <= maxYear
}

// ParseYear parses a fiscal year in [2000, 2100].
func ParseYear(s string) (int, bool) {
	y, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || !ValidYear(y) {
		return 0, false
	}
	return y, true
}

// CalendarToFiscal returns the fiscal year and month key containing t.
func CalendarToFiscal(t time.Time, start string) (int, string) {
	s := calendarIndex(Months(start)[0])
	m := int(t.Month()) - 1
	fy := t.Year()
	if s > 0 && m >= s {
		fy++
	}
	return fy, CalendarMonths[m]
}

// FiscalToCalendar returns the first day of month within fiscal year fy.
func FiscalToCalendar(fy int, month, start string) time.Time {
	s := calendarIndex(Months(start)[0])
	m := calendarIndex(month)
	if m < 0 {
		m = s
	}
	year := fy
	if s > 0 && m >= s {
		year--
	}
	return time.Date(year, time.Month(m+1), 1, 0, 0, 0, 0, time.UTC)
}

// Current returns the fiscal year and month for now.
func Current(start string) (int, string) {
	return CalendarToFiscal(time.Now(), start)
}
