package formula

import "fjacquet/pnl-forecast/internal/models"

// Selector picks the periods a value is computed over: either every month of
// a year (or of all years) or a single month.
type Selector struct {
	monthIndex int
	year       int
}

// Total selects every month of year; models.AllYears selects everything.
func Total(year int) Selector {
	return Selector{monthIndex: -1, year: year}
}

// Month selects one month; monthIndex is 0 for January.
func Month(monthIndex, year int) Selector {
	return Selector{monthIndex: monthIndex, year: year}
}

// IsTotal reports whether the selector spans more than one month.
func (s Selector) IsTotal() bool { return s.monthIndex < 0 }

// Year returns the year filter.
func (s Selector) Year() int { return s.year }

// MonthIndex returns the month index, or -1 for a total.
func (s Selector) MonthIndex() int { return s.monthIndex }

// Matches reports whether v falls inside the selected periods.
func (s Selector) Matches(v models.FinancialValue) bool {
	if s.IsTotal() {
		return s.year == models.AllYears || v.Year == s.year
	}
	return v.Year == s.year && v.Month == s.monthIndex+1
}
