// Package dateutils provides the date and month-window operations used by the
// projection engine, the overlap detector and the persistence layer.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Date layouts accepted for plan dates.
const (
	DateLayoutISO      = "2006-01-02"
	DateLayoutFull     = "2006-01-02 15:04:05"
	DateLayoutISOMilli = "2006-01-02T15:04:05.000Z07:00"
	DateLayoutMonth    = "2006-01"
)

// ISOFormats is the list of layouts tried, in order, when parsing a plan date.
var ISOFormats = []string{
	DateLayoutISO,
	time.RFC3339,
	DateLayoutISOMilli,
	time.RFC3339Nano,
	DateLayoutFull,
	DateLayoutMonth,
}

var spaces = regexp.MustCompile(`\s+`)

// YearMonth identifies one calendar month.
type YearMonth struct {
	Year  int
	Month int
}

// String renders the month as YYYY-MM.
func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month)
}

// Prev returns the calendar month before ym.
func (ym YearMonth) Prev() YearMonth {
	if ym.Month == 1 {
		return YearMonth{Year: ym.Year - 1, Month: 12}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month - 1}
}

// Next returns the calendar month after ym.
func (ym YearMonth) Next() YearMonth {
	if ym.Month == 12 {
		return YearMonth{Year: ym.Year + 1, Month: 1}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month + 1}
}

// Before reports whether ym is strictly earlier than other.
func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

// FirstDay returns midnight UTC on the first day of the month.
func (ym YearMonth) FirstDay() time.Time {
	return time.Date(ym.Year, time.Month(ym.Month), 1, 0, 0, 0, 0, time.UTC)
}

// ISODate returns the first day of the month as YYYY-MM-DD.
func (ym YearMonth) ISODate() string {
	return ToISODate(ym.FirstDay())
}

// Of returns the calendar month containing t.
func Of(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: int(t.Month())}
}

// CleanDateString removes unwanted characters and normalizes a date string
func CleanDateString(dateStr string) string {
	return spaces.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}

// ParseISODate parses a plan date. A bare date, a month, or a full timestamp
// are accepted; the result is normalized to midnight UTC of that day.
func ParseISODate(dateStr string) (time.Time, error) {
	clean := CleanDateString(dateStr)
	if clean == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, format := range ISOFormats {
		if t, err := time.Parse(format, clean); err == nil {
			return Day(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}

// ToISODate formats a time.Time value as an ISO date (YYYY-MM-DD)
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}

// MonthWindow converts two ISO dates into the inclusive list of calendar months
// they span. Days are ignored. An end before the start yields an empty window.
func MonthWindow(startDate, endDate string) ([]YearMonth, error) {
	start, err := ParseISODate(startDate)
	if err != nil {
		return nil, fmt.Errorf("start date: %w", err)
	}
	end, err := ParseISODate(endDate)
	if err != nil {
		return nil, fmt.Errorf("end date: %w", err)
	}
	return MonthsBetween(Of(start), Of(end)), nil
}

// MonthsBetween lists every month from first to last, both included.
func MonthsBetween(first, last YearMonth) []YearMonth {
	var months []YearMonth
	for ym := first; !last.Before(ym); ym = ym.Next() {
		months = append(months, ym)
	}
	return months
}

// CompareDays orders two instants by calendar day, ignoring the time of day:
// -1 when a falls on an earlier day than b, 1 when later, 0 on the same day.
func CompareDays(a, b time.Time) int {
	da, db := Day(a), Day(b)
	switch {
	case da.Before(db):
		return -1
	case da.After(db):
		return 1
	}
	return 0
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
