// Package overlap detects projection records that target the same rows over
// intersecting date ranges. It only reports conflicts; it never blocks an
// application.
package overlap

import (
	"fmt"
	"time"

	"fjacquet/pnl-forecast/internal/dateutils"
	"fjacquet/pnl-forecast/internal/models"
	"fjacquet/pnl-forecast/internal/planerror"
)

// Item is a projection record that can be checked for overlaps.
type Item interface {
	ItemID() string
	IsActive() bool
	Accounts() []string
	Period() (start, end string)
}

// DateRange is a closed interval of days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDateRange parses two ISO dates into a range.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := dateutils.ParseISODate(start)
	if err != nil {
		return DateRange{}, &planerror.InvalidInputError{Field: "startDate", Value: start, Err: planerror.ErrInvalidDate}
	}
	e, err := dateutils.ParseISODate(end)
	if err != nil {
		return DateRange{}, &planerror.InvalidInputError{Field: "endDate", Value: end, Err: planerror.ErrInvalidDate}
	}
	return DateRange{Start: s, End: e}, nil
}

// String returns the date range in the format "YYYY-MM-DD_YYYY-MM-DD"
func (dr DateRange) String() string {
	return fmt.Sprintf("%s_%s", dateutils.ToISODate(dr.Start), dateutils.ToISODate(dr.End))
}

// Overlaps reports whether the two closed intervals share at least one day.
func (dr DateRange) Overlaps(other DateRange) bool {
	return dateutils.CompareDays(dr.Start, other.End) <= 0 && dateutils.CompareDays(dr.End, other.Start) >= 0
}

// Result lists the conflicting items and the accounts they share with the
// query, in query order and without duplicates.
type Result[T Item] struct {
	HasOverlap            bool
	OverlappingItems      []T
	OverlappingAccountIDs []string
}

// Check returns the active items, other than excludeID, that share an account
// with accountIDs and whose period intersects [start, end]. Items whose dates
// cannot be parsed are skipped; an unparsable query is an error.
func Check[T Item](items []T, accountIDs []string, start, end, excludeID string) (Result[T], error) {
	query, err := ParseDateRange(start, end)
	if err != nil {
		return Result[T]{}, err
	}

	var res Result[T]
	shared := make(map[string]bool)
	for _, item := range items {
		if excludeID != "" && item.ItemID() == excludeID {
			continue
		}
		if !item.IsActive() {
			continue
		}
		common := intersect(accountIDs, item.Accounts())
		if len(common) == 0 {
			continue
		}
		itemRange, err := ParseDateRange(item.Period())
		if err != nil {
			continue
		}
		if !query.Overlaps(itemRange) {
			continue
		}
		res.OverlappingItems = append(res.OverlappingItems, item)
		for _, id := range common {
			shared[id] = true
		}
	}

	for _, id := range accountIDs {
		if shared[id] {
			res.OverlappingAccountIDs = append(res.OverlappingAccountIDs, id)
			delete(shared, id)
		}
	}
	res.HasOverlap = len(res.OverlappingItems) > 0
	return res, nil
}

// CheckDateOverlap checks a candidate against existing forecast records.
func CheckDateOverlap(records []models.ForecastRecord, accountIDs []string, start, end, excludeID string) (Result[models.ForecastRecord], error) {
	return Check(records, accountIDs, start, end, excludeID)
}

// CheckScenarioOverlap checks a candidate against existing scenarios.
func CheckScenarioOverlap(scenarios []models.ScenarioConfig, accountIDs []string, start, end, excludeID string) (Result[models.ScenarioConfig], error) {
	return Check(scenarios, accountIDs, start, end, excludeID)
}

func intersect(query, accounts []string) []string {
	have := make(map[string]bool, len(accounts))
	for _, a := range accounts {
		have[a] = true
	}
	var out []string
	for _, q := range query {
		if have[q] {
			out = append(out, q)
		}
	}
	return out
}
