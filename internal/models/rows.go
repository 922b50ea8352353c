package models

import (
	"sort"

	"fjacquet/pnl-forecast/internal/dateutils"
)

// Horizon lists every month of the forecast horizon in order.
func Horizon() []dateutils.YearMonth {
	return dateutils.MonthsBetween(
		dateutils.YearMonth{Year: HorizonStartYear, Month: 1},
		dateutils.YearMonth{Year: HorizonEndYear, Month: 12},
	)
}

// EmptyValue is the default entry for a month with no data.
func EmptyValue(year, month int) FinancialValue {
	return FinancialValue{
		Value:       0,
		Year:        year,
		Month:       month,
		Date:        dateutils.YearMonth{Year: year, Month: month}.ISODate(),
		IsProjected: true,
	}
}

// NewRow creates a row holding one default value per horizon month.
func NewRow(id, name string, categoryType CategoryType, categoryID, subcategoryID string, order int) FinancialRow {
	months := Horizon()
	values := make([]FinancialValue, 0, len(months))
	for _, ym := range months {
		values = append(values, EmptyValue(ym.Year, ym.Month))
	}
	return FinancialRow{
		ID:            id,
		Name:          name,
		Type:          categoryType,
		CategoryID:    categoryID,
		SubcategoryID: subcategoryID,
		Order:         order,
		Values:        values,
	}
}

// IndexOf returns the position of the (year, month) value, or -1.
func (r *FinancialRow) IndexOf(year, month int) int {
	for i := range r.Values {
		if r.Values[i].Year == year && r.Values[i].Month == month {
			return i
		}
	}
	return -1
}

// ValueAt returns the value stored for (year, month).
func (r *FinancialRow) ValueAt(year, month int) (FinancialValue, bool) {
	if i := r.IndexOf(year, month); i >= 0 {
		return r.Values[i], true
	}
	return FinancialValue{}, false
}

// EnsureHorizon densifies a row: every horizon month gets a value, using the
// stored one when present and the default otherwise. Values outside the
// horizon are kept after the horizon, in chronological order. When a month is
// stored twice the first occurrence wins.
func EnsureHorizon(row *FinancialRow) {
	stored := make(map[dateutils.YearMonth]FinancialValue, len(row.Values))
	for _, v := range row.Values {
		key := dateutils.YearMonth{Year: v.Year, Month: v.Month}
		if _, dup := stored[key]; !dup {
			if v.Date == "" {
				v.Date = key.ISODate()
			}
			stored[key] = v
		}
	}

	months := Horizon()
	values := make([]FinancialValue, 0, len(months))
	for _, ym := range months {
		if v, ok := stored[ym]; ok {
			values = append(values, v)
			delete(stored, ym)
			continue
		}
		values = append(values, EmptyValue(ym.Year, ym.Month))
	}

	extra := make([]FinancialValue, 0, len(stored))
	for _, v := range stored {
		extra = append(extra, v)
	}
	sort.Slice(extra, func(i, j int) bool {
		return dateutils.YearMonth{Year: extra[i].Year, Month: extra[i].Month}.
			Before(dateutils.YearMonth{Year: extra[j].Year, Month: extra[j].Month})
	})
	row.Values = append(values, extra...)
}

// EnsureHorizon densifies every row of the tree.
func (d *FinancialData) EnsureHorizon() {
	d.EachRow(func(_ *Category, _ *Subcategory, row *FinancialRow) {
		EnsureHorizon(row)
	})
}

// Compact returns a copy of the tree keeping only non-zero values, which is
// what the persistence layer stores.
func (d FinancialData) Compact() FinancialData {
	out := d.Clone()
	out.EachRow(func(_ *Category, _ *Subcategory, row *FinancialRow) {
		kept := row.Values[:0]
		for _, v := range row.Values {
			if v.Value != 0 {
				kept = append(kept, v)
			}
		}
		row.Values = kept
	})
	return out
}

// EachRow walks the tree in order, passing pointers into d.
func (d *FinancialData) EachRow(fn func(cat *Category, sub *Subcategory, row *FinancialRow)) {
	for ci := range d.Categories {
		cat := &d.Categories[ci]
		for si := range cat.Subcategories {
			sub := &cat.Subcategories[si]
			for ri := range sub.Rows {
				fn(cat, sub, &sub.Rows[ri])
			}
		}
	}
}

// Clone returns a deep copy; no row or value slice is shared with d.
// Nil slices stay nil.
func (d FinancialData) Clone() FinancialData {
	out := d
	if d.Categories != nil {
		out.Categories = make([]Category, len(d.Categories))
		for ci, cat := range d.Categories {
			out.Categories[ci] = cat.Clone()
		}
	}
	out.ForecastPeriods = cloneSlice(d.ForecastPeriods)
	out.BalanceSheet.Accounts = cloneSlice(d.BalanceSheet.Accounts)
	return out
}

// Clone returns a deep copy of the category.
func (c Category) Clone() Category {
	out := c
	if c.Subcategories == nil {
		return out
	}
	out.Subcategories = make([]Subcategory, len(c.Subcategories))
	for si, sub := range c.Subcategories {
		cs := sub
		if sub.Rows != nil {
			cs.Rows = make([]FinancialRow, len(sub.Rows))
			for ri, row := range sub.Rows {
				cs.Rows[ri] = row.Clone()
			}
		}
		out.Subcategories[si] = cs
	}
	return out
}

// Clone returns a deep copy of the row.
func (r FinancialRow) Clone() FinancialRow {
	out := r
	out.Values = cloneSlice(r.Values)
	return out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

// Clone returns a deep copy of the plan.
func (p Plan) Clone() Plan {
	out := p
	out.Data = p.Data.Clone()
	out.Forecasts = cloneSlice(p.Forecasts)
	for i := range out.Forecasts {
		out.Forecasts[i].AccountIDs = cloneSlice(out.Forecasts[i].AccountIDs)
	}
	out.Scenarios = cloneSlice(p.Scenarios)
	for i := range out.Scenarios {
		out.Scenarios[i].AccountIDs = cloneSlice(out.Scenarios[i].AccountIDs)
	}
	return out
}
