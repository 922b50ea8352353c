package models

import (
	"errors"
	"fmt"
)

// CategoryBuilder provides a fluent API for constructing categories with
// their subcategories and rows. Rows are created dense over the horizon.
type CategoryBuilder struct {
	cat Category
	err error
}

// NewCategoryBuilder starts a leaf category.
func NewCategoryBuilder(id, name string, categoryType CategoryType) *CategoryBuilder {
	return &CategoryBuilder{
		cat: Category{
			ID:         id,
			Name:       name,
			Type:       categoryType,
			IsExpanded: true,
		},
	}
}

// WithOrder sets the display order
func (b *CategoryBuilder) WithOrder(order int) *CategoryBuilder {
	if b.err != nil {
		return b
	}
	b.cat.Order = order
	return b
}

// WithFormula marks the category as calculated
func (b *CategoryBuilder) WithFormula(formula string) *CategoryBuilder {
	if b.err != nil {
		return b
	}
	if formula == "" {
		b.err = errors.New("formula cannot be empty")
		return b
	}
	b.cat.IsCalculated = true
	b.cat.Formula = formula
	return b
}

// WithSubcategory appends an empty subcategory
func (b *CategoryBuilder) WithSubcategory(id, name string) *CategoryBuilder {
	if b.err != nil {
		return b
	}
	if b.subcategory(id) != nil {
		b.err = fmt.Errorf("duplicate subcategory '%s'", id)
		return b
	}
	b.cat.Subcategories = append(b.cat.Subcategories, Subcategory{
		ID:    id,
		Name:  name,
		Order: len(b.cat.Subcategories) + 1,
	})
	return b
}

// WithRow appends a dense row to an existing subcategory
func (b *CategoryBuilder) WithRow(subcategoryID, rowID, name string) *CategoryBuilder {
	if b.err != nil {
		return b
	}
	sub := b.subcategory(subcategoryID)
	if sub == nil {
		b.err = fmt.Errorf("unknown subcategory '%s'", subcategoryID)
		return b
	}
	sub.Rows = append(sub.Rows, NewRow(rowID, name, b.cat.Type, b.cat.ID, subcategoryID, len(sub.Rows)+1))
	return b
}

// WithValue sets a row's value for one month and marks it as actual data
func (b *CategoryBuilder) WithValue(rowID string, year, month int, value float64) *CategoryBuilder {
	if b.err != nil {
		return b
	}
	row := b.row(rowID)
	if row == nil {
		b.err = fmt.Errorf("unknown row '%s'", rowID)
		return b
	}
	i := row.IndexOf(year, month)
	if i < 0 {
		b.err = fmt.Errorf("month %d-%02d outside the horizon", year, month)
		return b
	}
	row.Values[i].Value = value
	row.Values[i].IsProjected = false
	return b
}

// Build returns the category or the first error recorded while building
func (b *CategoryBuilder) Build() (Category, error) {
	if b.err != nil {
		return Category{}, fmt.Errorf("builder error: %w", b.err)
	}
	if b.cat.ID == "" {
		return Category{}, errors.New("category id is required")
	}
	return b.cat.Clone(), nil
}

// MustBuild is Build for fixtures known to be valid.
func (b *CategoryBuilder) MustBuild() Category {
	c, err := b.Build()
	if err != nil {
		panic(err)
	}
	return c
}

func (b *CategoryBuilder) subcategory(id string) *Subcategory {
	for i := range b.cat.Subcategories {
		if b.cat.Subcategories[i].ID == id {
			return &b.cat.Subcategories[i]
		}
	}
	return nil
}

func (b *CategoryBuilder) row(id string) *FinancialRow {
	for si := range b.cat.Subcategories {
		sub := &b.cat.Subcategories[si]
		for ri := range sub.Rows {
			if sub.Rows[ri].ID == id {
				return &sub.Rows[ri]
			}
		}
	}
	return nil
}
