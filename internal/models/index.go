package models

// Index gives constant-time lookups over one FinancialData snapshot. It holds
// pointers into the snapshot, so it must be rebuilt after the tree changes.
//
// When several categories share a type, the first one in traversal order is
// the one returned by CategoryByType; the others are listed by DuplicateTypes.
type Index struct {
	categoriesByID    map[string]*Category
	categoriesByType  map[CategoryType]*Category
	subcategoriesByID map[string]*Subcategory
	rowsByID          map[string]*FinancialRow
	duplicateTypes    []CategoryType
}

// NewIndex indexes data. The tree is not copied.
func NewIndex(data *FinancialData) *Index {
	ix := &Index{
		categoriesByID:    make(map[string]*Category),
		categoriesByType:  make(map[CategoryType]*Category),
		subcategoriesByID: make(map[string]*Subcategory),
		rowsByID:          make(map[string]*FinancialRow),
	}
	if data == nil {
		return ix
	}

	for ci := range data.Categories {
		cat := &data.Categories[ci]
		if _, ok := ix.categoriesByID[cat.ID]; !ok {
			ix.categoriesByID[cat.ID] = cat
		}
		if _, ok := ix.categoriesByType[cat.Type]; ok {
			ix.duplicateTypes = append(ix.duplicateTypes, cat.Type)
		} else {
			ix.categoriesByType[cat.Type] = cat
		}
		for si := range cat.Subcategories {
			sub := &cat.Subcategories[si]
			if _, ok := ix.subcategoriesByID[sub.ID]; !ok {
				ix.subcategoriesByID[sub.ID] = sub
			}
			for ri := range sub.Rows {
				row := &sub.Rows[ri]
				if _, ok := ix.rowsByID[row.ID]; !ok {
					ix.rowsByID[row.ID] = row
				}
			}
		}
	}
	return ix
}

// Category looks a category up by id.
func (ix *Index) Category(id string) (*Category, bool) {
	c, ok := ix.categoriesByID[id]
	return c, ok
}

// CategoryByType returns the first category of the given type.
func (ix *Index) CategoryByType(t CategoryType) (*Category, bool) {
	c, ok := ix.categoriesByType[t]
	return c, ok
}

// Resolve finds the category a formula token names: by type first, then by id.
func (ix *Index) Resolve(token string) (*Category, bool) {
	if c, ok := ix.categoriesByType[CategoryType(token)]; ok {
		return c, true
	}
	return ix.Category(token)
}

// Subcategory looks a subcategory up by id.
func (ix *Index) Subcategory(id string) (*Subcategory, bool) {
	s, ok := ix.subcategoriesByID[id]
	return s, ok
}

// Row looks a row up by id.
func (ix *Index) Row(id string) (*FinancialRow, bool) {
	r, ok := ix.rowsByID[id]
	return r, ok
}

// DuplicateTypes lists category types seen more than once, once per extra
// occurrence.
func (ix *Index) DuplicateTypes() []CategoryType {
	return append([]CategoryType(nil), ix.duplicateTypes...)
}
