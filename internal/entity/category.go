package entity

import "strings"

// Category is a product category. The set is closed: free-form categories are
// rejected at every boundary that accepts one.
type Category string

const (
	CategoryCereals    Category = "cereals"
	CategoryFruits     Category = "fruits"
	CategoryVegetables Category = "vegetables"
)

var categories = map[Category]struct{}{
	CategoryCereals:    {},
	CategoryFruits:     {},
	CategoryVegetables: {},
}

// ParseCategory normalizes raw input and reports whether it names a known category.
func ParseCategory(raw string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := categories[c]
	return c, ok
}

// Valid reports whether the category belongs to the closed set.
func (c Category) Valid() bool {
	_, ok := categories[c]
	return ok
}

// Categories returns the closed category set in a stable order.
func Categories() []Category {
	return []Category{CategoryCereals, CategoryFruits, CategoryVegetables}
}
