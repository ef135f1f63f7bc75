package catalogs

import (
	"strings"

	"github.com/ashkam58/mathflix/pkg/errors"
)

// Category is a catalog shelf.
type Category string

// Categories.
const (
	CategoryMath      Category = "Math"
	CategoryCoding    Category = "Coding"
	CategoryPython    Category = "Python"
	CategoryWebDev    Category = "Web Development"
	CategoryRubiks    Category = "Rubiks Cube"
	CategoryScratch   Category = "Scratch Game"
	CategoryLogic     Category = "Logic & Puzzle"
	CategoryScience   Category = "Science"
	CategoryPhysics   Category = "Physics"
	CategoryChemistry Category = "Chemistry"
	CategoryBiology   Category = "Biology"
	CategoryHistory   Category = "History"
	CategoryDSA       Category = "DSA Coding"
	CategoryFeatured  Category = "Featured"
)

// Categories returns every known category in display order.
func Categories() []Category {
	return []Category{
		CategoryMath,
		CategoryCoding,
		CategoryPython,
		CategoryWebDev,
		CategoryRubiks,
		CategoryScratch,
		CategoryLogic,
		CategoryScience,
		CategoryPhysics,
		CategoryChemistry,
		CategoryBiology,
		CategoryHistory,
		CategoryDSA,
		CategoryFeatured,
	}
}

// String returns the string representation.
func (c Category) String() string {
	return string(c)
}

// IsKnown reports whether c is one of Categories.
func (c Category) IsKnown() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory matches s against the known categories, ignoring case.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range Categories() {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", errors.NewValidationError("category", s, "unknown category")
}
