package models

import "strings"

// Category labels a document's content domain. The set is closed: whatever a
// classifier produces, the stored value is always one of these labels.
type Category string

const (
	CategoryMedical   Category = "Medical"
	CategoryInsurance Category = "Insurance"
	CategoryFinance   Category = "Finance"
	CategoryUtility   Category = "Utility"
	CategoryLegal     Category = "Legal"
	CategoryHotel     Category = "Hotel"
	CategoryRetail    Category = "Retail"
	CategoryOthers    Category = "Others"
)

// Categories lists every valid label in classification-prompt order.
var Categories = []Category{
	CategoryMedical,
	CategoryInsurance,
	CategoryFinance,
	CategoryUtility,
	CategoryLegal,
	CategoryHotel,
	CategoryRetail,
	CategoryOthers,
}

// ParseCategory maps raw model output onto the closed set. The reply is
// trimmed and cut at the first period before matching case-insensitively;
// empty or unrecognized output resolves to CategoryOthers.
func ParseCategory(raw string) Category {
	cleaned := strings.TrimSpace(raw)
	if idx := strings.Index(cleaned, "."); idx >= 0 {
		cleaned = cleaned[:idx]
	}
	cleaned = strings.TrimSpace(cleaned)

	for _, c := range Categories {
		if strings.EqualFold(cleaned, string(c)) {
			return c
		}
	}
	return CategoryOthers
}

// Valid reports whether c is a member of the closed set.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
