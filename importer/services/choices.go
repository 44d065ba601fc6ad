package services

import "tree-inventory-backend/db/models"

// ChoiceCatalog maps a column name to the set of values it accepts.
// Matching is case-insensitive. Built once at startup and injected into
// the validators.
type ChoiceCatalog map[string][]string

// DefaultChoiceCatalog returns the stock enumerations for both import
// kinds.
func DefaultChoiceCatalog() ChoiceCatalog {
	return ChoiceCatalog{
		models.FieldPlotType: {
			"Well/Pit", "Median/Island", "Tree Lawn", "Park", "Planter",
			"Yard", "Natural Area", "Open/Unrestricted Area", "Other",
		},
		models.FieldSidewalk: {
			"Minor or No Damage", "Raised More Than 3/4 Inch",
		},
		models.FieldPowerlineConflict: {
			"Yes", "No", "Unknown",
		},
		models.FieldTreeCondition: {
			"Dead", "Critical", "Poor", "Fair", "Good", "Very Good",
			"Excellent",
		},
		models.FieldCanopyCondition: {
			"Full - No Gaps", "Small Gaps (up to 25% missing)",
			"Moderate Gaps (up to 50% missing)",
			"Large Gaps (up to 75% missing)",
			"Little or None (up to 100% missing)",
		},
		models.FieldNativeStatus: {
			"Native", "Introduced", "Invasive", "Unknown",
		},
	}
}

// Allowed reports whether value is an accepted choice for field, ignoring
// case. Fields without an enumeration accept anything.
func (c ChoiceCatalog) Allowed(field, value string) bool {
	choices, ok := c[field]
	if !ok {
		return true
	}
	for _, choice := range choices {
		if equalFold(choice, value) {
			return true
		}
	}
	return false
}

// Canonical returns the catalog's casing for value, or value unchanged
// when the field has no enumeration.
func (c ChoiceCatalog) Canonical(field, value string) string {
	for _, choice := range c[field] {
		if equalFold(choice, value) {
			return choice
		}
	}
	return value
}
