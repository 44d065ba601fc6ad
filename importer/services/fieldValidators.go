package services

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tree-inventory-backend/config"
	"tree-inventory-backend/db/models"
)

// numericRange is an inclusive domain range checked after the event's unit
// conversion factor has been applied.
type numericRange struct {
	field string
	min   decimal.Decimal
	max   decimal.Decimal
}

var treeNumericRanges = []numericRange{
	{models.FieldDiameter, decimal.Zero, decimal.NewFromInt(500)},
	{models.FieldTreeHeight, decimal.Zero, decimal.NewFromInt(1000)},
	{models.FieldCanopyHeight, decimal.Zero, decimal.NewFromInt(1000)},
	{models.FieldPlotWidth, decimal.Zero, decimal.NewFromInt(500)},
	{models.FieldPlotLength, decimal.Zero, decimal.NewFromInt(500)},
}

var treeBoolFields = []string{models.FieldTreePresent, models.FieldReadOnly}

var treeChoiceFields = []string{
	models.FieldPlotType,
	models.FieldSidewalk,
	models.FieldPowerlineConflict,
	models.FieldTreeCondition,
	models.FieldCanopyCondition,
}

var treeDateFields = []string{models.FieldDatePlanted}

// Fields that describe a tree rather than its plot. Their presence is
// inconsistent with an explicit "tree present" of false.
var treeOnlyFields = []string{
	models.FieldDiameter, models.FieldTreeHeight, models.FieldCanopyHeight,
	models.FieldDatePlanted, models.FieldTreeCondition,
	models.FieldCanopyCondition, models.FieldGenus, models.FieldSpecies,
}

var dateLayouts = []string{"2006-01-02", "2006/01/02", "01/02/2006"}

// ParseBoolField interprets the accepted spellings of a boolean cell.
func ParseBoolField(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "yes", "1", "y":
		return true, true
	case "false", "no", "0", "n":
		return false, true
	}
	return false, false
}

// ParseDateField tries the accepted date layouts in order.
func ParseDateField(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ValidateTreeFields runs every pure validator family over one tree/plot
// row. Bad data never raises; it comes back as FieldError values.
func ValidateTreeFields(
	data map[string]string,
	event *models.ImportEvent,
	region config.Region,
	catalog ChoiceCatalog,
) models.FieldErrorList {
	errs := models.FieldErrorList{}
	errs = append(errs, validateGeom(data, region)...)
	errs = append(errs, validateNumerics(data, event, treeNumericRanges)...)
	errs = append(errs, validateChoices(data, catalog, treeChoiceFields)...)
	errs = append(errs, validateBools(data, treeBoolFields)...)
	errs = append(errs, validateDates(data, treeDateFields)...)
	errs = append(errs, validateTreeConsistency(data)...)
	return errs
}

func validateGeom(data map[string]string, region config.Region) models.FieldErrorList {
	errs := models.FieldErrorList{}

	rawX, hasX := data[models.FieldPointX]
	rawY, hasY := data[models.FieldPointY]
	hasX = hasX && rawX != ""
	hasY = hasY && rawY != ""

	if !hasX || !hasY {
		errs = append(errs, models.FieldError{
			Code:   models.ErrMissingPoints,
			Fields: []string{models.FieldPointX, models.FieldPointY},
			Fatal:  true,
		})
		return errs
	}

	x, errX := decimal.NewFromString(rawX)
	y, errY := decimal.NewFromString(rawY)
	if errX != nil || errY != nil {
		errs = append(errs, models.FieldError{
			Code:   models.ErrInvalidGeom,
			Fields: []string{models.FieldPointX, models.FieldPointY},
			Data:   map[string]string{"x": rawX, "y": rawY},
			Fatal:  true,
		})
		return errs
	}

	if !region.Contains(x, y) {
		errs = append(errs, models.FieldError{
			Code:   models.ErrGeomOutOfBounds,
			Fields: []string{models.FieldPointX, models.FieldPointY},
			Data:   map[string]string{"x": rawX, "y": rawY},
			Fatal:  true,
		})
	}
	return errs
}

func validateNumerics(
	data map[string]string,
	event *models.ImportEvent,
	ranges []numericRange,
) models.FieldErrorList {
	errs := models.FieldErrorList{}
	for _, nr := range ranges {
		raw, ok := data[nr.field]
		if !ok || raw == "" {
			continue
		}

		value, err := decimal.NewFromString(raw)
		if err != nil {
			errs = append(errs, models.FieldError{
				Code:   models.ErrInvalidFloat,
				Fields: []string{nr.field},
				Data:   raw,
				Fatal:  true,
			})
			continue
		}

		value = value.Mul(event.Factor(nr.field))
		if value.LessThan(nr.min) || value.GreaterThan(nr.max) {
			errs = append(errs, models.FieldError{
				Code:   models.ErrFloatRange,
				Fields: []string{nr.field},
				Data: map[string]string{
					"value": value.String(),
					"min":   nr.min.String(),
					"max":   nr.max.String(),
				},
				Fatal: true,
			})
		}
	}
	return errs
}

func validateChoices(data map[string]string, catalog ChoiceCatalog, fields []string) models.FieldErrorList {
	errs := models.FieldErrorList{}
	for _, field := range fields {
		raw, ok := data[field]
		if !ok || raw == "" {
			continue
		}
		if !catalog.Allowed(field, raw) {
			errs = append(errs, models.FieldError{
				Code:   models.ErrInvalidChoice,
				Fields: []string{field},
				Data:   raw,
				Fatal:  true,
			})
		}
	}
	return errs
}

func validateBools(data map[string]string, fields []string) models.FieldErrorList {
	errs := models.FieldErrorList{}
	for _, field := range fields {
		raw, ok := data[field]
		if !ok || raw == "" {
			continue
		}
		if _, parsed := ParseBoolField(raw); !parsed {
			errs = append(errs, models.FieldError{
				Code:   models.ErrInvalidBool,
				Fields: []string{field},
				Data:   raw,
				Fatal:  true,
			})
		}
	}
	return errs
}

func validateDates(data map[string]string, fields []string) models.FieldErrorList {
	errs := models.FieldErrorList{}
	for _, field := range fields {
		raw, ok := data[field]
		if !ok || raw == "" {
			continue
		}
		if _, parsed := ParseDateField(raw); !parsed {
			errs = append(errs, models.FieldError{
				Code:   models.ErrInvalidDate,
				Fields: []string{field},
				Data:   raw,
				Fatal:  true,
			})
		}
	}
	return errs
}

// validateTreeConsistency flags rows that declare "tree present" false
// while still carrying tree-specific data.
func validateTreeConsistency(data map[string]string) models.FieldErrorList {
	raw, ok := data[models.FieldTreePresent]
	if !ok || raw == "" {
		return models.FieldErrorList{}
	}
	present, parsed := ParseBoolField(raw)
	if !parsed || present {
		return models.FieldErrorList{}
	}

	var conflicting []string
	for _, field := range treeOnlyFields {
		if v, ok := data[field]; ok && v != "" {
			conflicting = append(conflicting, field)
		}
	}
	if len(conflicting) == 0 {
		return models.FieldErrorList{}
	}
	return models.FieldErrorList{{
		Code:   models.ErrExclTreeFields,
		Fields: conflicting,
		Fatal:  true,
	}}
}

// HasTreeData reports whether the row describes a tree at all: either an
// explicit "tree present" true or any tree-specific field filled in.
func HasTreeData(data map[string]string) bool {
	if raw, ok := data[models.FieldTreePresent]; ok {
		if present, parsed := ParseBoolField(raw); parsed {
			return present
		}
	}
	for _, field := range treeOnlyFields {
		if v, ok := data[field]; ok && v != "" {
			return true
		}
	}
	return false
}
