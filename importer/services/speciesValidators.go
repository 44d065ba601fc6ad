package services

import (
	"github.com/shopspring/decimal"

	"tree-inventory-backend/db/models"
)

var speciesNumericRanges = []numericRange{
	{models.FieldMaxDiameter, decimal.NewFromInt(1), decimal.NewFromInt(2000)},
	{models.FieldMaxHeight, decimal.NewFromInt(1), decimal.NewFromInt(10000)},
}

var speciesBoolFields = []string{
	models.FieldEdible,
	models.FieldFlowering,
	models.FieldFallColors,
	models.FieldWildlife,
}

var speciesChoiceFields = []string{models.FieldNativeStatus}

// ValidateSpeciesFields runs the validator families for a species catalog
// row. Genus and common name are required; the rest is optional but must
// parse when present.
func ValidateSpeciesFields(
	data map[string]string,
	event *models.ImportEvent,
	catalog ChoiceCatalog,
) models.FieldErrorList {
	errs := models.FieldErrorList{}

	var missing []string
	for _, field := range models.SpeciesRequiredFields {
		if v, ok := data[field]; !ok || v == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		errs = append(errs, models.FieldError{
			Code:   models.ErrMissingField,
			Fields: missing,
			Fatal:  true,
		})
	}

	errs = append(errs, validateNumerics(data, event, speciesNumericRanges)...)
	errs = append(errs, validateBools(data, speciesBoolFields)...)
	errs = append(errs, validateChoices(data, catalog, speciesChoiceFields)...)
	return errs
}

// SpeciesRowDiff compares a species row's mapped fields against an
// existing catalog entry and returns field -> {imported, existing} for
// every difference. An empty diff means the row and the entry agree.
func SpeciesRowDiff(data map[string]string, existing *models.Species) map[string][2]string {
	diff := map[string][2]string{}

	compare := func(field, imported, current string) {
		if imported == "" {
			return
		}
		if !equalFold(imported, current) {
			diff[field] = [2]string{imported, current}
		}
	}

	compare(models.FieldCommonName, data[models.FieldCommonName], existing.CommonName)
	compare(models.FieldUSDASymbol, data[models.FieldUSDASymbol], existing.USDASymbol)
	compare(models.FieldAltSymbol, data[models.FieldAltSymbol], existing.AltSymbol)
	compare(models.FieldITreeCode, data[models.FieldITreeCode], existing.ITreeCode)
	compare(models.FieldFamily, data[models.FieldFamily], existing.Family)
	compare(models.FieldNativeStatus, data[models.FieldNativeStatus], existing.NativeStatus)
	compare(models.FieldFloweringPeriod, data[models.FieldFloweringPeriod], existing.FloweringPeriod)
	compare(models.FieldFruitPeriod, data[models.FieldFruitPeriod], existing.FruitPeriod)
	compare(models.FieldFactSheet, data[models.FieldFactSheet], existing.FactSheet)

	return diff
}
