package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tree-inventory-backend/db/models"
)

func findError(errs models.FieldErrorList, code string) *models.FieldError {
	for i := range errs {
		if errs[i].Code == code {
			return &errs[i]
		}
	}
	return nil
}

func TestValidateTreeFieldsCleanRow(t *testing.T) {
	data := map[string]string{
		models.FieldPointX:        "-73.95",
		models.FieldPointY:        "40.78",
		models.FieldDiameter:      "12.5",
		models.FieldTreeCondition: "Good",
		models.FieldDatePlanted:   "2015-04-01",
		models.FieldTreePresent:   "true",
	}

	errs := ValidateTreeFields(data, testTreeEvent(), testRegion(), DefaultChoiceCatalog())
	assert.Empty(t, errs)
}

func TestValidateTreeFieldsMissingPoints(t *testing.T) {
	errs := ValidateTreeFields(map[string]string{
		models.FieldPointX: "-73.95",
	}, testTreeEvent(), testRegion(), DefaultChoiceCatalog())

	fe := findError(errs, models.ErrMissingPoints)
	require.NotNil(t, fe)
	assert.True(t, fe.Fatal)
}

func TestValidateTreeFieldsInvalidGeom(t *testing.T) {
	errs := ValidateTreeFields(map[string]string{
		models.FieldPointX: "not-a-number",
		models.FieldPointY: "40.78",
	}, testTreeEvent(), testRegion(), DefaultChoiceCatalog())

	require.NotNil(t, findError(errs, models.ErrInvalidGeom))
}

func TestValidateTreeFieldsGeomOutOfBounds(t *testing.T) {
	region := testRegion()
	region.MaxX = decimal.NewFromInt(0)

	errs := ValidateTreeFields(map[string]string{
		models.FieldPointX: "10",
		models.FieldPointY: "40",
	}, testTreeEvent(), region, DefaultChoiceCatalog())

	fe := findError(errs, models.ErrGeomOutOfBounds)
	require.NotNil(t, fe)
	assert.True(t, fe.Fatal)
}

func TestValidateTreeFieldsNumericRange(t *testing.T) {
	errs := ValidateTreeFields(map[string]string{
		models.FieldPointX:   "-73.95",
		models.FieldPointY:   "40.78",
		models.FieldDiameter: "750",
	}, testTreeEvent(), testRegion(), DefaultChoiceCatalog())

	require.NotNil(t, findError(errs, models.ErrFloatRange))
}

func TestValidateTreeFieldsFactorConversion(t *testing.T) {
	event := testTreeEvent()
	// Centimeters to inches: 130 cm converts under the 500 in ceiling.
	event.DiameterFactor = decimal.RequireFromString("0.3937")

	errs := ValidateTreeFields(map[string]string{
		models.FieldPointX:   "-73.95",
		models.FieldPointY:   "40.78",
		models.FieldDiameter: "130",
	}, event, testRegion(), DefaultChoiceCatalog())
	assert.Nil(t, findError(errs, models.ErrFloatRange))

	// The same cell without conversion would also pass, so check the
	// factor can push a value out of range too.
	event.DiameterFactor = decimal.NewFromInt(100)
	errs = ValidateTreeFields(map[string]string{
		models.FieldPointX:   "-73.95",
		models.FieldPointY:   "40.78",
		models.FieldDiameter: "130",
	}, event, testRegion(), DefaultChoiceCatalog())
	require.NotNil(t, findError(errs, models.ErrFloatRange))
}

func TestValidateTreeFieldsInvalidFloat(t *testing.T) {
	errs := ValidateTreeFields(map[string]string{
		models.FieldPointX:   "-73.95",
		models.FieldPointY:   "40.78",
		models.FieldDiameter: "wide",
	}, testTreeEvent(), testRegion(), DefaultChoiceCatalog())

	require.NotNil(t, findError(errs, models.ErrInvalidFloat))
}

func TestValidateTreeFieldsChoiceAndBoolAndDate(t *testing.T) {
	errs := ValidateTreeFields(map[string]string{
		models.FieldPointX:        "-73.95",
		models.FieldPointY:        "40.78",
		models.FieldTreeCondition: "Thriving",
		models.FieldReadOnly:      "perhaps",
		models.FieldDatePlanted:   "April 2015",
	}, testTreeEvent(), testRegion(), DefaultChoiceCatalog())

	assert.NotNil(t, findError(errs, models.ErrInvalidChoice))
	assert.NotNil(t, findError(errs, models.ErrInvalidBool))
	assert.NotNil(t, findError(errs, models.ErrInvalidDate))
}

func TestValidateTreeFieldsChoiceIsCaseInsensitive(t *testing.T) {
	errs := ValidateTreeFields(map[string]string{
		models.FieldPointX:        "-73.95",
		models.FieldPointY:        "40.78",
		models.FieldTreeCondition: "gOOd",
	}, testTreeEvent(), testRegion(), DefaultChoiceCatalog())

	assert.Nil(t, findError(errs, models.ErrInvalidChoice))
}

func TestValidateTreeFieldsTreeConsistency(t *testing.T) {
	errs := ValidateTreeFields(map[string]string{
		models.FieldPointX:      "-73.95",
		models.FieldPointY:      "40.78",
		models.FieldTreePresent: "false",
		models.FieldDiameter:    "12",
	}, testTreeEvent(), testRegion(), DefaultChoiceCatalog())

	fe := findError(errs, models.ErrExclTreeFields)
	require.NotNil(t, fe)
	assert.Contains(t, fe.Fields, models.FieldDiameter)
}

func TestHasTreeData(t *testing.T) {
	assert.True(t, HasTreeData(map[string]string{models.FieldTreePresent: "yes"}))
	assert.False(t, HasTreeData(map[string]string{models.FieldTreePresent: "no", models.FieldDiameter: "12"}))
	assert.True(t, HasTreeData(map[string]string{models.FieldDiameter: "12"}))
	assert.False(t, HasTreeData(map[string]string{models.FieldAddress: "12 Elm St"}))
}

func TestParseBoolField(t *testing.T) {
	for _, raw := range []string{"true", "Yes", " 1 ", "y"} {
		v, ok := ParseBoolField(raw)
		assert.True(t, ok, raw)
		assert.True(t, v, raw)
	}
	for _, raw := range []string{"false", "No", "0", "N"} {
		v, ok := ParseBoolField(raw)
		assert.True(t, ok, raw)
		assert.False(t, v, raw)
	}
	_, ok := ParseBoolField("affirmative")
	assert.False(t, ok)
}

func TestValidateSpeciesFields(t *testing.T) {
	errs := ValidateSpeciesFields(map[string]string{
		models.FieldGenus:      "Acer",
		models.FieldCommonName: "Red Maple",
	}, testSpeciesEvent(), DefaultChoiceCatalog())
	assert.Empty(t, errs)

	errs = ValidateSpeciesFields(map[string]string{
		models.FieldGenus: "Acer",
	}, testSpeciesEvent(), DefaultChoiceCatalog())
	fe := findError(errs, models.ErrMissingField)
	require.NotNil(t, fe)
	assert.True(t, fe.Fatal)
	assert.Equal(t, []string{models.FieldCommonName}, fe.Fields)

	errs = ValidateSpeciesFields(map[string]string{
		models.FieldGenus:       "Acer",
		models.FieldCommonName:  "Red Maple",
		models.FieldMaxDiameter: "0",
	}, testSpeciesEvent(), DefaultChoiceCatalog())
	require.NotNil(t, findError(errs, models.ErrFloatRange))
}

func TestSpeciesRowDiff(t *testing.T) {
	existing := makeSpecies("Acer", "rubrum", "Red Maple")
	existing.Family = "Sapindaceae"

	diff := SpeciesRowDiff(map[string]string{
		models.FieldCommonName: "Red Maple",
		models.FieldFamily:     "Aceraceae",
	}, &existing)

	assert.Equal(t, map[string][2]string{
		models.FieldFamily: {"Aceraceae", "Sapindaceae"},
	}, diff)

	// Empty imported cells never count as differences.
	diff = SpeciesRowDiff(map[string]string{models.FieldFamily: ""}, &existing)
	assert.Empty(t, diff)
}
