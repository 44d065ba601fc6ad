package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tree-inventory-backend/db/models"
)

func newTreeRow(data map[string]string) *models.ImportRow {
	row := &models.ImportRow{Status: models.RowWaiting}
	row.SetDataDict(data)
	return row
}

func TestDeriveRowStatus(t *testing.T) {
	fatal := models.FieldErrorList{{Code: models.ErrInvalidFloat, Fatal: true}}
	warning := models.FieldErrorList{{Code: models.ErrInvalidSpecies, Fatal: false}}

	assert.Equal(t, models.RowError, models.DeriveRowStatus(fatal, false))
	assert.Equal(t, models.RowError, models.DeriveRowStatus(fatal, true))
	assert.Equal(t, models.RowWatch, models.DeriveRowStatus(warning, false))
	assert.Equal(t, models.RowVerified, models.DeriveRowStatus(nil, true))
	assert.Equal(t, models.RowSuccess, models.DeriveRowStatus(nil, false))
}

func TestValidateRowBindsExactSpeciesMatch(t *testing.T) {
	maple := makeSpecies("Acer", "rubrum", "Red Maple")
	svc := testRowService([]models.Species{maple})

	row := newTreeRow(map[string]string{
		models.FieldPointX:  "-73.95",
		models.FieldPointY:  "40.78",
		models.FieldGenus:   "Acer",
		models.FieldSpecies: "rubrum",
	})

	require.NoError(t, svc.ValidateRow(testTreeEvent(), row))
	assert.Equal(t, models.RowSuccess, row.Status)
	require.NotNil(t, row.SpeciesID)
	assert.Equal(t, maple.ID, *row.SpeciesID)
}

func TestValidateRowAmbiguousSpeciesIsFatal(t *testing.T) {
	catalog := []models.Species{
		makeSpecies("Acer", "rubra", "First Maple"),
		makeSpecies("Acer", "rubrb", "Second Maple"),
	}
	svc := testRowService(catalog)

	row := newTreeRow(map[string]string{
		models.FieldPointX:  "-73.95",
		models.FieldPointY:  "40.78",
		models.FieldGenus:   "Acer",
		models.FieldSpecies: "rubrc",
	})

	require.NoError(t, svc.ValidateRow(testTreeEvent(), row))
	assert.Equal(t, models.RowError, row.Status)
	assert.Nil(t, row.SpeciesID)

	fe := row.ErrorList()
	require.True(t, fe.HasCode(models.ErrTooManySpecies))
	require.True(t, fe.HasFatal())
}

func TestValidateRowUnknownSpeciesIsWatch(t *testing.T) {
	svc := testRowService([]models.Species{makeSpecies("Quercus", "alba", "White Oak")})

	row := newTreeRow(map[string]string{
		models.FieldPointX:  "-73.95",
		models.FieldPointY:  "40.78",
		models.FieldGenus:   "Tsuga",
		models.FieldSpecies: "canadensis",
	})

	require.NoError(t, svc.ValidateRow(testTreeEvent(), row))
	assert.Equal(t, models.RowWatch, row.Status)
	assert.True(t, row.ErrorList().HasCode(models.ErrInvalidSpecies))
	assert.False(t, row.ErrorList().HasFatal())
}

func TestValidateRowNearMatchBinds(t *testing.T) {
	maple := makeSpecies("Acer", "rubrum", "Red Maple")
	svc := testRowService([]models.Species{maple})

	row := newTreeRow(map[string]string{
		models.FieldPointX:  "-73.95",
		models.FieldPointY:  "40.78",
		models.FieldGenus:   "Acer",
		models.FieldSpecies: "rubrun", // one-letter typo
	})

	require.NoError(t, svc.ValidateRow(testTreeEvent(), row))
	assert.Equal(t, models.RowSuccess, row.Status)
	require.NotNil(t, row.SpeciesID)
	assert.Equal(t, maple.ID, *row.SpeciesID)
}

func TestValidateRowIsIdempotent(t *testing.T) {
	svc := testRowService(nil)
	event := testTreeEvent()

	row := newTreeRow(map[string]string{
		models.FieldPointX:  "-73.95",
		models.FieldPointY:  "40.78",
		models.FieldGenus:   "Tsuga",
		models.FieldSpecies: "canadensis",
	})

	require.NoError(t, svc.ValidateRow(event, row))
	firstStatus := row.Status
	firstErrors := row.ErrorList()

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.ValidateRow(event, row))
		assert.Equal(t, firstStatus, row.Status)
		assert.Equal(t, firstErrors, row.ErrorList())
	}
}

func TestValidateRowSolvedRowStaysSolved(t *testing.T) {
	catalog := []models.Species{
		makeSpecies("Acer", "rubra", "First Maple"),
		makeSpecies("Acer", "rubrb", "Second Maple"),
	}
	svc := testRowService(catalog)
	event := testTreeEvent()

	row := newTreeRow(map[string]string{
		models.FieldPointX:  "-73.95",
		models.FieldPointY:  "40.78",
		models.FieldGenus:   "Acer",
		models.FieldSpecies: "rubrc",
	})

	require.NoError(t, svc.ValidateRow(event, row))
	require.Equal(t, models.RowError, row.Status)

	// Operator resolution: bind one candidate and mark merged.
	chosen := catalog[0].ID
	row.SpeciesID = &chosen
	row.Merged = true

	require.NoError(t, svc.ValidateRow(event, row))
	assert.Equal(t, models.RowVerified, row.Status)
	assert.False(t, row.ErrorList().HasCode(models.ErrTooManySpecies))
	assert.Equal(t, chosen, *row.SpeciesID)
}

func TestValidateSpeciesRowAutoMergesIdenticalEntry(t *testing.T) {
	existing := makeSpecies("Acer", "rubrum", "Red Maple")
	svc := testRowService([]models.Species{existing})

	row := newTreeRow(map[string]string{
		models.FieldGenus:      "Acer",
		models.FieldSpecies:    "rubrum",
		models.FieldCommonName: "Red Maple",
	})

	require.NoError(t, svc.ValidateRow(testSpeciesEvent(), row))
	assert.Equal(t, models.RowVerified, row.Status)
	assert.True(t, row.Merged)
	require.NotNil(t, row.SpeciesID)
	assert.Equal(t, existing.ID, *row.SpeciesID)
}

func TestValidateSpeciesRowWithDiffRequiresMerge(t *testing.T) {
	existing := makeSpecies("Acer", "rubrum", "Red Maple")
	svc := testRowService([]models.Species{existing})

	row := newTreeRow(map[string]string{
		models.FieldGenus:      "Acer",
		models.FieldSpecies:    "rubrum",
		models.FieldCommonName: "Scarlet Maple",
	})

	require.NoError(t, svc.ValidateRow(testSpeciesEvent(), row))
	assert.Equal(t, models.RowWatch, row.Status)
	assert.False(t, row.Merged)
	assert.True(t, row.ErrorList().HasCode(models.ErrMergeRequired))
}

func TestValidateSpeciesRowNewEntry(t *testing.T) {
	svc := testRowService(nil)

	row := newTreeRow(map[string]string{
		models.FieldGenus:      "Tsuga",
		models.FieldCommonName: "Eastern Hemlock",
	})

	require.NoError(t, svc.ValidateRow(testSpeciesEvent(), row))
	assert.Equal(t, models.RowSuccess, row.Status)
	assert.Nil(t, row.SpeciesID)
}
