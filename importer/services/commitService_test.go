package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tree-inventory-backend/db/models"
)

func newCommitFixture(catalog []models.Species) (*CommitService, *stubStore, *stubInventory) {
	store := newStubStore()
	inventory := newStubInventory()
	for i := range catalog {
		sp := catalog[i]
		inventory.species[sp.ID] = &sp
	}
	svc := NewCommitService(store, testRowService(catalog), inventory, zap.NewNop())
	return svc, store, inventory
}

func seedCommitEvent(t *testing.T, store *stubStore, event *models.ImportEvent, rows []map[string]string) {
	t.Helper()
	event.Status = models.EventCreating
	require.NoError(t, store.SaveEvent(event))
	for i, data := range rows {
		row := &models.ImportRow{EventID: event.ID, Idx: i, Status: models.RowWaiting}
		row.SetDataDict(data)
		require.NoError(t, store.CreateRow(row))
	}
}

func TestCommitEventMaterializesTreeRows(t *testing.T) {
	maple := makeSpecies("Acer", "rubrum", "Red Maple")
	svc, store, inventory := newCommitFixture([]models.Species{maple})
	event := testTreeEvent()

	seedCommitEvent(t, store, event, []map[string]string{
		{
			models.FieldPointX:   "-73.95",
			models.FieldPointY:   "40.78",
			models.FieldGenus:    "Acer",
			models.FieldSpecies:  "rubrum",
			models.FieldDiameter: "12.5",
		},
		{
			// Plot only, no tree data.
			models.FieldPointX: "-73.96",
			models.FieldPointY: "40.79",
		},
	})

	require.NoError(t, svc.CommitEvent(event.ID))

	saved, err := store.GetEvent(event.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventFinishedCreating, saved.Status)

	rows, err := store.RowsForEvent(event.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, models.RowSuccess, rows[0].Status)
	require.NotNil(t, rows[0].PlotID)
	require.NotNil(t, rows[0].TreeID)
	tree := inventory.trees[*rows[0].TreeID]
	require.NotNil(t, tree)
	require.NotNil(t, tree.SpeciesID)
	assert.Equal(t, maple.ID, *tree.SpeciesID)
	assert.Equal(t, "12.5", tree.Diameter.String())

	assert.Equal(t, models.RowSuccess, rows[1].Status)
	require.NotNil(t, rows[1].PlotID)
	assert.Nil(t, rows[1].TreeID)

	assert.Len(t, inventory.plots, 2)
	assert.Len(t, inventory.trees, 1)
}

func TestCommitEventAppliesUnitFactors(t *testing.T) {
	svc, store, inventory := newCommitFixture(nil)
	event := testTreeEvent()
	event.DiameterFactor = decimal.NewFromInt(2)

	seedCommitEvent(t, store, event, []map[string]string{
		{
			models.FieldPointX:   "-73.95",
			models.FieldPointY:   "40.78",
			models.FieldDiameter: "10",
		},
	})

	require.NoError(t, svc.CommitEvent(event.ID))

	rows, err := store.RowsForEvent(event.ID)
	require.NoError(t, err)
	require.NotNil(t, rows[0].TreeID)
	assert.Equal(t, "20", inventory.trees[*rows[0].TreeID].Diameter.String())
}

func TestCommitEventRowFailureDoesNotAbortBatch(t *testing.T) {
	svc, store, inventory := newCommitFixture(nil)
	inventory.failPlots = true
	event := testTreeEvent()

	seedCommitEvent(t, store, event, []map[string]string{
		{models.FieldPointX: "-73.95", models.FieldPointY: "40.78"},
		{models.FieldPointX: "-73.96", models.FieldPointY: "40.79"},
	})

	require.NoError(t, svc.CommitEvent(event.ID))

	saved, err := store.GetEvent(event.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventFinishedCreating, saved.Status)

	rows, err := store.RowsForEvent(event.ID)
	require.NoError(t, err)
	for _, row := range rows {
		assert.Equal(t, models.RowError, row.Status)
		assert.True(t, row.ErrorList().HasCode(models.ErrCreateFailed))
	}
}

func TestCommitEventSkipsInvalidRows(t *testing.T) {
	svc, store, inventory := newCommitFixture(nil)
	event := testTreeEvent()

	seedCommitEvent(t, store, event, []map[string]string{
		{models.FieldPointX: "-73.95", models.FieldPointY: "40.78"},
		{models.FieldPointX: "bogus", models.FieldPointY: "40.79"},
	})

	require.NoError(t, svc.CommitEvent(event.ID))

	rows, err := store.RowsForEvent(event.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RowSuccess, rows[0].Status)
	assert.Equal(t, models.RowError, rows[1].Status)
	assert.Nil(t, rows[1].PlotID)
	assert.Equal(t, 1, inventory.creates)
}

func TestCommitEventRetryDoesNotDuplicate(t *testing.T) {
	svc, store, inventory := newCommitFixture(nil)
	event := testTreeEvent()

	seedCommitEvent(t, store, event, []map[string]string{
		{models.FieldPointX: "-73.95", models.FieldPointY: "40.78"},
	})

	require.NoError(t, svc.CommitEvent(event.ID))
	require.Equal(t, 1, inventory.creates)

	// Simulate a retried job after a partial failure elsewhere.
	saved, err := store.GetEvent(event.ID)
	require.NoError(t, err)
	saved.Status = models.EventCreating
	require.NoError(t, store.SaveEvent(saved))

	require.NoError(t, svc.CommitEvent(event.ID))
	assert.Equal(t, 1, inventory.creates)
	assert.Len(t, inventory.plots, 1)
}

func TestCommitEventIgnoresWrongStatus(t *testing.T) {
	svc, store, inventory := newCommitFixture(nil)
	event := testTreeEvent()
	event.Status = models.EventFinishedVerification
	require.NoError(t, store.SaveEvent(event))

	require.NoError(t, svc.CommitEvent(event.ID))
	assert.Equal(t, 0, inventory.creates)
}

func TestCommitEventCreatesAndUpdatesSpecies(t *testing.T) {
	existing := makeSpecies("Acer", "rubrum", "Red Maple")
	svc, store, inventory := newCommitFixture([]models.Species{existing})
	event := testSpeciesEvent()

	seedCommitEvent(t, store, event, []map[string]string{
		{
			// Matches the existing entry exactly, so it auto-merges.
			models.FieldGenus:      "Acer",
			models.FieldSpecies:    "rubrum",
			models.FieldCommonName: "Red Maple",
		},
		{
			models.FieldGenus:      "Tsuga",
			models.FieldSpecies:    "canadensis",
			models.FieldCommonName: "Eastern Hemlock",
		},
	})

	require.NoError(t, svc.CommitEvent(event.ID))

	rows, err := store.RowsForEvent(event.ID)
	require.NoError(t, err)

	// Row 0 auto-merged into the existing entry.
	require.NotNil(t, rows[0].SpeciesID)
	assert.Equal(t, existing.ID, *rows[0].SpeciesID)

	// Row 1 created a fresh catalog entry.
	require.NotNil(t, rows[1].SpeciesID)
	created := inventory.species[*rows[1].SpeciesID]
	require.NotNil(t, created)
	assert.Equal(t, "Tsuga", created.Genus)
	assert.Equal(t, "Eastern Hemlock", created.CommonName)
	assert.Len(t, inventory.species, 2)
}
