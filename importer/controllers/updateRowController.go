package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"tree-inventory-backend/db/models"
	"tree-inventory-backend/utils"
)

func knownFields(kind models.ImportKind) map[string]bool {
	fields := models.TreeImportFields
	if kind == models.SpeciesImportKind {
		fields = models.SpeciesImportFields
	}
	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f] = true
	}
	return known
}

func (ic *ImporterController) loadEventRow(c *fiber.Ctx) (*models.ImportEvent, *models.ImportRow, error) {
	eventID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid event id",
			"error":   err.Error(),
		})
	}
	idx, err := strconv.Atoi(c.Params("idx"))
	if err != nil || idx < 0 {
		return nil, nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid row index",
		})
	}

	event, err := ic.ImportRepo.GetEvent(eventID)
	if err != nil {
		return nil, nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Import event not found",
			"error":   err.Error(),
		})
	}
	row, err := ic.ImportRepo.GetRow(eventID, idx)
	if err != nil {
		return nil, nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Import row not found",
			"error":   err.Error(),
		})
	}
	return event, row, nil
}

// UpdateImportRowController applies field edits to one row and
// re-validates it. Unknown field names are ignored rather than rejected.
// Editing resets any earlier merge resolution since the new values may
// match differently.
func (ic *ImporterController) UpdateImportRowController(c *fiber.Ctx) error {
	event, row, ferr := ic.loadEventRow(c)
	if ferr != nil || event == nil {
		return ferr
	}
	if event.Terminal() || event.Status == models.EventCreating {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Import event can no longer be edited",
			"status":  event.Status,
		})
	}

	var updates map[string]string
	if err := c.BodyParser(&updates); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request payload",
			"error":   err.Error(),
		})
	}

	known := knownFields(event.Kind)
	data := row.DataDict()
	changed := false
	for field, value := range updates {
		if !known[field] {
			continue
		}
		if data[field] != value {
			data[field] = value
			changed = true
		}
	}

	if changed {
		row.SetDataDict(data)
		row.Merged = false
		row.SpeciesID = nil
	}

	if err := ic.RowService.ValidateRow(event, row); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to validate row",
			"error":   err.Error(),
		})
	}
	if err := ic.ImportRepo.SaveRow(row); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to save row",
			"error":   err.Error(),
		})
	}

	utils.InvalidateCacheAsync(ic.Redis, "importer:counts")

	return c.JSON(fiber.Map{
		"message": "Row updated",
		"row":     toRowResult(row),
	})
}
