package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"tree-inventory-backend/db/models"
	"tree-inventory-backend/utils"
)

type solveRequest struct {
	// Catalog entry the row should bind to, or "new" on species imports
	// to force a fresh catalog entry at commit.
	SpeciesID string `json:"species_id"`
}

// SolveImportRowController records the operator's resolution of a
// species ambiguity. The merge flag survives later re-validation, so a
// solved row stays solved through the commit executor's final pass.
func (ic *ImporterController) SolveImportRowController(c *fiber.Ctx) error {
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

	var request solveRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request payload",
			"error":   err.Error(),
		})
	}

	switch {
	case request.SpeciesID == "new":
		if event.Kind != models.SpeciesImportKind {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Only species imports can create a new catalog entry",
			})
		}
		row.SpeciesID = nil
	default:
		speciesID, err := uuid.Parse(request.SpeciesID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "species_id must be a catalog entry id or \"new\"",
				"error":   err.Error(),
			})
		}
		if _, err := ic.SpeciesRepo.GetSpeciesByID(speciesID); err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Species not found",
				"error":   err.Error(),
			})
		}
		row.SpeciesID = &speciesID
	}

	row.Merged = true
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
		"message": "Row resolved",
		"row":     toRowResult(row),
	})
}
