package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"tree-inventory-backend/db/models"
)

// GetImportEventStatusController returns the event's lifecycle status,
// file-level errors, and live per-status row counts.
func (ic *ImporterController) GetImportEventStatusController(c *fiber.Ctx) error {
	eventID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid event id",
			"error":   err.Error(),
		})
	}

	event, err := ic.ImportRepo.GetEvent(eventID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Import event not found",
			"error":   err.Error(),
		})
	}

	counts, err := ic.ImportService.RowTypeCounts(eventID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to count rows",
			"error":   err.Error(),
		})
	}

	fileErrors := event.ErrorList()
	rowErrors := counts[models.RowError]
	watch := counts[models.RowWatch]
	success := counts[models.RowSuccess] + counts[models.RowVerified]

	return c.JSON(fiber.Map{
		"event":       event,
		"row_counts":  counts,
		"file_errors": fileErrors,
		"summary": fiber.Map{
			"has_file_errors": len(fileErrors) > 0,
			"row_errors":      rowErrors,
			"watch":           watch,
			"success":         success,
			"committable":     event.Status == models.EventFinishedVerification && rowErrors == 0,
		},
	})
}
