package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"tree-inventory-backend/importer/services"
	"tree-inventory-backend/utils"
)

// CommitImportEventController starts the background materialization of a
// fully validated event. Exactly one commit can win; everything else gets
// a conflict.
func (ic *ImporterController) CommitImportEventController(c *fiber.Ctx) error {
	eventID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid event id",
			"error":   err.Error(),
		})
	}

	if err := ic.ImportService.Commit(eventID); err != nil {
		if errors.Is(err, services.ErrCommitNotAllowed) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Import event is not ready to be committed",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to commit import event",
			"error":   err.Error(),
		})
	}

	utils.InvalidateCacheAsync(ic.Redis, "importer:counts")

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Import commit started",
	})
}
