package controllers

import (
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// GetImportEventFileController returns the archived source file an event
// was created from, so an upload can be audited after the fact.
func (ic *ImporterController) GetImportEventFileController(c *fiber.Ctx) error {
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

	name := fmt.Sprintf("%s.csv", eventID)
	if ic.Storage == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Source file archiving is not enabled",
		})
	}
	exists, err := ic.Storage.FileExists(name)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to check archived file",
			"error":   err.Error(),
		})
	}
	if !exists {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Source file is no longer archived",
		})
	}

	file, err := ic.Storage.DownloadFile(name)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to open archived file",
			"error":   err.Error(),
		})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to read archived file",
			"error":   err.Error(),
		})
	}

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, event.FileName))
	return c.Send(data)
}
