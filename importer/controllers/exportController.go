package controllers

import (
	"bytes"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ExportImportEventController streams the event's rows back as CSV.
// Materialized rows export the permanent record's current values.
func (ic *ImporterController) ExportImportEventController(c *fiber.Ctx) error {
	eventID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid event id",
			"error":   err.Error(),
		})
	}

	var buf bytes.Buffer
	if err := ic.ExportService.ExportEvent(&buf, eventID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to export import event",
			"error":   err.Error(),
		})
	}

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="import_%s.csv"`, eventID))
	return c.Send(buf.Bytes())
}

// ExportSpeciesCatalogController streams the instance's species catalog
// as CSV. extra=true adds the id and tree count columns.
func (ic *ImporterController) ExportSpeciesCatalogController(c *fiber.Ctx) error {
	instanceID, err := uuid.Parse(c.Query("instance_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid instance_id",
			"error":   err.Error(),
		})
	}
	extra := c.QueryBool("extra", false)

	var buf bytes.Buffer
	if err := ic.ExportService.ExportSpeciesCatalog(&buf, instanceID, extra); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to export species catalog",
			"error":   err.Error(),
		})
	}

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", `attachment; filename="species_catalog.csv"`)
	return c.Send(buf.Bytes())
}
