package controllers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tree-inventory-backend/config"
	"tree-inventory-backend/db/models"
	"tree-inventory-backend/utils"
)

// factorFields maps upload form fields to the event's unit conversion
// factor columns.
var factorFields = []string{
	"plot_length_factor",
	"plot_width_factor",
	"diameter_factor",
	"tree_height_factor",
	"canopy_height_factor",
}

// CreateImportEventController accepts a multipart upload and starts the
// import pipeline. The file is parsed synchronously so structural errors
// come back in the response; row validation runs in the background.
func (ic *ImporterController) CreateImportEventController(c *fiber.Ctx) error {
	kind := models.ImportKind(c.FormValue("kind", string(models.TreeImportKind)))
	if kind != models.TreeImportKind && kind != models.SpeciesImportKind {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Unknown import kind",
			"error":   string(kind),
		})
	}

	instanceID, err := uuid.Parse(c.FormValue("instance_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid instance_id",
			"error":   err.Error(),
		})
	}

	createdBy := c.FormValue("created_by")
	if createdBy == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "created_by is required",
		})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "No file uploaded",
			"error":   err.Error(),
		})
	}

	event := &models.ImportEvent{
		ID:         uuid.New(),
		Kind:       kind,
		InstanceID: instanceID,
		FileName:   fileHeader.Filename,
		CreatedBy:  createdBy,
		Status:     models.EventUploaded,
	}
	for _, field := range factorFields {
		raw := c.FormValue(field)
		if raw == "" {
			continue
		}
		factor, err := decimal.NewFromString(raw)
		if err != nil || factor.Sign() <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid unit conversion factor",
				"error":   field,
			})
		}
		switch field {
		case "plot_length_factor":
			event.PlotLengthFactor = factor
		case "plot_width_factor":
			event.PlotWidthFactor = factor
		case "diameter_factor":
			event.DiameterFactor = factor
		case "tree_height_factor":
			event.TreeHeightFactor = factor
		case "canopy_height_factor":
			event.CanopyHeightFactor = factor
		}
	}

	if _, err := ic.ImportRepo.CreateEvent(event); err != nil {
		config.Logger.Error("Failed to create import event", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to create import event",
			"error":   err.Error(),
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Failed to open uploaded file",
			"error":   err.Error(),
		})
	}
	defer file.Close()

	ok, err := ic.ImportService.Ingest(event, file)
	if err != nil {
		config.Logger.Error("Import ingest failed",
			zap.String("event_id", event.ID.String()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to ingest import file",
			"error":   err.Error(),
		})
	}
	if !ok {
		// File-level failure: the event carries the diagnostics.
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Import file failed verification",
			"event":   event,
			"errors":  event.ErrorList(),
		})
	}

	// Keep a copy of the source file so the event can be audited later.
	// Archiving is best effort and never fails the upload.
	if ic.Storage != nil {
		if archive, err := fileHeader.Open(); err == nil {
			name := fmt.Sprintf("%s.csv", event.ID)
			if _, err := ic.Storage.UploadFileFromReader(archive, name); err != nil {
				config.Logger.Warn("Failed to archive import file",
					zap.String("event_id", event.ID.String()),
					zap.Error(err),
				)
			}
			archive.Close()
		}
	}

	if err := ic.Queue.EnqueueValidation(event.ID, event.Kind); err != nil {
		config.Logger.Error("Failed to enqueue validation job",
			zap.String("event_id", event.ID.String()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to schedule validation",
			"error":   err.Error(),
		})
	}

	utils.InvalidateCacheAsync(ic.Redis, "importer:counts")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Import started",
		"event":   event,
	})
}
