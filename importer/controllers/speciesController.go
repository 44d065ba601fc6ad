package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"tree-inventory-backend/importer/services"
)

// GetSimilarSpeciesController ranks the instance's catalog entries by
// edit distance to a free-text scientific name. Used by the merge
// resolution screen to offer candidates.
func (ic *ImporterController) GetSimilarSpeciesController(c *fiber.Ctx) error {
	instanceID, err := uuid.Parse(c.Query("instance_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid instance_id",
			"error":   err.Error(),
		})
	}
	query := c.Query("q")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "q is required",
		})
	}
	limit := c.QueryInt("limit", 2)

	catalog, err := ic.SpeciesRepo.AllSpecies(instanceID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to load species catalog",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"query":      query,
		"candidates": services.RankSpecies(query, catalog, limit),
	})
}

type mergeSpeciesRequest struct {
	KeepID    string   `json:"keep_id"`
	RemoveIDs []string `json:"remove_ids"`
}

// MergeSpeciesController folds duplicate catalog entries into one. Trees
// of the removed entries are retargeted before the duplicates go away.
func (ic *ImporterController) MergeSpeciesController(c *fiber.Ctx) error {
	var request mergeSpeciesRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request payload",
			"error":   err.Error(),
		})
	}

	keepID, err := uuid.Parse(request.KeepID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid keep_id",
			"error":   err.Error(),
		})
	}
	if len(request.RemoveIDs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "remove_ids is required",
		})
	}

	removeIDs := make([]uuid.UUID, 0, len(request.RemoveIDs))
	for _, raw := range request.RemoveIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid remove_ids entry",
				"error":   raw,
			})
		}
		if id == keepID {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "keep_id cannot also be removed",
			})
		}
		removeIDs = append(removeIDs, id)
	}

	if _, err := ic.SpeciesRepo.GetSpeciesByID(keepID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Species not found",
			"error":   err.Error(),
		})
	}

	if err := ic.SpeciesRepo.MergeSpecies(keepID, removeIDs); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to merge species",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Species merged",
		"keep_id": keepID,
	})
}
