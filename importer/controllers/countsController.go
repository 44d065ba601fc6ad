package controllers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tree-inventory-backend/config"
	"tree-inventory-backend/db/models"
)

const countsCacheTTL = 15 * time.Second

type eventCounts struct {
	Event  models.ImportEvent `json:"event"`
	Counts map[string]int64   `json:"counts"`
}

// GetImportCountsController returns every active event of the instance
// with its live row counts. Results are briefly cached in Redis since the
// import status screens poll this endpoint.
func (ic *ImporterController) GetImportCountsController(c *fiber.Ctx) error {
	instanceID, err := uuid.Parse(c.Query("instance_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid instance_id",
			"error":   err.Error(),
		})
	}

	ctx := context.Background()
	cacheKey := "importer:counts:" + instanceID.String()
	if ic.Redis != nil {
		if cached, err := ic.Redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var payload map[string][]eventCounts
			if json.Unmarshal(cached, &payload) == nil {
				return c.JSON(payload)
			}
		} else if err != redis.Nil {
			config.Logger.Warn("Counts cache read failed", zap.Error(err))
		}
	}

	payload := map[string][]eventCounts{}
	for _, kind := range []models.ImportKind{models.TreeImportKind, models.SpeciesImportKind} {
		events, err := ic.ImportRepo.ActiveEvents(instanceID, kind)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Failed to load import events",
				"error":   err.Error(),
			})
		}
		list := []eventCounts{}
		for i := range events {
			counts, err := ic.ImportRepo.RowStatusCounts(events[i].ID)
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"message": "Failed to count rows",
					"error":   err.Error(),
				})
			}
			list = append(list, eventCounts{Event: events[i], Counts: counts})
		}
		payload[string(kind)] = list
	}

	if ic.Redis != nil {
		if encoded, err := json.Marshal(payload); err == nil {
			if err := ic.Redis.Set(ctx, cacheKey, encoded, countsCacheTTL).Err(); err != nil {
				config.Logger.Warn("Counts cache write failed", zap.Error(err))
			}
		}
	}

	return c.JSON(payload)
}
