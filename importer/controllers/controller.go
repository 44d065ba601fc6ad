package controllers

import (
	"github.com/redis/go-redis/v9"

	"tree-inventory-backend/importer/repositories"
	"tree-inventory-backend/importer/services"
	"tree-inventory-backend/utils"
)

// ImporterController carries the wiring every importer endpoint needs.
type ImporterController struct {
	ImportRepo    repositories.ImportRepository
	SpeciesRepo   repositories.SpeciesRepository
	InventoryRepo repositories.InventoryRepository

	ImportService *services.ImportService
	ExportService *services.ExportService
	RowService    *services.RowService
	Queue         services.TaskDispatcher

	Storage utils.FileStorage
	Redis   *redis.Client
}

// resultsPageSize is the fixed page length of the results screens.
const resultsPageSize = 10
