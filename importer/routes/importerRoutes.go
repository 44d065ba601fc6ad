package routes

import (
	controllers "tree-inventory-backend/importer/controllers"
	"tree-inventory-backend/importer/repositories"
	"tree-inventory-backend/importer/services"
	"tree-inventory-backend/middleware"
	"tree-inventory-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func ImporterInitRoutes(
	app *fiber.App,
	importRepo repositories.ImportRepository,
	speciesRepo repositories.SpeciesRepository,
	inventoryRepo repositories.InventoryRepository,
	importService *services.ImportService,
	exportService *services.ExportService,
	rowService *services.RowService,
	queue services.TaskDispatcher,
	storage utils.FileStorage,
	redisClient *redis.Client,
) {
	importerController := &controllers.ImporterController{
		ImportRepo:    importRepo,
		SpeciesRepo:   speciesRepo,
		InventoryRepo: inventoryRepo,
		ImportService: importService,
		ExportService: exportService,
		RowService:    rowService,
		Queue:         queue,
		Storage:       storage,
		Redis:         redisClient,
	}

	// Create API v1 group
	api := app.Group("/api/v1")

	api.Post("/importer/events", middleware.UploadRateLimiter(), importerController.CreateImportEventController)
	api.Get("/importer/counts", importerController.GetImportCountsController)
	api.Get("/importer/events/:id/status", importerController.GetImportEventStatusController)
	api.Get("/importer/events/:id/results/:subtype", importerController.GetImportResultsController)
	api.Put("/importer/events/:id/rows/:idx", importerController.UpdateImportRowController)
	api.Post("/importer/events/:id/rows/:idx/solve", importerController.SolveImportRowController)
	api.Post("/importer/events/:id/commit", importerController.CommitImportEventController)
	api.Get("/importer/events/:id/export", importerController.ExportImportEventController)
	api.Get("/importer/events/:id/file", importerController.GetImportEventFileController)

	api.Get("/importer/species/export", importerController.ExportSpeciesCatalogController)
	api.Get("/importer/species/similar", importerController.GetSimilarSpeciesController)
	api.Post("/importer/species/merge", importerController.MergeSpeciesController)
}
