package main

import (
	"context"

	config "tree-inventory-backend/config"
	"tree-inventory-backend/middleware"
	"tree-inventory-backend/utils"

	importer_repositories "tree-inventory-backend/importer/repositories"
	importer_routes "tree-inventory-backend/importer/routes"
	importer_services "tree-inventory-backend/importer/services"
	"tree-inventory-backend/seeds"
	"tree-inventory-backend/tasks"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Initialize Zap logger
	config.InitLogger()

	// Load environment variables
	err := godotenv.Load(".env")
	if err != nil {
		config.Logger.Warn("No .env file found, relying on the environment", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 32 * 1024 * 1024, // bulk import files
	})

	// Apply CORS middleware from middleware package
	middleware.InitCors(app)

	// Initialize database and configs
	db := config.ConfigureDatabase()
	port := config.GetEnvOr("PORT", "8080")
	ctx := context.Background()

	// Redis client for Asynq and other uses
	redisAddr := config.GetEnv("REDIS_ADDRESS")
	if redisAddr == "" {
		redisAddr = "localhost:6379" // Default for development
		config.Logger.Warn("REDIS_ADDRESS not set, using default: localhost:6379")
	}

	redisClient := config.InitRedisServer(ctx)
	// Note: asynq.RedisClientOpt uses its own Redis client internally.
	asynqRedisOpt := asynq.RedisClientOpt{
		Addr:     redisAddr,
		Password: "",
		DB:       0,
	}

	asynqClient := asynq.NewClient(asynqRedisOpt)
	defer asynqClient.Close()

	// Initialize the mailer
	utils.InitializeMailer()

	// Serve generated reports
	app.Static("/public", "./public")

	// Seed the species catalog when SEED_INSTANCE_ID is set
	if err := seeds.SeedFromEnv(db); err != nil {
		config.Logger.Error("Species catalog seeding failed", zap.Error(err))
	}

	// Archive of uploaded import files
	archivePath := config.GetEnvOr("IMPORT_ARCHIVE_PATH", "./uploads/imports")
	fileStorage := utils.NewLocalFileStorage(archivePath)

	// Repositories
	importRepo := importer_repositories.NewImportRepository(db)
	speciesRepo := importer_repositories.NewSpeciesRepository(db)
	inventoryRepo := importer_repositories.NewInventoryRepository(db)

	// Services
	region := config.LoadRegion()
	catalog := importer_services.DefaultChoiceCatalog()
	rowService := importer_services.NewRowService(speciesRepo, catalog, region, config.Logger)
	dispatcher := tasks.NewDispatcher(asynqClient, config.Logger)
	notifier := importer_services.NewErrorReportNotifier(inventoryRepo, config.Logger)
	importService := importer_services.NewImportService(importRepo, rowService, dispatcher, notifier, config.Logger)
	commitService := importer_services.NewCommitService(importRepo, rowService, inventoryRepo, config.Logger)
	exportService := importer_services.NewExportService(importRepo, inventoryRepo)

	// Background worker for validation and commit jobs
	worker := tasks.NewWorker(asynqRedisOpt, importService, commitService, config.Logger)
	go func() {
		if err := worker.Run(); err != nil {
			config.Logger.Fatal("Task worker failed", zap.Error(err))
		}
	}()
	defer worker.Shutdown()

	// Routes
	importer_routes.ImporterInitRoutes(
		app,
		importRepo,
		speciesRepo,
		inventoryRepo,
		importService,
		exportService,
		rowService,
		dispatcher,
		fileStorage,
		redisClient,
	)

	// Background cleanup tasks
	utils.RunScheduledCleanup(redisClient, fileStorage, archivePath)

	// Start the application
	config.Logger.Info("Server starting", zap.String("port", port))
	config.Logger.Fatal("Server failed", zap.String("port", port), zap.Error(app.Listen(":"+port)))
}
