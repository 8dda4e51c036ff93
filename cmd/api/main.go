package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"qahiring/cv-analyzer/internal/config"
	"qahiring/cv-analyzer/internal/handlers"
	"qahiring/cv-analyzer/internal/repositories"
	"qahiring/cv-analyzer/internal/rubric"
	"qahiring/cv-analyzer/internal/services"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	log.Println("✅ Config loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rb, err := rubric.Default()
	if err != nil {
		log.Fatalf("❌ Failed to load rubric: %v", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	analysisRepo := repositories.NewAnalysisRepository(db)
	criteriaRepo := repositories.NewCriteriaRepository(db)
	log.Println("✅ Repositories initialized successfully")

	storageService, err := services.NewStorageService(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("❌ Failed to initialize storage: %v", err)
	}
	if err := storageService.EnsureReady(ctx); err != nil {
		log.Fatalf("❌ Failed to prepare %s storage: %v", cfg.Storage.Driver, err)
	}

	extractor := services.NewTextExtractor()
	log.Println("✅ Services initialized successfully")

	// Without a key every analysis returns an ERROR report instead of
	// refusing to start.
	var provider services.LLMProvider
	baseProvider, err := services.NewLLMProvider(ctx, cfg.LLM)
	switch {
	case errors.Is(err, services.ErrMissingAPIKey):
		log.Printf("⚠️  No API key for %s, analyses will return an error result\n", cfg.LLM.Provider)
	case err != nil:
		log.Fatalf("❌ Failed to initialize %s: %v", cfg.LLM.Provider, err)
	default:
		provider = services.NewThrottledProvider(
			baseProvider,
			cfg.LLM.RequestsPerMin,
			cfg.Worker.RetryMaxAttempts,
			cfg.Worker.RetryInitialDelay,
		)
		log.Printf("✅ %s provider initialized successfully\n", baseProvider.Name())
	}

	var retriever services.RubricRetriever
	if embedder, ok := baseProvider.(services.Embedder); ok && cfg.Qdrant.Enabled() {
		qdrantService, err := services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection)
		if err != nil {
			log.Printf("⚠️  Qdrant unavailable, continuing without rubric retrieval: %v\n", err)
		} else if err := qdrantService.InitCollection(ctx); err != nil {
			log.Printf("⚠️  Qdrant collection unavailable, continuing without rubric retrieval: %v\n", err)
		} else {
			retriever = services.NewRubricRetriever(embedder, qdrantService, cfg.Qdrant.TopK)
			log.Println("✅ Qdrant initialized successfully")
		}
	}

	analyzer := services.NewAnalyzerService(provider, criteriaRepo, retriever, rb)
	log.Println("✅ Analyzer service initialized")

	worker := services.NewWorker(analyzer, cfg.Worker.Concurrency)
	worker.Start(ctx)

	h := handlers.Handlers{
		Upload: handlers.NewUploadHandler(
			analysisRepo,
			storageService,
			extractor,
			worker,
			cfg.Storage.MaxFileSize,
			cfg.Worker.AnalysisTimeout,
		),
		Result:   handlers.NewResultHandler(analysisRepo),
		Criteria: handlers.NewCriteriaHandler(criteriaRepo),
	}
	log.Println("✅ Handlers initialized")

	app := fiber.New(fiber.Config{
		AppName:     "CV Analyzer API",
		ReadTimeout: 30 * time.Second,
		// analysis runs inside the upload request
		WriteTimeout: 3 * time.Minute,
		// room for multipart overhead; the handler enforces the file limit
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1024*1024,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	handlers.RegisterRoutes(app, h)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "CV Analyzer API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/upload",
				"GET /api/results/:id",
				"GET /api/criteria",
				"POST /api/criteria",
				"GET /api/health",
			},
		})
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		worker.Stop()
		cancel()
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
