package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"legalmitra-backend/config"
	"legalmitra-backend/document"
	"legalmitra-backend/handlers"
	"legalmitra-backend/llm"
	"legalmitra-backend/logger"
	"legalmitra-backend/repository"
	"legalmitra-backend/server"
	"legalmitra-backend/service"
	"legalmitra-backend/session"
	"legalmitra-backend/storage"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	// Initialize storage
	fileStorage, err := storage.NewStorage(ctx, storage.StorageConfig{
		Type:         storage.StorageType(cfg.StorageType),
		LocalPath:    cfg.StorageLocalPath,
		S3Bucket:     cfg.S3Bucket,
		S3Region:     cfg.S3Region,
		AWSAccessKey: cfg.AWSAccessKey,
		AWSSecretKey: cfg.AWSSecretKey,
	})
	if err != nil {
		log.Fatal("Failed to initialize storage", "error", err)
	}
	log.Info("Storage initialized", "type", cfg.StorageType)

	// Initialize Gemini client
	gemini, err := llm.NewGemini(ctx, cfg.GeminiAPIKey,
		llm.GeminiWithModel(cfg.GeminiModel),
		llm.GeminiWithEmbeddingModel(cfg.EmbeddingModel),
		llm.GeminiWithTemperature(cfg.GenerationTemperature),
		llm.GeminiWithLogger(log),
	)
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		log.Warn("GEMINI_API_KEY not set, analysis requests will fail")
	case err != nil:
		log.Fatal("Failed to initialize Gemini", "error", err)
	default:
		defer gemini.Close()
		log.Info("Gemini client initialized", "model", cfg.GeminiModel)
	}

	pdfRenderer := &document.PDFRenderer{}
	if cfg.PDFFontPath != "" {
		pdfRenderer, err = document.NewPDFRenderer(cfg.PDFFontPath)
		if err != nil {
			log.Fatal("Failed to load PDF font", "error", err)
		}
	} else {
		log.Warn("PDF_FONT_PATH not set, PDF exports are limited to Latin text")
	}

	// Initialize services
	fileService := service.NewFileService(fileStorage, log)

	referenceOpts := []service.ReferenceServiceOption{
		service.ReferenceWithFiles(fileService),
		service.ReferenceWithLimits(cfg.MaxPDFPages, cfg.MaxUploadFiles, cfg.MaxReferenceChars),
		service.ReferenceWithLogger(log),
	}
	if cfg.ReferenceLibraryEnabled() {
		pool, err := initPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("Failed to initialize Postgres", "error", err)
		}
		defer pool.Close()

		if gemini == nil {
			log.Warn("Reference library configured without GEMINI_API_KEY, library search disabled")
		} else {
			chunks := repository.NewLegalChunkRepository(pool)
			referenceOpts = append(referenceOpts, service.ReferenceWithLibrary(chunks, gemini, cfg.ReferenceChunkLimit))
			log.Info("Reference library enabled")
		}
	}
	referenceService := service.NewReferenceService(referenceOpts...)

	caseOpts := []service.CaseServiceOption{service.CaseWithLogger(log)}
	if gemini != nil {
		caseOpts = append(caseOpts, service.CaseWithGenerator(gemini))
	}

	jobService := service.NewJobService(
		service.JobWithCaseService(service.NewCaseService(caseOpts...)),
		service.JobWithReferenceService(referenceService),
		service.JobWithTimeout(cfg.GenerationTimeout),
		service.JobWithMaxConcurrent(cfg.MaxConcurrentGenerations),
		service.JobWithLogger(log),
	)

	exportService := service.NewExportService(
		service.ExportWithFiles(fileService),
		service.ExportWithPDFRenderer(pdfRenderer),
		service.ExportWithLogger(log),
	)

	sessions := session.NewManager(cfg.SessionTTL, cfg.SessionCleanupInterval,
		session.WithMaxSessions(cfg.MaxSessions),
		session.WithCaseOptions(repository.WithPermalinkScheme(cfg.PermalinkScheme)),
		session.WithEvictionHook(fileService.Purge),
		session.WithLogger(log),
	)

	srv := server.New(cfg, handlers.Dependencies{
		Sessions:       sessions,
		Jobs:           jobService,
		Exports:        exportService,
		Files:          fileService,
		References:     referenceService,
		MaxUploadSize:  cfg.MaxUploadSize,
		MaxUploadFiles: cfg.MaxUploadFiles,
	}, log)

	log.Info("Starting LegalMitra",
		"host", cfg.Host,
		"port", cfg.Port,
		"language_model", cfg.GeminiModel,
	)

	if err := srv.Run(); err != nil {
		log.Fatal("Server failed", "error", err)
	}
}

func initPostgres(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}
