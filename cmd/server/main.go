package main

import (
	"fmt"
	"log"

	"lifedash/internal/ai"
	"lifedash/internal/config"
	"lifedash/internal/domain"
	"lifedash/internal/handler"
	"lifedash/internal/preprocess"
	"lifedash/internal/recognize"
	"lifedash/internal/recognize/azureread"
	"lifedash/internal/recognize/tesseract"
	"lifedash/internal/recognize/vision"
	"lifedash/internal/repository/postgres"
	"lifedash/internal/router"
	"lifedash/internal/service"
	s3storage "lifedash/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	entryRepo := postgres.NewEntryRepo(db)

	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Recognition chain: cloud engines first, local tesseract last. The
	// local engine gets a downscaled grayscale rendition of the payload.
	pre := preprocess.New(cfg.Preprocess)
	localQueue := tesseract.NewQueue(tesseract.NewEngine(cfg.Recognizer.Local))
	chain := recognize.NewChain([]recognize.Engine{
		{ID: domain.EngineGoogleVision, Recognizer: vision.NewEngine(&cfg.Recognizer.Google)},
		{ID: domain.EngineAzureVision, Recognizer: azureread.NewEngine(&cfg.Recognizer.Azure)},
		{ID: domain.EngineTesseract, Recognizer: localQueue, Prepare: pre.OptimizeForLocalOCR},
	})

	aiClient := ai.NewClient(&cfg.AI)
	classifier := ai.NewClassifier(aiClient)
	extractor := ai.NewExtractor(aiClient)

	ingestSvc := service.NewIngestService(pre, chain, classifier, extractor, cfg.Pipeline)
	entrySvc := service.NewEntryService(entryRepo, s3Client, &cfg.S3)

	ingestH := handler.NewIngestHandler(ingestSvc, cfg.S3.MaxFileSizeMB)
	entryH := handler.NewEntryHandler(entrySvc)
	healthH := handler.NewHealthHandler(db)

	r := router.Setup(ingestH, entryH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
