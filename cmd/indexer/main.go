package main

import (
	"context"
	"log"
	"time"

	"github.com/fatih/color"

	"research-tutor-be/internal/config"
	"research-tutor-be/internal/pkg/logger"
	"research-tutor-be/internal/repository/unitofwork"
	"research-tutor-be/pkg/database"
	"research-tutor-be/pkg/embedding"
	"research-tutor-be/pkg/rag"
)

// Builds the corpus index from the documents directory and activates it.
// Run this once after deploying new corpus documents, or use the
// /corpus/v1/reindex endpoint against a running server.
func main() {
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewIsolatedLogger("logs/indexer.log")

	embeddingProvider := embedding.NewOllamaProvider(
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OllamaEmbedModel,
		cfg.Ai.EmbeddingDimension,
	)

	indexer := rag.NewIndexer(embeddingProvider, uowFactory, sysLogger, rag.IndexerConfig{
		DocsDir:      cfg.Rag.DocsDir,
		ChunkSize:    cfg.Rag.ChunkSize,
		ChunkOverlap: cfg.Rag.ChunkOverlap,
	})

	color.Cyan("=== Corpus Indexer ===")
	color.White("Docs dir: %s", cfg.Rag.DocsDir)
	color.White("Embedding model: %s (dim %d)", cfg.Ai.OllamaEmbedModel, cfg.Ai.EmbeddingDimension)

	start := time.Now()
	build, err := indexer.BuildIndex(context.Background())
	if err != nil {
		color.Red("Index build failed: %v", err)
		log.Fatal(err)
	}

	color.Green("Index build %s activated", build.Id)
	color.Green("Documents: %d  Chunks: %d  Took: %s", build.DocumentCount, build.ChunkCount, time.Since(start).Round(time.Second))
}
