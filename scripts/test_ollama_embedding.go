//go:build ignore

package main

import (
	"context"
	"fmt"
	"log"

	"research-tutor-be/internal/config"
	"research-tutor-be/pkg/embedding"
)

func main() {
	// 1. Load Config
	cfg := config.Load()
	fmt.Printf("Loaded Config > Ollama URL: %s\n", cfg.Ai.OllamaBaseURL)
	fmt.Printf("Loaded Config > Embedding Model: %s\n", cfg.Ai.OllamaEmbedModel)

	// 2. Initialize Ollama Provider explicitly for testing
	provider := embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaEmbedModel, cfg.Ai.EmbeddingDimension)

	// 3. Test Text
	text := "What methodology fits a pragmatist worldview?"
	fmt.Printf("\nGenerating embedding for: \"%s\"\n", text)

	// 4. Generate
	vec, err := provider.Generate(context.Background(), text, embedding.TaskQuery)
	if err != nil {
		log.Fatalf("Error generating embedding: %v", err)
	}

	fmt.Printf("Success! Dimension: %d\n", len(vec))
	if len(vec) > 5 {
		fmt.Printf("First 5 values: %v\n", vec[:5])
	}
	if len(vec) != cfg.Ai.EmbeddingDimension {
		log.Fatalf("Dimension mismatch: expected %d, got %d", cfg.Ai.EmbeddingDimension, len(vec))
	}
}
