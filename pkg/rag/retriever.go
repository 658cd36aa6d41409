package rag

import (
	"context"
	"fmt"

	"research-tutor-be/internal/pkg/logger"
	"research-tutor-be/internal/repository/unitofwork"
	"research-tutor-be/pkg/embedding"
)

// Passage is one retrieved corpus excerpt ready for prompt assembly.
type Passage struct {
	SourceId   string
	ChunkIndex int
	Content    string
	Score      float64
}

// RetrievalConfig encapsulates search parameters
type RetrievalConfig struct {
	TopK            int
	DBThreshold     float64
	CutoffScore     float64
	MaxPassageChars int
}

// DefaultRetrievalConfig returns default search configuration
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{
		TopK:            4,
		DBThreshold:     0.0,
		CutoffScore:     0.35,
		MaxPassageChars: 800,
	}
}

// Retriever handles vector search over the active corpus index
type Retriever struct {
	embeddingProvider embedding.Provider
	logger            logger.ILogger
}

func NewRetriever(embeddingProvider embedding.Provider, log logger.ILogger) *Retriever {
	return &Retriever{
		embeddingProvider: embeddingProvider,
		logger:            log,
	}
}

// Execute embeds the query and searches the active index build. A corpus
// with no active build yields an empty result, not an error.
func (r *Retriever) Execute(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	query string,
	config RetrievalConfig,
) ([]Passage, error) {

	activeBuild, err := uow.IndexBuildRepository().FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve active index: %w", err)
	}
	if activeBuild == nil {
		r.logger.Warn("retriever", "No active index build, returning zero passages", nil)
		return nil, nil
	}

	queryEmbedding, err := r.embeddingProvider.Generate(ctx, query, embedding.TaskQuery)
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	scoredResults, err := uow.CorpusChunkRepository().SearchSimilarWithScore(
		ctx,
		queryEmbedding,
		config.TopK,
		activeBuild.Id,
		config.DBThreshold,
	)
	if err != nil {
		r.logger.Error("retriever", "Vector search failed", map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	var passages []Passage
	for i, res := range scoredResults {
		if res.Similarity < config.CutoffScore {
			r.logger.Debug("retriever", "Candidate filtered below cutoff", map[string]interface{}{
				"rank":  i + 1,
				"score": res.Similarity,
			})
			continue
		}
		passages = append(passages, Passage{
			SourceId:   res.Chunk.SourceId,
			ChunkIndex: res.Chunk.ChunkIndex,
			Content:    truncateRunes(res.Chunk.Content, config.MaxPassageChars),
			Score:      res.Similarity,
		})
	}

	r.logger.Debug("retriever", "Retrieval complete", map[string]interface{}{
		"raw":  len(scoredResults),
		"kept": len(passages),
	})

	return passages, nil
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
