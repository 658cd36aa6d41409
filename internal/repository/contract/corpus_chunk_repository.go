package contract

import (
	"context"

	"github.com/google/uuid"

	"research-tutor-be/internal/entity"
	"research-tutor-be/internal/repository/specification"
)

// ScoredCorpusChunk wraps CorpusChunk with its similarity score
type ScoredCorpusChunk struct {
	Chunk      *entity.CorpusChunk
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type CorpusChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.CorpusChunk) error
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	DeleteByBuildIdUnscoped(ctx context.Context, buildId uuid.UUID) error
	// SearchSimilarWithScore returns chunks of one build with their similarity
	// scores, filtered by threshold. Ties break on (source_id, chunk_index)
	// so equal-score results come back in a stable order.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, buildId uuid.UUID, threshold float64) ([]*ScoredCorpusChunk, error)
}
