package mapper

import (
	"github.com/pgvector/pgvector-go"

	"research-tutor-be/internal/entity"
	"research-tutor-be/internal/model"
)

type CorpusMapper struct{}

func NewCorpusMapper() *CorpusMapper {
	return &CorpusMapper{}
}

func (m *CorpusMapper) ChunkToEntity(c *model.CorpusChunk) *entity.CorpusChunk {
	if c == nil {
		return nil
	}
	return &entity.CorpusChunk{
		Id:             c.Id,
		BuildId:        c.BuildId,
		SourceId:       c.SourceId,
		ChunkIndex:     c.ChunkIndex,
		Content:        c.Content,
		EmbeddingValue: c.EmbeddingValue.Slice(),
		CreatedAt:      c.CreatedAt,
	}
}

func (m *CorpusMapper) ChunkToModel(c *entity.CorpusChunk) *model.CorpusChunk {
	if c == nil {
		return nil
	}
	return &model.CorpusChunk{
		Id:             c.Id,
		BuildId:        c.BuildId,
		SourceId:       c.SourceId,
		ChunkIndex:     c.ChunkIndex,
		Content:        c.Content,
		EmbeddingValue: pgvector.NewVector(c.EmbeddingValue),
		CreatedAt:      c.CreatedAt,
	}
}

func (m *CorpusMapper) BuildToEntity(b *model.IndexBuild) *entity.IndexBuild {
	if b == nil {
		return nil
	}
	return &entity.IndexBuild{
		Id:             b.Id,
		Status:         b.Status,
		EmbeddingModel: b.EmbeddingModel,
		Dimension:      b.Dimension,
		DocumentCount:  b.DocumentCount,
		ChunkCount:     b.ChunkCount,
		Error:          b.Error,
		StartedAt:      b.StartedAt,
		ActivatedAt:    b.ActivatedAt,
	}
}

func (m *CorpusMapper) BuildToModel(b *entity.IndexBuild) *model.IndexBuild {
	if b == nil {
		return nil
	}
	return &model.IndexBuild{
		Id:             b.Id,
		Status:         b.Status,
		EmbeddingModel: b.EmbeddingModel,
		Dimension:      b.Dimension,
		DocumentCount:  b.DocumentCount,
		ChunkCount:     b.ChunkCount,
		Error:          b.Error,
		StartedAt:      b.StartedAt,
		ActivatedAt:    b.ActivatedAt,
	}
}
