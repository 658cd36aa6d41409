package service

import (
	"context"
	"encoding/json"
	"time"

	"research-tutor-be/internal/dto"
	"research-tutor-be/internal/entity"
	"research-tutor-be/internal/pkg/logger"
	"research-tutor-be/pkg/rag"
)

type ICorpusService interface {
	Status(ctx context.Context) (*dto.CorpusStatusResponse, error)
	Reindex(ctx context.Context) (*dto.ReindexResponse, error)
}

type corpusService struct {
	indexer          *rag.Indexer
	publisherService IPublisherService
	logger           logger.ILogger
}

func NewCorpusService(
	indexer *rag.Indexer,
	publisherService IPublisherService,
	log logger.ILogger,
) ICorpusService {
	return &corpusService{
		indexer:          indexer,
		publisherService: publisherService,
		logger:           log,
	}
}

func (s *corpusService) Status(ctx context.Context) (*dto.CorpusStatusResponse, error) {
	status, err := s.indexer.Status(ctx)
	if err != nil {
		return nil, err
	}

	res := &dto.CorpusStatusResponse{Ready: false}

	if active := status.Active; active != nil {
		res.Ready = active.Status == entity.BuildStatusActive
		res.BuildId = &active.Id
		res.Status = string(active.Status)
		res.EmbeddingModel = active.EmbeddingModel
		res.Documents = active.DocumentCount
		res.Chunks = status.ActiveChunks
		res.ActivatedAt = active.ActivatedAt
	}

	// A rebuild newer than the serving build shows up here, including a
	// failed one and the reason it failed.
	if latest := status.Latest; latest != nil && (status.Active == nil || latest.Id != status.Active.Id) {
		res.LastBuildStatus = string(latest.Status)
		res.LastBuildError = latest.Error
	}

	return res, nil
}

// Reindex enqueues a rebuild instead of running it inline. Embedding a whole
// corpus can take minutes.
func (s *corpusService) Reindex(ctx context.Context) (*dto.ReindexResponse, error) {
	payload, err := json.Marshal(dto.ReindexCorpusMessage{RequestedAt: time.Now()})
	if err != nil {
		return nil, err
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		return nil, err
	}

	s.logger.Info("corpus", "Reindex enqueued", nil)
	return &dto.ReindexResponse{Enqueued: true}, nil
}
