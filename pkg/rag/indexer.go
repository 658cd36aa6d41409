package rag

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"research-tutor-be/internal/entity"
	"research-tutor-be/internal/pkg/logger"
	"research-tutor-be/internal/repository/specification"
	"research-tutor-be/internal/repository/unitofwork"
	"research-tutor-be/pkg/embedding"
)

type IndexerConfig struct {
	DocsDir      string
	ChunkSize    int
	ChunkOverlap int
}

// Indexer builds a fresh corpus index from the documents directory. Chunks
// are written under a new build id and retrieval only sees them once the
// build is activated, so readers never observe a half-built index.
type Indexer struct {
	embeddingProvider embedding.Provider
	factory           unitofwork.RepositoryFactory
	logger            logger.ILogger
	config            IndexerConfig
}

func NewIndexer(
	embeddingProvider embedding.Provider,
	factory unitofwork.RepositoryFactory,
	log logger.ILogger,
	config IndexerConfig,
) *Indexer {
	if config.ChunkSize <= 0 {
		config.ChunkSize = DefaultChunkSize
	}
	if config.ChunkOverlap < 0 || config.ChunkOverlap >= config.ChunkSize {
		config.ChunkOverlap = DefaultChunkOverlap
	}
	return &Indexer{
		embeddingProvider: embeddingProvider,
		factory:           factory,
		logger:            log,
		config:            config,
	}
}

// BuildIndex runs a full rebuild and activates the result. The previous
// active build keeps serving until the activation flip commits.
func (ix *Indexer) BuildIndex(ctx context.Context) (*entity.IndexBuild, error) {
	sources, err := ix.listDocuments()
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no corpus documents found in %s", ix.config.DocsDir)
	}

	uow := ix.factory.NewUnitOfWork(ctx)

	build := &entity.IndexBuild{
		Status:         entity.BuildStatusBuilding,
		EmbeddingModel: fmt.Sprintf("%T", ix.embeddingProvider),
		Dimension:      ix.embeddingProvider.Dimension(),
		DocumentCount:  len(sources),
	}
	if named, ok := ix.embeddingProvider.(interface{ ModelName() string }); ok {
		build.EmbeddingModel = named.ModelName()
	}
	if err := uow.IndexBuildRepository().Create(ctx, build); err != nil {
		return nil, fmt.Errorf("create index build: %w", err)
	}

	chunks, err := ix.embedDocuments(ctx, build, sources)
	if err != nil {
		ix.markFailed(ctx, uow, build, err)
		return nil, err
	}

	if err := uow.CorpusChunkRepository().CreateBulk(ctx, chunks); err != nil {
		ix.markFailed(ctx, uow, build, err)
		return nil, fmt.Errorf("persist corpus chunks: %w", err)
	}

	build.ChunkCount = len(chunks)
	if err := ix.activate(ctx, build); err != nil {
		ix.markFailed(ctx, uow, build, err)
		return nil, err
	}

	ix.logger.Info("indexer", "Corpus index built and activated", map[string]interface{}{
		"build_id":  build.Id.String(),
		"documents": build.DocumentCount,
		"chunks":    build.ChunkCount,
	})
	return build, nil
}

// IndexStatus reports the serving build alongside the most recent build
// attempt, which may be a failed one the active build predates.
type IndexStatus struct {
	Active       *entity.IndexBuild
	Latest       *entity.IndexBuild
	ActiveChunks int64
}

func (ix *Indexer) Status(ctx context.Context) (*IndexStatus, error) {
	uow := ix.factory.NewUnitOfWork(ctx)

	active, err := uow.IndexBuildRepository().FindActive(ctx)
	if err != nil {
		return nil, err
	}
	latest, err := uow.IndexBuildRepository().FindOne(ctx,
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	status := &IndexStatus{Active: active, Latest: latest}
	if active != nil {
		count, err := uow.CorpusChunkRepository().Count(ctx, specification.ByBuildID{BuildID: active.Id})
		if err != nil {
			return nil, err
		}
		status.ActiveChunks = count
	}
	return status, nil
}

func (ix *Indexer) listDocuments() ([]string, error) {
	entries, err := os.ReadDir(ix.config.DocsDir)
	if err != nil {
		return nil, fmt.Errorf("read corpus dir: %w", err)
	}

	var sources []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".txt" || ext == ".md" {
			sources = append(sources, e.Name())
		}
	}
	sort.Strings(sources)
	return sources, nil
}

func (ix *Indexer) embedDocuments(ctx context.Context, build *entity.IndexBuild, sources []string) ([]*entity.CorpusChunk, error) {
	var chunks []*entity.CorpusChunk
	for _, name := range sources {
		raw, err := os.ReadFile(filepath.Join(ix.config.DocsDir, name))
		if err != nil {
			return nil, fmt.Errorf("read document %s: %w", name, err)
		}

		pieces := SplitText(strings.TrimSpace(string(raw)), ix.config.ChunkSize, ix.config.ChunkOverlap)
		for idx, piece := range pieces {
			if strings.TrimSpace(piece) == "" {
				continue
			}
			vector, err := ix.embeddingProvider.Generate(ctx, piece, embedding.TaskDocument)
			if err != nil {
				return nil, fmt.Errorf("embed %s[%d]: %w", name, idx, err)
			}
			chunks = append(chunks, &entity.CorpusChunk{
				BuildId:        build.Id,
				SourceId:       name,
				ChunkIndex:     idx,
				Content:        piece,
				EmbeddingValue: vector,
			})
		}
		ix.logger.Debug("indexer", "Document chunked", map[string]interface{}{
			"source": name,
			"chunks": len(pieces),
		})
	}
	return chunks, nil
}

func (ix *Indexer) activate(ctx context.Context, build *entity.IndexBuild) error {
	txUow := ix.factory.NewUnitOfWork(ctx)
	if err := txUow.Begin(ctx); err != nil {
		return fmt.Errorf("begin activation tx: %w", err)
	}
	build.Status = entity.BuildStatusActive
	if err := txUow.IndexBuildRepository().Update(ctx, build); err != nil {
		_ = txUow.Rollback()
		return fmt.Errorf("update build counts: %w", err)
	}
	if err := txUow.IndexBuildRepository().Activate(ctx, build.Id); err != nil {
		_ = txUow.Rollback()
		return fmt.Errorf("activate build: %w", err)
	}
	if err := txUow.Commit(); err != nil {
		return fmt.Errorf("commit activation: %w", err)
	}
	return nil
}

func (ix *Indexer) markFailed(ctx context.Context, uow unitofwork.UnitOfWork, build *entity.IndexBuild, cause error) {
	build.Status = entity.BuildStatusFailed
	build.Error = cause.Error()
	if err := uow.IndexBuildRepository().Update(ctx, build); err != nil {
		ix.logger.Error("indexer", "Failed to record build failure", map[string]interface{}{"error": err.Error()})
	}
	// Orphaned chunks of the failed build are unreachable by retrieval but
	// still occupy space, so clean them up best effort.
	if err := uow.CorpusChunkRepository().DeleteByBuildIdUnscoped(ctx, build.Id); err != nil {
		ix.logger.Warn("indexer", "Failed to clean up chunks of failed build", map[string]interface{}{"error": err.Error()})
	}
}
