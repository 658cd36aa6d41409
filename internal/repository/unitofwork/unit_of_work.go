package unitofwork

import (
	"context"

	"research-tutor-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	SessionRepository() contract.SessionRepository
	ChatTurnRepository() contract.ChatTurnRepository
	CorpusChunkRepository() contract.CorpusChunkRepository
	IndexBuildRepository() contract.IndexBuildRepository
}
