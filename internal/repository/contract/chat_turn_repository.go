package contract

import (
	"context"

	"github.com/google/uuid"

	"research-tutor-be/internal/entity"
	"research-tutor-be/internal/repository/specification"
)

type ChatTurnRepository interface {
	Create(ctx context.Context, turn *entity.ChatTurn) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatTurn, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatTurn, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// FindRecent returns the last 'limit' turns for a session in
	// chronological order.
	FindRecent(ctx context.Context, sessionId uuid.UUID, limit int) ([]*entity.ChatTurn, error)
	DeleteBySessionIdUnscoped(ctx context.Context, sessionId uuid.UUID) error
}
