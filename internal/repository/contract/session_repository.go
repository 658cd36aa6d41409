package contract

import (
	"context"

	"github.com/google/uuid"

	"research-tutor-be/internal/entity"
	"research-tutor-be/internal/repository/specification"
)

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	Update(ctx context.Context, session *entity.Session) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error)
	// FindOneForUpdate acquires a row lock; only meaningful inside a
	// transaction started through the unit of work.
	FindOneForUpdate(ctx context.Context, specs ...specification.Specification) (*entity.Session, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Session, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
