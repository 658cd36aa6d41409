package contract

import (
	"context"

	"github.com/google/uuid"

	"research-tutor-be/internal/entity"
	"research-tutor-be/internal/repository/specification"
)

type IndexBuildRepository interface {
	Create(ctx context.Context, build *entity.IndexBuild) error
	Update(ctx context.Context, build *entity.IndexBuild) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.IndexBuild, error)
	// FindActive returns the currently serving build, or nil when no build
	// has ever been activated.
	FindActive(ctx context.Context) (*entity.IndexBuild, error)
	// Activate flips the given build to active and demotes any previous
	// active build to superseded. Callers run it inside a transaction so
	// retrieval never observes zero or two active builds.
	Activate(ctx context.Context, id uuid.UUID) error
}
