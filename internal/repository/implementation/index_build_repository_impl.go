package implementation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"research-tutor-be/internal/entity"
	"research-tutor-be/internal/mapper"
	"research-tutor-be/internal/model"
	"research-tutor-be/internal/repository/contract"
	"research-tutor-be/internal/repository/specification"
)

type IndexBuildRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CorpusMapper
}

func NewIndexBuildRepository(db *gorm.DB) contract.IndexBuildRepository {
	return &IndexBuildRepositoryImpl{
		db:     db,
		mapper: mapper.NewCorpusMapper(),
	}
}

func (r *IndexBuildRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *IndexBuildRepositoryImpl) Create(ctx context.Context, build *entity.IndexBuild) error {
	m := r.mapper.BuildToModel(build)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*build = *r.mapper.BuildToEntity(m)
	return nil
}

func (r *IndexBuildRepositoryImpl) Update(ctx context.Context, build *entity.IndexBuild) error {
	m := r.mapper.BuildToModel(build)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*build = *r.mapper.BuildToEntity(m)
	return nil
}

func (r *IndexBuildRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.IndexBuild, error) {
	var m model.IndexBuild
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.BuildToEntity(&m), nil
}

func (r *IndexBuildRepositoryImpl) FindActive(ctx context.Context) (*entity.IndexBuild, error) {
	return r.FindOne(ctx, specification.ByStatus{Status: entity.BuildStatusActive})
}

// Activate demotes the current active build and promotes the given one.
// Run inside a transaction so the flip is a single visible step.
func (r *IndexBuildRepositoryImpl) Activate(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Model(&model.IndexBuild{}).
		Where("status = ?", entity.BuildStatusActive).
		Where("id <> ?", id).
		Update("status", entity.BuildStatusSuperseded).Error
	if err != nil {
		return err
	}

	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&model.IndexBuild{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       entity.BuildStatusActive,
			"activated_at": &now,
		}).Error
}
