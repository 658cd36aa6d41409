package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByBuildID struct {
	BuildID uuid.UUID
}

func (s ByBuildID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("build_id = ?", s.BuildID)
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}
