package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BySessionID struct {
	SessionID uuid.UUID
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

type ByStep struct {
	Step int
}

func (s ByStep) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("step = ?", s.Step)
}
