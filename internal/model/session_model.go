package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Session struct {
	Id                uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OwnerRef          string         `gorm:"type:text;index"` // External identity reference, empty for anonymous sessions
	Title             string         `gorm:"type:text;not null"`
	Worldview         string         `gorm:"type:text;not null;default:''"`
	ChosenMethodology string         `gorm:"type:text;not null;default:''"`
	ActiveStep        int            `gorm:"not null;default:1"`
	StepData          datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt         time.Time      `gorm:"autoCreateTime"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime"`
	DeletedAt         gorm.DeletedAt `gorm:"index"`
}

func (Session) TableName() string {
	return "sessions"
}
