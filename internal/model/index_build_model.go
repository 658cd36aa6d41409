package model

import (
	"time"

	"github.com/google/uuid"
)

type IndexBuild struct {
	Id             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Status         string     `gorm:"type:text;not null;index"`
	EmbeddingModel string     `gorm:"type:text;not null"`
	Dimension      int        `gorm:"not null"`
	DocumentCount  int        `gorm:"not null;default:0"`
	ChunkCount     int        `gorm:"not null;default:0"`
	Error          string     `gorm:"type:text"`
	StartedAt      time.Time  `gorm:"autoCreateTime"`
	ActivatedAt    *time.Time `gorm:""`
}

func (IndexBuild) TableName() string {
	return "index_builds"
}
