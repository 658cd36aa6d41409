package entity

import (
	"time"

	"github.com/google/uuid"
)

// Index build lifecycle. A build becomes visible to retrieval only once
// activated, and at most one build is active at a time.
const (
	BuildStatusBuilding   = "building"
	BuildStatusActive     = "active"
	BuildStatusFailed     = "failed"
	BuildStatusSuperseded = "superseded"
)

type IndexBuild struct {
	Id             uuid.UUID
	Status         string
	EmbeddingModel string
	Dimension      int
	DocumentCount  int
	ChunkCount     int
	Error          string
	StartedAt      time.Time
	ActivatedAt    *time.Time
}

// CorpusChunk is one embedded slice of a corpus document, tagged with the
// build that produced it.
type CorpusChunk struct {
	Id             uuid.UUID
	BuildId        uuid.UUID
	SourceId       string
	ChunkIndex     int
	Content        string
	EmbeddingValue []float32
	CreatedAt      time.Time
}
