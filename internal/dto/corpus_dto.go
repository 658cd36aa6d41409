package dto

import (
	"time"

	"github.com/google/uuid"
)

type CorpusStatusResponse struct {
	Ready          bool       `json:"ready"`
	BuildId        *uuid.UUID `json:"build_id,omitempty"`
	Status         string     `json:"status,omitempty"`
	EmbeddingModel string     `json:"embedding_model,omitempty"`
	Documents      int        `json:"documents"`
	Chunks         int64      `json:"chunks"`
	ActivatedAt    *time.Time `json:"activated_at,omitempty"`

	// Most recent build attempt when it is not the serving build.
	LastBuildStatus string `json:"last_build_status,omitempty"`
	LastBuildError  string `json:"last_build_error,omitempty"`
}

type ReindexResponse struct {
	Enqueued bool `json:"enqueued"`
}

// ReindexCorpusMessage is the queue payload that triggers a full rebuild.
type ReindexCorpusMessage struct {
	RequestedAt time.Time `json:"requested_at"`
}
