package dto

import (
	"time"

	"github.com/google/uuid"
)

type SendChatRequest struct {
	SessionId uuid.UUID `json:"session_id" validate:"required"`
	Message   string    `json:"message" validate:"required"`
	// ActiveStep optionally pins the turn to a step other than the
	// session's current one. Zero means "use the session's active step".
	ActiveStep int `json:"active_step,omitempty" validate:"omitempty,min=1,max=9"`
}

type ChatTurnDTO struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Step      int       `json:"step"`
	CreatedAt time.Time `json:"created_at"`
}

// CitationDTO identifies a corpus excerpt the reply drew on. Citations are
// response-only and never stored.
type CitationDTO struct {
	SourceId   string  `json:"source_id"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
}

type SendChatResponse struct {
	SessionId uuid.UUID     `json:"session_id"`
	Sent      *ChatTurnDTO  `json:"sent"`
	Reply     *ChatTurnDTO  `json:"reply"`
	Citations []CitationDTO `json:"citations,omitempty"`
	// Empty flags a generation that completed cleanly with zero fragments.
	Empty bool `json:"empty,omitempty"`
}

type ChatHistoryResponse struct {
	SessionId uuid.UUID     `json:"session_id"`
	Turns     []ChatTurnDTO `json:"turns"`
}
