package embedding

import "context"

// Task types passed to providers that distinguish document vs query vectors.
const (
	TaskDocument = "RETRIEVAL_DOCUMENT"
	TaskQuery    = "RETRIEVAL_QUERY"
)

// Provider turns text into a fixed-dimension vector. Implementations must
// return unit-normalized vectors so cosine distance in pgvector is accurate.
type Provider interface {
	Generate(ctx context.Context, text string, taskType string) ([]float32, error)
	// Dimension returns the vector width the provider produces.
	Dimension() int
}
