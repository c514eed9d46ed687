package types

import (
	"context"

	"github.com/autogmail/engine/internal/models"
)

// Core interfaces
type Embedder interface {
	// Available reports whether the embedding backend was reachable at
	// startup. The flag is decided once and never changes during the
	// process lifetime.
	Available() bool
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

type TenantStore interface {
	Upsert(ctx context.Context, tenantID string, chunks []models.Chunk) error
	Query(ctx context.Context, tenantID string, embedding []float32, k int) (models.RetrievalResult, error)
	Close()
}

type Generator interface {
	Draft(ctx context.Context, emailBody string, contextChunks []string) (string, error)
}

type ChunkerConfig struct {
	WindowSize int
	Overlap    int
}

type EmbedderConfig struct {
	BaseURL   string
	Model     string
	RateLimit float64
}

type DatabaseConfig struct {
	URL       string
	TableName string
	VectorDim int
}
