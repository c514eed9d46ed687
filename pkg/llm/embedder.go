package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tmc/langchaingo/llms/ollama"
	"golang.org/x/time/rate"

	"github.com/autogmail/engine/internal/types"
)

// Embedder wraps an Ollama embedding model. Availability is probed once at
// construction; an unreachable server leaves the embedder in a permanent
// degraded state instead of failing the process.
type Embedder struct {
	Config    types.EmbedderConfig
	embed     *ollama.LLM
	limiter   *rate.Limiter
	available bool
}

func NewEmbedderWithConfig(config types.EmbedderConfig) *Embedder {
	if config.Model == "" {
		config.Model = "nomic-embed-text:latest"
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434"
	}
	if config.RateLimit == 0 {
		config.RateLimit = 4 // embedding requests per second
	}

	emb, err := ollama.New(
		ollama.WithModel(config.Model),
		ollama.WithServerURL(config.BaseURL),
	)

	available := err == nil && ping(config.BaseURL)

	return &Embedder{
		Config:    config,
		embed:     emb,
		limiter:   rate.NewLimiter(rate.Limit(config.RateLimit), 1),
		available: available,
	}
}

func NewEmbedder() *Embedder {
	return NewEmbedderWithConfig(types.EmbedderConfig{})
}

// Available reports the startup probe result. The flag never changes during
// the process lifetime.
func (e *Embedder) Available() bool {
	return e.available
}

func (e *Embedder) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if !e.available {
		return nil, fmt.Errorf("embedding model is not available")
	}
	if len(texts) == 0 {
		return nil, nil
	}
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	embeddings, err := e.embed.CreateEmbedding(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(embeddings))
	}
	return embeddings, nil
}

// ping checks that the Ollama server answers at all.
func ping(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/api/tags")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
