package rag

import (
	"context"
	"fmt"
	"log"

	"github.com/autogmail/engine/internal/models"
	"github.com/autogmail/engine/internal/types"
	"github.com/autogmail/engine/pkg/chunker"
)

// Indexer turns a source text into embedded chunks inside one tenant's
// collection.
type Indexer struct {
	chunker  *chunker.Chunker
	embedder types.Embedder
	store    types.TenantStore
}

func NewIndexer(c *chunker.Chunker, embedder types.Embedder, store types.TenantStore) *Indexer {
	return &Indexer{
		chunker:  c,
		embedder: embedder,
		store:    store,
	}
}

// AddDocument chunks, embeds and upserts the source text into the tenant's
// collection and returns the number of chunks written. With the embedder in
// degraded mode nothing is indexed and the call reports zero chunks; callers
// treat zero as "not indexed", not as a failure.
//
// Re-invoking with the same id prefix and text overwrites the previous
// entries in place. A re-sync that produces fewer chunks leaves the stale
// trailing chunks of the longer version behind under their old ids.
func (ix *Indexer) AddDocument(ctx context.Context, tenantID string, source models.SourceText) (int, error) {
	if !ix.embedder.Available() {
		log.Printf("warning: embedding model unavailable, skipping indexing for tenant %s", tenantID)
		return 0, nil
	}

	chunks := ix.chunker.Split(source)
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := ix.embedder.CreateEmbedding(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to embed chunks: %w", err)
	}
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}

	if err := ix.store.Upsert(ctx, tenantID, chunks); err != nil {
		return 0, fmt.Errorf("failed to store chunks: %w", err)
	}

	return len(chunks), nil
}
