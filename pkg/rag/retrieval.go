package rag

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/autogmail/engine/internal/models"
	"github.com/autogmail/engine/internal/types"
)

// DefaultTopK is the number of chunks retrieved when the caller does not
// ask for a specific count.
const DefaultTopK = 3

// Retriever answers similarity queries against one tenant's collection.
type Retriever struct {
	embedder types.Embedder
	store    types.TenantStore
}

func NewRetriever(embedder types.Embedder, store types.TenantStore) *Retriever {
	return &Retriever{
		embedder: embedder,
		store:    store,
	}
}

// QuerySimilar embeds the query text and returns the k nearest chunks from
// the tenant's collection, nearest first. An empty query, an unknown tenant
// or a degraded embedder all yield an empty result rather than an error.
func (r *Retriever) QuerySimilar(ctx context.Context, tenantID, queryText string, k int) (models.RetrievalResult, error) {
	var empty models.RetrievalResult

	if !r.embedder.Available() {
		log.Printf("warning: embedding model unavailable, returning no context for tenant %s", tenantID)
		return empty, nil
	}
	if strings.TrimSpace(queryText) == "" {
		return empty, nil
	}
	if k <= 0 {
		k = DefaultTopK
	}

	vectors, err := r.embedder.CreateEmbedding(ctx, []string{queryText})
	if err != nil {
		return empty, fmt.Errorf("failed to embed query: %w", err)
	}

	return r.store.Query(ctx, tenantID, vectors[0], k)
}
