package store_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autogmail/engine/internal/models"
	"github.com/autogmail/engine/pkg/store"
)

func getTestStore(t *testing.T) *store.TenantStore {
	t.Helper()

	connString := os.Getenv("DATABASE_URL")
	if connString == "" {
		t.Skip("DATABASE_URL not set")
	}

	s, err := store.NewWithConfig(store.TenantStoreConfig{
		ConnString: connString,
		TableName:  "test_chunks",
		VectorDim:  3,
	})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func testChunks(prefix string, n int) []models.Chunk {
	chunks := make([]models.Chunk, 0, n)
	for i := 0; i < n; i++ {
		chunks = append(chunks, models.Chunk{
			ID:        fmt.Sprintf("%s_%d", prefix, i),
			Text:      fmt.Sprintf("chunk %d", i),
			Metadata:  map[string]interface{}{"source": "test"},
			Embedding: []float32{float32(i), 1, 0},
		})
	}
	return chunks
}

func TestTenantStore_UpsertAndQuery(t *testing.T) {
	s := getTestStore(t)
	ctx := context.Background()

	err := s.Upsert(ctx, "tenant-a", testChunks("doc", 3))
	require.NoError(t, err)

	result, err := s.Query(ctx, "tenant-a", []float32{0, 1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, result.Chunks, 2)
	assert.Equal(t, "chunk 0", result.Chunks[0].Text)
	assert.Equal(t, "test", result.Chunks[0].Metadata["source"])
}

func TestTenantStore_Isolation(t *testing.T) {
	s := getTestStore(t)
	ctx := context.Background()

	err := s.Upsert(ctx, "tenant-b", testChunks("iso", 2))
	require.NoError(t, err)

	// A different tenant never sees tenant-b's chunks.
	result, err := s.Query(ctx, "tenant-nobody", []float32{0, 1, 0}, 10)
	require.NoError(t, err)
	assert.Empty(t, result.Chunks)
}

func TestTenantStore_IdempotentUpsert(t *testing.T) {
	s := getTestStore(t)
	ctx := context.Background()

	chunks := testChunks("repeat", 3)
	require.NoError(t, s.Upsert(ctx, "tenant-c", chunks))
	require.NoError(t, s.Upsert(ctx, "tenant-c", chunks))

	result, err := s.Query(ctx, "tenant-c", []float32{0, 1, 0}, 100)
	require.NoError(t, err)
	assert.Len(t, result.Chunks, 3)
}

func TestTenantStore_EmptyUpsert(t *testing.T) {
	s := getTestStore(t)
	assert.NoError(t, s.Upsert(context.Background(), "tenant-d", nil))
}
