package store

import (
	"context"
	"fmt"

	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/autogmail/engine/internal/models"
	"github.com/autogmail/engine/internal/types"
)

type TenantStoreConfig struct {
	ConnString string
	TableName  string
	VectorDim  int
}

// TenantStore keeps one logical chunk collection per tenant in a shared
// pgvector table keyed by (tenant_id, id). Every read and write is scoped
// by tenant id, so no cross-tenant visibility is possible and collections
// come into existence on first write with no setup step.
type TenantStore struct {
	config TenantStoreConfig
	pool   *pgxpool.Pool
}

var _ types.TenantStore = (*TenantStore)(nil)

func NewWithConfig(config TenantStoreConfig) (*TenantStore, error) {
	if config.TableName == "" {
		config.TableName = "chunks"
	}
	if config.VectorDim == 0 {
		config.VectorDim = 768 // nomic-embed-text
	}

	pool, err := pgxpool.New(context.Background(), config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	ts := &TenantStore{
		config: config,
		pool:   pool,
	}

	if err := ts.initialize(); err != nil {
		pool.Close()
		return nil, err
	}

	return ts, nil
}

func (ts *TenantStore) initialize() error {
	ctx := context.Background()

	_, err := ts.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return fmt.Errorf("failed to create vector extension: %v", err)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			tenant_id TEXT NOT NULL,
			id TEXT NOT NULL,
			content TEXT,
			metadata JSONB,
			embedding vector(%d),
			PRIMARY KEY (tenant_id, id)
		)`, ts.config.TableName, ts.config.VectorDim)

	_, err = ts.pool.Exec(ctx, createTable)
	if err != nil {
		return fmt.Errorf("failed to create table: %v", err)
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_embedding_idx
		ON %s
		USING ivfflat (embedding vector_cosine_ops)
		WITH (lists = 100)`,
		ts.config.TableName, ts.config.TableName)

	_, err = ts.pool.Exec(ctx, createIndex)
	if err != nil {
		return fmt.Errorf("failed to create index: %v", err)
	}

	return nil
}

// Upsert writes the chunks into the tenant's collection, overwriting any
// entry that already carries the same id. Zero chunks is a no-op.
func (ts *TenantStore) Upsert(ctx context.Context, tenantID string, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := ts.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	stmt := fmt.Sprintf(`
		INSERT INTO %s (tenant_id, id, content, metadata, embedding)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tenant_id, id) DO UPDATE SET
			content = EXCLUDED.content,
			metadata = EXCLUDED.metadata,
			embedding = EXCLUDED.embedding`,
		ts.config.TableName)

	for _, chunk := range chunks {
		_, err = tx.Exec(ctx, stmt,
			tenantID,
			chunk.ID,
			sanitizeUTF8(chunk.Text),
			chunk.Metadata,
			pgvector.NewVector(chunk.Embedding),
		)
		if err != nil {
			return fmt.Errorf("failed to insert chunk %s: %v", chunk.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

// Query returns the k chunks in the tenant's collection nearest to the
// given embedding by cosine distance. Ties break on chunk id so repeated
// queries against an unchanged collection are stable. A tenant with no
// indexed chunks yields an empty result.
func (ts *TenantStore) Query(ctx context.Context, tenantID string, embedding []float32, k int) (models.RetrievalResult, error) {
	var result models.RetrievalResult

	query := fmt.Sprintf(`
		SELECT id, content, metadata, embedding <=> $2 AS distance
		FROM %s
		WHERE tenant_id = $1
		ORDER BY embedding <=> $2, id
		LIMIT $3`,
		ts.config.TableName)

	rows, err := ts.pool.Query(ctx, query, tenantID, pgvector.NewVector(embedding), k)
	if err != nil {
		return result, fmt.Errorf("failed to query chunks: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var chunk models.ScoredChunk
		var distance float64
		err := rows.Scan(
			&chunk.ID,
			&chunk.Text,
			&chunk.Metadata,
			&distance,
		)
		if err != nil {
			return result, fmt.Errorf("failed to scan row: %v", err)
		}
		chunk.Distance = float32(distance)
		result.Chunks = append(result.Chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return result, fmt.Errorf("failed to read rows: %v", err)
	}

	return result, nil
}

func (ts *TenantStore) Close() {
	if ts.pool != nil {
		ts.pool.Close()
	}
}

func sanitizeUTF8(s string) string {
	if !utf8.ValidString(s) {
		v := make([]rune, 0, len(s))
		for i, r := range s {
			if r == utf8.RuneError {
				_, size := utf8.DecodeRuneInString(s[i:])
				if size == 1 {
					continue
				}
			}
			v = append(v, r)
		}
		return string(v)
	}
	return s
}
