package models

// SourceText is raw text submitted for indexing, with optional provenance
// metadata and an optional id prefix used to derive deterministic chunk ids.
type SourceText struct {
	Text     string
	Metadata map[string]interface{}
	IDPrefix string
}

// Chunk is a contiguous slice of source text stored with its embedding.
// Re-upserting the same ID replaces the entry wholesale.
type Chunk struct {
	ID        string
	Text      string
	Metadata  map[string]interface{}
	Embedding []float32
}

// ScoredChunk is a chunk returned from a nearest-neighbor query together
// with its cosine distance from the query vector.
type ScoredChunk struct {
	Chunk
	Distance float32
}

// RetrievalResult is an ordered sequence of chunks, nearest first.
type RetrievalResult struct {
	Chunks []ScoredChunk
}

// Texts returns the chunk texts in result order, for use as prompt context.
func (r RetrievalResult) Texts() []string {
	texts := make([]string, 0, len(r.Chunks))
	for _, c := range r.Chunks {
		texts = append(texts, c.Text)
	}
	return texts
}
