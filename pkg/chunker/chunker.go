package chunker

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/autogmail/engine/internal/models"
	"github.com/autogmail/engine/internal/types"
)

const (
	DefaultWindowSize = 1000
	DefaultOverlap    = 100
)

type Chunker struct {
	config types.ChunkerConfig
}

func NewWithConfig(config types.ChunkerConfig) (*Chunker, error) {
	if config.WindowSize == 0 {
		config.WindowSize = DefaultWindowSize
	}
	if config.Overlap == 0 {
		config.Overlap = DefaultOverlap
	}
	if config.WindowSize <= config.Overlap {
		// A non-positive stride would never terminate.
		return nil, fmt.Errorf("window size %d must be greater than overlap %d", config.WindowSize, config.Overlap)
	}
	if config.Overlap < 0 {
		return nil, fmt.Errorf("overlap must not be negative, got %d", config.Overlap)
	}
	return &Chunker{config: config}, nil
}

func New() *Chunker {
	c, _ := NewWithConfig(types.ChunkerConfig{})
	return c
}

// Split tiles the text left-to-right into overlapping fixed-size windows.
// With a prefix, chunk ids are "<prefix>_<i>" so re-splitting the same
// source produces the same ids and re-indexing overwrites in place. Without
// a prefix each chunk gets a fresh random id. Empty text yields no chunks.
func (c *Chunker) Split(source models.SourceText) []models.Chunk {
	if source.Text == "" {
		return nil
	}
	stride := c.config.WindowSize - c.config.Overlap

	var chunks []models.Chunk
	for start, i := 0, 0; ; start, i = start+stride, i+1 {
		end := start + c.config.WindowSize
		if end > len(source.Text) {
			end = len(source.Text)
		}

		id := uuid.New().String()
		if source.IDPrefix != "" {
			id = fmt.Sprintf("%s_%d", source.IDPrefix, i)
		}

		chunks = append(chunks, models.Chunk{
			ID:       id,
			Text:     source.Text[start:end],
			Metadata: source.Metadata,
		})

		// Once a window reaches the end of the text, later starts would
		// only repeat a suffix of this window.
		if start+c.config.WindowSize >= len(source.Text) {
			return chunks
		}
	}
}
