package config

import (
	"fmt"
	"net/url"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	if c.Embedding.BaseURL == "" {
		errors = append(errors, ValidationError{
			Field:   "embedding.base_url",
			Message: "embedding server URL is required",
		})
	} else if _, err := url.Parse(c.Embedding.BaseURL); err != nil {
		errors = append(errors, ValidationError{
			Field:   "embedding.base_url",
			Message: "invalid embedding server URL",
		})
	}

	if c.Embedding.RateLimit <= 0 {
		errors = append(errors, ValidationError{
			Field:   "embedding.rate_limit",
			Message: "rate_limit must be positive",
		})
	}

	if c.LLM.MaxTokens < 1 || c.LLM.MaxTokens > 4096 {
		errors = append(errors, ValidationError{
			Field:   "llm.max_tokens",
			Message: "max_tokens must be between 1 and 4096",
		})
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 1 {
		errors = append(errors, ValidationError{
			Field:   "llm.temperature",
			Message: "temperature must be between 0 and 1",
		})
	}

	if c.Database.URL != "" {
		if _, err := url.Parse(c.Database.URL); err != nil {
			errors = append(errors, ValidationError{
				Field:   "database.url",
				Message: "invalid database URL",
			})
		}
	}

	if c.Database.VectorDim < 1 {
		errors = append(errors, ValidationError{
			Field:   "database.vector_dim",
			Message: "vector_dim must be positive",
		})
	}

	if c.Chunker.WindowSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "chunker.window_size",
			Message: "window_size must be positive",
		})
	}

	if c.Chunker.Overlap < 0 || c.Chunker.Overlap >= c.Chunker.WindowSize {
		errors = append(errors, ValidationError{
			Field:   "chunker.overlap",
			Message: "overlap must be non-negative and less than window_size",
		})
	}

	if c.Retrieval.TopK < 1 {
		errors = append(errors, ValidationError{
			Field:   "retrieval.top_k",
			Message: "top_k must be positive",
		})
	}

	if c.Sync.MinBodyLength < 0 {
		errors = append(errors, ValidationError{
			Field:   "sync.min_body_length",
			Message: "min_body_length must not be negative",
		})
	}

	return errors
}
