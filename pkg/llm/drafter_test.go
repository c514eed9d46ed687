package llm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/autogmail/engine/pkg/llm"
)

func TestNewDrafterWithConfig(t *testing.T) {
	config := llm.DrafterConfig{
		Model:       "testmodel",
		Temperature: 0.5,
		MaxTokens:   1000,
		BaseURL:     "http://localhost:1234",
	}
	drafter, err := llm.NewDrafterWithConfig(config)
	assert.NoError(t, err)
	assert.NotNil(t, drafter)
}

func TestNewDrafterWithConfig_Invalid(t *testing.T) {
	_, err := llm.NewDrafterWithConfig(llm.DrafterConfig{Temperature: 1.5})
	assert.Error(t, err)

	_, err = llm.NewDrafterWithConfig(llm.DrafterConfig{MaxTokens: -1})
	assert.Error(t, err)
}
