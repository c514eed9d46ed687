package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

const defaultSystemTemplate = "You are an expert email drafting assistant for a company. " +
	"Your goal is to draft a reply to the customer's email based STRICTLY on the provided POLICY CONTEXT.\n\n" +
	"RULES:\n" +
	"1. Tone: Professional, helpful, and polite. Match the tone of the context if clear.\n" +
	"2. Content: Use ONLY the information in the Context. If the answer is not there, say you need to check with the team.\n" +
	"3. Commitments: DO NOT promise refunds or specific dates unless explicitly stated in the policy context.\n" +
	"4. Format: Return only the body of the email. No greetings like \"Here is the draft\"."

const defaultContextTemplate = "CONTEXT:\n%s\n\nCUSTOMER EMAIL:\n%s\n\nDRAFT REPLY:"

// DrafterConfig represents the configuration for a draft engine.
type DrafterConfig struct {
	Model           string
	Temperature     float64
	MaxTokens       int
	SystemTemplate  string
	ContextTemplate string
	BaseURL         string // Ollama server URL
}

// Drafter generates reply drafts grounded on retrieved policy context.
type Drafter struct {
	config DrafterConfig
	llm    llms.Model
}

// NewDrafterWithConfig creates a new Drafter with the given configuration.
func NewDrafterWithConfig(config DrafterConfig) (*Drafter, error) {
	if config.Model == "" {
		config.Model = "mistral"
	}
	if config.Temperature < 0 || config.Temperature > 1 {
		return nil, fmt.Errorf("temperature must be between 0 and 1")
	}
	if config.MaxTokens < 0 {
		return nil, fmt.Errorf("max tokens cannot be negative")
	} else if config.MaxTokens == 0 {
		config.MaxTokens = 2000
	}
	if config.SystemTemplate == "" {
		config.SystemTemplate = defaultSystemTemplate
	}
	if config.ContextTemplate == "" {
		config.ContextTemplate = defaultContextTemplate
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434"
	}

	llm, err := ollama.New(ollama.WithModel(config.Model),
		ollama.WithServerURL(config.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}

	return &Drafter{
		config: config,
		llm:    llm,
	}, nil
}

// Draft generates a reply to the cleaned email body using the supplied
// context chunks. The email body is forwarded verbatim into the prompt.
func (d *Drafter) Draft(ctx context.Context, emailBody string, contextChunks []string) (string, error) {
	contextText := strings.Join(contextChunks, "\n\n")
	prompt := fmt.Sprintf(d.config.ContextTemplate, contextText, emailBody)

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, d.config.SystemTemplate),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	response, err := d.llm.GenerateContent(ctx, content,
		llms.WithTemperature(d.config.Temperature),
		llms.WithMaxTokens(d.config.MaxTokens))
	if err != nil {
		return "", fmt.Errorf("draft error: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	return response.Choices[0].Content, nil
}
