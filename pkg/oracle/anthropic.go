package oracle

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicDefaultMaxTokens = 4096

// AnthropicCompactor implements CompactionOracle via the Anthropic Messages API
type AnthropicCompactor struct {
	client anthropic.Client
	model  string
}

// NewAnthropicCompactor creates a new Anthropic compaction oracle
func NewAnthropicCompactor(apiKey, model string) *AnthropicCompactor {
	return &AnthropicCompactor{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// Generate runs a single message turn for the given prompt
func (c *AnthropicCompactor) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicDefaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		// Temperature 0 is a deliberate setting, not an absent one
		Temperature: anthropic.Float(opts.Temperature),
	}

	response, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("compaction call failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("no text content returned")
	}

	return sb.String(), nil
}
