package oracle

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAICompactor implements CompactionOracle via OpenAI chat completions
type OpenAICompactor struct {
	client openai.Client
	model  string
}

// NewOpenAICompactor creates a new OpenAI compaction oracle
func NewOpenAICompactor(apiKey, model string) *OpenAICompactor {
	return &OpenAICompactor{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// Generate runs a single completion for the given prompt
func (c *OpenAICompactor) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		// Temperature 0 is a deliberate setting, not an absent one
		Temperature: openai.Float(opts.Temperature),
	}

	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}

	response, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("compaction call failed: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned")
	}

	return response.Choices[0].Message.Content, nil
}
