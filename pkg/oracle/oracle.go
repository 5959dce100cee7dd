// Package oracle wraps the external embedding and text-compaction services.
// Both are black boxes to the rest of the system: the core only sees the
// returned vectors and text.
package oracle

import "context"

// EmbeddingOracle generates vector embeddings from text
type EmbeddingOracle interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// GenerateOptions configures a single compaction call. Temperature is
// always sent as given, zero included; a MaxTokens of 0 leaves the
// provider default in place.
type GenerateOptions struct {
	Temperature float64
	MaxTokens   int
}

// CompactionOracle produces generated or compressed text from a prompt
type CompactionOracle interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}
