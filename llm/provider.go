// Package llm wraps the hosted text-generation and embedding models.
package llm

import (
	"context"
	"errors"
)

var (
	ErrBlocked       = errors.New("prompt blocked by the model")
	ErrNoCandidates  = errors.New("model returned no candidates")
	ErrEmptyResponse = errors.New("model returned empty content")
	ErrNotConfigured = errors.New("model client not configured")
)

// Generator turns a prompt into text. Implementations must honour ctx
// cancellation and deadlines.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Embedder turns text into a vector for similarity search
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// GeneratorFunc adapts a plain function to the Generator interface
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
