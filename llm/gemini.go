package llm

import (
	"context"
	"fmt"
	"math"
	"strings"

	"legalmitra-backend/logger"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	DefaultModel          = "gemini-2.5-flash"
	DefaultEmbeddingModel = "text-embedding-004"
)

// Gemini implements Generator and Embedder on top of the genai client
type Gemini struct {
	client         *genai.Client
	model          string
	embeddingModel string
	temperature    *float32
	log            *logger.Logger
}

// GeminiOption is a functional option for Gemini
type GeminiOption func(*Gemini)

// GeminiWithModel sets the generation model name
func GeminiWithModel(name string) GeminiOption {
	return func(g *Gemini) {
		if name != "" {
			g.model = name
		}
	}
}

// GeminiWithEmbeddingModel sets the embedding model name
func GeminiWithEmbeddingModel(name string) GeminiOption {
	return func(g *Gemini) {
		if name != "" {
			g.embeddingModel = name
		}
	}
}

// GeminiWithTemperature sets the sampling temperature
func GeminiWithTemperature(t float32) GeminiOption {
	return func(g *Gemini) {
		g.temperature = &t
	}
}

// GeminiWithLogger sets the logger
func GeminiWithLogger(l *logger.Logger) GeminiOption {
	return func(g *Gemini) {
		g.log = l
	}
}

// NewGemini creates a genai client for the given API key
func NewGemini(ctx context.Context, apiKey string, opts ...GeminiOption) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set: %w", ErrNotConfigured)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	g := &Gemini{
		client:         client,
		model:          DefaultModel,
		embeddingModel: DefaultEmbeddingModel,
		log:            logger.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Close releases the underlying client
func (g *Gemini) Close() error {
	return g.client.Close()
}

// Generate sends one prompt and returns the concatenated candidate text
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.model)
	if g.temperature != nil {
		model.SetTemperature(*g.temperature)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	return extractText(resp, g.log)
}

// Embed returns a unit-normalised embedding of text
func (g *Gemini) Embed(ctx context.Context, text string) ([]float32, error) {
	em := g.client.EmbeddingModel(g.embeddingModel)
	em.TaskType = genai.TaskTypeRetrievalQuery

	resp, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if resp == nil || resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, ErrEmptyResponse
	}

	return normalize(resp.Embedding.Values), nil
}

// EmbedDocument embeds text that will be stored in the reference library
func (g *Gemini) EmbedDocument(ctx context.Context, title, text string) ([]float32, error) {
	em := g.client.EmbeddingModel(g.embeddingModel)
	em.TaskType = genai.TaskTypeRetrievalDocument

	resp, err := em.EmbedContentWithTitle(ctx, title, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if resp == nil || resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, ErrEmptyResponse
	}

	return normalize(resp.Embedding.Values), nil
}

// extractText checks the response for blocks and empty output and joins
// the text parts of every candidate
func extractText(resp *genai.GenerateContentResponse, log *logger.Logger) (string, error) {
	if resp == nil {
		return "", ErrNoCandidates
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", fmt.Errorf("%w: %s", ErrBlocked, resp.PromptFeedback.BlockReason)
	}

	if len(resp.Candidates) == 0 {
		return "", ErrNoCandidates
	}

	var b strings.Builder
	for i, candidate := range resp.Candidates {
		if candidate == nil {
			continue
		}
		if candidate.FinishReason != genai.FinishReasonUnspecified && candidate.FinishReason != genai.FinishReasonStop {
			log.Warn("candidate finished early", "candidate", i, "finish_reason", candidate.FinishReason.String())
		}

		if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
			return "", fmt.Errorf("%w (finish reason: %s)", ErrEmptyResponse, candidate.FinishReason)
		}

		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}

	result := b.String()
	if strings.TrimSpace(result) == "" {
		return "", ErrEmptyResponse
	}

	return result, nil
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return v
	}

	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
