package embed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// OpenAI embeds text through an OpenAI-compatible embeddings API
// (OpenAI, Ollama, LocalAI, vLLM).
type OpenAI struct {
	embedder embeddings.Embedder
	logger   *slog.Logger
}

// NewOpenAI creates an OpenAI-compatible embedder. No request is made until
// the first embedding.
func NewOpenAI(cfg Config) (*OpenAI, error) {
	token := cfg.Token
	if token == "" {
		// Local OpenAI-compatible services don't require authentication
		token = "none"
	}

	opts := []openai.Option{
		openai.WithToken(token),
		openai.WithEmbeddingModel(cfg.Model),
	}
	if cfg.Host != "" {
		opts = append(opts, openai.WithBaseURL(cfg.Host))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("embed: creating openai client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("embed: creating embedder: %w", err)
	}

	return &OpenAI{
		embedder: embedder,
		logger:   slog.Default().With("component", "openai-embedder", "model", cfg.Model),
	}, nil
}

// EmbedText generates a vector embedding for a single text string.
func (e *OpenAI) EmbedText(ctx context.Context, text string) ([]float32, error) {
	e.logger.Debug("generating embedding for single text", "length", len(text))

	vectors, err := e.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		e.logger.Error("failed to generate embedding", "err", err)
		return nil, err
	}

	if len(vectors) == 0 {
		return nil, fmt.Errorf("embed: backend returned no embedding")
	}
	return vectors[0], nil
}

// EmbedTexts generates vector embeddings for multiple texts in a batch.
func (e *OpenAI) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.logger.Debug("generating embeddings for texts", "count", len(texts))

	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, err
	}

	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embed: backend returned %d embeddings for %d texts", len(vectors), len(texts))
	}
	return vectors, nil
}
