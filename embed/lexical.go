package embed

import (
	"context"

	"github.com/abiiranathan/pdfterms/alg"
	"github.com/abiiranathan/pdfterms/nlp"
)

// Lexical is an offline embedder. A text's vector is the hashed term
// frequency of its normalized tokens, so cosine similarity measures
// shared vocabulary rather than meaning.
type Lexical struct {
	normalizer *nlp.Normalizer
	dims       int
}

// NewLexical creates a lexical embedder for cfg.Language with
// cfg.Dimensions (DefaultDimensions if unset).
func NewLexical(cfg Config) *Lexical {
	dims := cfg.Dimensions
	if dims <= 0 {
		dims = DefaultDimensions
	}

	opts := []nlp.Option{}
	if cfg.Language != "" {
		opts = append(opts, nlp.WithLanguage(cfg.Language))
	}

	return &Lexical{
		normalizer: nlp.NewNormalizer(opts...),
		dims:       dims,
	}
}

func (e *Lexical) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tokens := e.normalizer.Tokens(text)
	return alg.HashVector(alg.TermFrequency(tokens), e.dims), nil
}

func (e *Lexical) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.EmbedText(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}
