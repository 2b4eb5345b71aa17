package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/abiiranathan/pdfterms/alg"
	"github.com/abiiranathan/pdfterms/embed"
	"github.com/abiiranathan/pdfterms/match"
)

// SemanticQueryMatches reports whether pageText is similar to every group
// of query. A group is represented by its terms joined with spaces and
// matches when the cosine similarity of its embedding and the page's
// embedding is at least threshold.
//
// A query with no groups matches. A group with no terms or an empty page
// never matches. Embedding failures are returned wrapped in
// ErrSemanticUnavailable, even when the answer does not depend on them.
func SemanticQueryMatches(ctx context.Context, emb embed.Embedder, pageText string, query match.Query, threshold float64) (bool, error) {
	scorer, err := newSemanticScorer(ctx, emb, query, threshold)
	if err != nil {
		return false, err
	}
	return scorer.matches(ctx, pageText)
}

// availabilityText is embedded when a query has no group text, so every
// semantic search calls the backend at least once.
const availabilityText = "availability check"

// semanticScorer holds the group embeddings of one query so each group is
// embedded once per search rather than once per page.
type semanticScorer struct {
	embedder  embed.Embedder
	groups    [][]float32
	threshold float64

	// A group without terms can never match, so no page can.
	impossible bool
}

func newSemanticScorer(ctx context.Context, emb embed.Embedder, query match.Query, threshold float64) (*semanticScorer, error) {
	emb, err := embed.Resolve(emb)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSemanticUnavailable, err)
	}

	s := &semanticScorer{embedder: emb, threshold: threshold}
	texts := make([]string, 0, len(query))
	for _, group := range query {
		terms := group.Terms()
		if len(terms) == 0 {
			s.impossible = true
			continue
		}
		texts = append(texts, strings.Join(terms, " "))
	}

	// With no group text to embed the result does not depend on the
	// backend, but a backend that cannot embed is still reported.
	if len(texts) == 0 {
		if _, err := emb.EmbedText(ctx, availabilityText); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSemanticUnavailable, err)
		}
		return s, nil
	}

	s.groups, err = emb.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %w", ErrSemanticUnavailable, err)
	}
	if len(s.groups) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d groups", ErrSemanticUnavailable, len(s.groups), len(texts))
	}
	return s, nil
}

func (s *semanticScorer) matches(ctx context.Context, pageText string) (bool, error) {
	if s.impossible {
		return false, nil
	}
	if len(s.groups) == 0 {
		return true, nil
	}
	if strings.TrimSpace(pageText) == "" {
		return false, nil
	}

	page, err := s.embedder.EmbedText(ctx, pageText)
	if err != nil {
		return false, fmt.Errorf("%w: embedding page: %w", ErrSemanticUnavailable, err)
	}

	for _, group := range s.groups {
		if alg.CosineSimilarity(page, group) < s.threshold {
			return false, nil
		}
	}
	return true, nil
}
