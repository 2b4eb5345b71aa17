// Package search scans a document page by page for pages that satisfy a
// query of term groups under exact, fuzzy or semantic matching.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/abiiranathan/pdfterms/document"
	"github.com/abiiranathan/pdfterms/embed"
	"github.com/abiiranathan/pdfterms/match"
	"github.com/abiiranathan/pdfterms/metrics"
	"golang.org/x/sync/errgroup"
)

// Normalizer rewrites text before exact and fuzzy comparison.
// *nlp.Normalizer implements it.
type Normalizer interface {
	Normalize(text string) string
}

// Options select how one search compares text.
type Options struct {
	// Mode is the matching strategy. Nil means exact.
	Mode match.Mode

	// Normalize page text and terms before comparison.
	// Ignored in semantic mode.
	Normalize bool
}

// Engine runs searches. It is safe for concurrent use; the normalizer and
// embedder it holds are shared by every search.
type Engine struct {
	normalizer  Normalizer
	embedder    embed.Embedder
	concurrency int
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

type Option func(*Engine)

// WithNormalizer sets the normalizer used when Options.Normalize is set.
func WithNormalizer(n Normalizer) Option {
	return func(e *Engine) {
		e.normalizer = n
	}
}

// WithEmbedder sets the semantic backend. Without one semantic searches
// fail with ErrSemanticUnavailable.
func WithEmbedder(emb embed.Embedder) Option {
	return func(e *Engine) {
		e.embedder = emb
	}
}

// WithConcurrency bounds the number of pages evaluated at once.
// Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// New creates an Engine. By default it evaluates runtime.NumCPU() pages at
// once and has no normalizer or embedder.
func New(options ...Option) *Engine {
	e := &Engine{
		concurrency: runtime.NumCPU(),
		logger:      slog.Default().With("component", "search"),
	}

	for _, option := range options {
		option(e)
	}
	return e
}

// pageFunc decides whether one page matches and returns the text it compared.
type pageFunc func(ctx context.Context, text string) (compared string, ok bool, err error)

// Search evaluates query against every page of doc and returns the matching
// pages in ascending page order. Pages are evaluated concurrently; ctx is
// checked before each page starts.
//
// No matching page is an empty ResultSet, not an error. A semantic search
// whose backend cannot embed fails with ErrSemanticUnavailable. A canceled
// search returns ctx.Err().
func (e *Engine) Search(ctx context.Context, doc document.Source, query match.Query, opts Options) (*ResultSet, error) {
	if doc == nil {
		return nil, ErrNoDocument
	}

	mode := opts.Mode
	if mode == nil {
		mode = match.Exact{}
	}
	if err := mode.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	numPages := doc.NumPages()
	query = query.Clean()

	result, err := e.scan(ctx, doc, query, mode, opts.Normalize)
	e.observe(mode, result, err, numPages, time.Since(start))
	if err != nil {
		return nil, err
	}

	e.logger.Debug("search finished",
		"mode", mode.String(),
		"normalize", opts.Normalize,
		"groups", len(query),
		"pages", numPages,
		"matched", result.Len(),
		"elapsed", time.Since(start))
	return result, nil
}

func (e *Engine) scan(ctx context.Context, doc document.Source, query match.Query, mode match.Mode, normalize bool) (*ResultSet, error) {
	evaluate, err := e.pageFunc(ctx, query, mode, normalize)
	if err != nil {
		return nil, err
	}

	numPages := doc.NumPages()
	matched := make([]bool, numPages)
	texts := make([]string, numPages)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i := range numPages {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			// Extraction failures surface as empty text, which simply doesn't match.
			compared, ok, err := evaluate(gctx, doc.PageText(i))
			if err != nil {
				return fmt.Errorf("page %d: %w", i, err)
			}

			// Each goroutine owns its own slot.
			matched[i] = ok
			texts[i] = compared
			return nil
		})
	}

	err = g.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, err
	}

	pages := make([]Page, 0, numPages)
	for i := range numPages {
		if matched[i] {
			pages = append(pages, Page{Index: i, Text: texts[i]})
		}
	}
	return newResultSet(pages), nil
}

func (e *Engine) pageFunc(ctx context.Context, query match.Query, mode match.Mode, normalize bool) (pageFunc, error) {
	if sem, ok := mode.(match.Semantic); ok {
		scorer, err := newSemanticScorer(ctx, e.embedder, query, sem.Threshold)
		if err != nil {
			return nil, err
		}
		return func(ctx context.Context, text string) (string, bool, error) {
			ok, err := scorer.matches(ctx, text)
			return text, ok, err
		}, nil
	}

	matcher, normalizer, err := e.compile(query, mode, normalize)
	if err != nil {
		return nil, err
	}

	return func(_ context.Context, text string) (string, bool, error) {
		if normalizer != nil {
			text = normalizer.Normalize(text)
		}
		return text, matcher.Matches(text), nil
	}, nil
}

// compile builds the exact or fuzzy matcher of a search. The returned
// normalizer is nil unless page text must be normalized before matching.
func (e *Engine) compile(query match.Query, mode match.Mode, normalize bool) (*match.Matcher, Normalizer, error) {
	var compileOpts []match.CompileOption
	normalizer := e.normalizer
	if !normalize {
		normalizer = nil
	} else if normalizer == nil {
		e.logger.Warn("normalization requested without a normalizer, comparing raw text")
	}
	if normalizer != nil {
		compileOpts = append(compileOpts, match.WithTermTransform(normalizer.Normalize))
		e.logEmptiedGroups(query, normalizer)
	}

	matcher, err := match.Compile(query, mode, compileOpts...)
	if err != nil {
		return nil, nil, err
	}
	return matcher, normalizer, nil
}

// logEmptiedGroups logs groups whose terms all normalize to nothing, such
// as numbers or stop words. Such a group matches no page.
func (e *Engine) logEmptiedGroups(query match.Query, normalizer Normalizer) {
	for i, group := range query {
		terms := group.Terms()
		if len(terms) == 0 {
			continue
		}

		emptied := true
		for _, term := range terms {
			if strings.TrimSpace(normalizer.Normalize(term)) != "" {
				emptied = false
				break
			}
		}
		if emptied {
			e.logger.Debug("group has no terms left after normalization, no page can match",
				"group", i+1, "terms", terms)
		}
	}
}

// Highlighter returns a function locating the terms of query in page text
// returned by a search run with the same query and opts. Terms are located
// the way that search compared them: normalized when opts.Normalize is set
// and by token similarity in fuzzy mode. Semantic searches have no term
// level hits, so their pages get the exact occurrences of the raw terms.
func (e *Engine) Highlighter(query match.Query, opts Options) (func(text string) []match.Span, error) {
	mode := opts.Mode
	if mode == nil {
		mode = match.Exact{}
	}
	if _, ok := mode.(match.Semantic); ok {
		mode, opts.Normalize = match.Exact{}, false
	}

	matcher, _, err := e.compile(query.Clean(), mode, opts.Normalize)
	if err != nil {
		return nil, err
	}
	return matcher.Highlight, nil
}

func (e *Engine) observe(mode match.Mode, result *ResultSet, err error, pages int, elapsed time.Duration) {
	outcome := metrics.OutcomeMatch
	switch {
	case errors.Is(err, ErrSemanticUnavailable):
		outcome = metrics.OutcomeUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		outcome = metrics.OutcomeCanceled
	case err != nil:
		outcome = metrics.OutcomeError
	case result.Len() == 0:
		outcome = metrics.OutcomeNoMatch
	}

	if err != nil && outcome != metrics.OutcomeCanceled {
		e.logger.Warn("search failed", "mode", mode.String(), "err", err)
	}

	scanned := pages
	if err != nil {
		scanned = 0
	}
	e.metrics.ObserveSearch(mode.Name(), outcome, scanned, result.Len(), elapsed)
}
