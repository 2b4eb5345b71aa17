package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/abiiranathan/pdfterms/document"
	"github.com/abiiranathan/pdfterms/embed"
	"github.com/abiiranathan/pdfterms/match"
	"github.com/abiiranathan/pdfterms/metrics"
	"github.com/abiiranathan/pdfterms/nlp"
	"github.com/abiiranathan/pdfterms/search"
	"github.com/abiiranathan/pdfterms/terms"
)

// NewEngine builds the search engine described by config. The language
// model and the embedding backend are loaded on first use.
func NewEngine(config *Config, m *metrics.Metrics) *search.Engine {
	return search.New(
		search.WithConcurrency(config.MaxConcurrency),
		search.WithNormalizer(nlp.NewNormalizer(nlp.WithLanguage(config.Language))),
		search.WithEmbedder(embed.LazyFromConfig(config.EmbeddingConfig())),
		search.WithMetrics(m),
	)
}

// ParseGroups parses groups separated by ";" with terms separated by ",":
// "charging, charger; station".
func ParseGroups(s string) match.Query {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	var query match.Query
	for _, group := range strings.Split(s, ";") {
		query = append(query, terms.ParseGroup(group))
	}
	return query
}

// RunSearch searches config.Filename with the stored question or the
// groups given on the command line and prints the matching pages.
func RunSearch(ctx context.Context, config *Config, engine *search.Engine, w io.Writer) error {
	mode, err := searchMode(config)
	if err != nil {
		return err
	}

	query := ParseGroups(config.Groups)
	if query == nil {
		if config.Category == "" || config.Question == "" {
			return fmt.Errorf("give --groups or both --category and --question")
		}
		store, err := terms.Open(config.TermsFile)
		if err != nil {
			return err
		}
		if query, err = store.Query(config.Category, config.Question); err != nil {
			return err
		}
	}

	doc, err := document.Open(config.Filename)
	if err != nil {
		return err
	}
	defer doc.Close()

	opts := search.Options{Mode: mode, Normalize: config.Normalize}
	rs, err := engine.Search(ctx, doc, query, opts)
	if err != nil {
		return err
	}

	var highlight func(string) []match.Span
	if config.Highlight {
		if highlight, err = engine.Highlighter(query, opts); err != nil {
			return err
		}
	}

	printResults(w, config, rs, mode, highlight)
	return nil
}

func searchMode(config *Config) (match.Mode, error) {
	return match.ParseMode(config.Mode, config.Threshold)
}

// printResults prints one line per page. With highlight set the line is
// the marked text around the first hit.
func printResults(w io.Writer, config *Config, rs *search.ResultSet, mode match.Mode, highlight func(string) []match.Span) {
	fmt.Fprintf(w, "%s: %d matching page(s) [%s]\n", config.Filename, rs.Len(), mode)

	for _, page := range rs.Pages() {
		line := firstLine(page.Text)
		if highlight != nil {
			if spans := highlight(page.Text); len(spans) > 0 {
				marked := match.Mark(page.Text, spans, "[", "]")
				line = match.Snippet(marked, spans[0].Start, 1)
			}
		}
		fmt.Fprintf(w, "Page: %d : %s\n", page.Index+1, line)
	}
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			const limit = 120
			if len(line) > limit {
				return line[:limit] + "..."
			}
			return line
		}
	}
	return ""
}

// ListCategories prints the categories of the terms file.
func ListCategories(config *Config, w io.Writer) error {
	store, err := terms.Open(config.TermsFile)
	if err != nil {
		return err
	}
	for _, category := range store.Categories() {
		fmt.Fprintln(w, category)
	}
	return nil
}

// ListQuestions prints the questions of config.Category with their groups.
func ListQuestions(config *Config, w io.Writer) error {
	store, err := terms.Open(config.TermsFile)
	if err != nil {
		return err
	}

	questions, err := store.Questions(config.Category)
	if err != nil {
		return err
	}
	for _, question := range questions {
		fmt.Fprintln(w, question)
		query, _ := store.Query(config.Category, question)
		for i, group := range query {
			fmt.Fprintf(w, "  Group %d: %s\n", i+1, terms.FormatGroup(group))
		}
	}
	return nil
}

// EditTerms opens the terms file, applies edit and saves it.
func EditTerms(config *Config, edit func(*terms.Store) error) error {
	store, err := terms.Open(config.TermsFile)
	if err != nil {
		return err
	}
	if err := edit(store); err != nil {
		return err
	}
	return store.Save()
}
