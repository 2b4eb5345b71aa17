package nlp

import (
	"log/slog"
	"strings"
	"sync"
	"unicode"

	"github.com/bbalet/stopwords"
	"github.com/jdkato/prose/v2"
)

// Loader loads the model for a language code.
type Loader func(code string) (*Model, error)

// Normalizer reduces text to the form compared by exact and fuzzy matching:
// lowercase stems of the alphabetic, non stop-word tokens, in source order,
// separated by single spaces.
//
// The model is loaded on first use. If it cannot be loaded the normalizer
// only lowercases text. Normalize never fails and is safe for concurrent use.
type Normalizer struct {
	language string
	loader   Loader
	logger   *slog.Logger

	once     sync.Once
	model    *Model
	degraded bool
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithLanguage sets the ISO 639-1 language code. Default is "en".
func WithLanguage(code string) Option {
	return func(n *Normalizer) {
		n.language = code
	}
}

// WithLoader replaces LoadModel.
func WithLoader(loader Loader) Option {
	return func(n *Normalizer) {
		n.loader = loader
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(n *Normalizer) {
		n.logger = logger
	}
}

// NewNormalizer creates a Normalizer. No model is loaded until the first
// call to Normalize.
func NewNormalizer(options ...Option) *Normalizer {
	n := &Normalizer{
		language: DefaultLanguage,
		loader:   LoadModel,
		logger:   slog.Default(),
	}

	for _, option := range options {
		option(n)
	}
	return n
}

func (n *Normalizer) load() {
	n.once.Do(func() {
		model, err := n.loader(n.language)
		if err != nil || model == nil {
			n.degraded = true
			n.logger.Warn("language model unavailable, normalizing by lowercasing only",
				"language", n.language, "error", err)
			return
		}
		n.model = model
		n.logger.Debug("language model loaded", "language", model.Language)
	})
}

// Degraded reports whether the model failed to load.
// It loads the model if that has not happened yet.
func (n *Normalizer) Degraded() bool {
	n.load()
	return n.degraded
}

// Language returns the configured language code.
func (n *Normalizer) Language() string {
	return n.language
}

// Normalize returns the normalized form of text.
// Normalize(Normalize(t)) == Normalize(t).
func (n *Normalizer) Normalize(text string) string {
	n.load()
	if n.degraded {
		return strings.ToLower(text)
	}
	return strings.Join(n.tokens(text), " ")
}

// Tokens returns the normalized tokens of text.
// In degraded mode these are the whitespace separated lowercase fields.
func (n *Normalizer) Tokens(text string) []string {
	n.load()
	if n.degraded {
		return strings.Fields(strings.ToLower(text))
	}
	return n.tokens(text)
}

func (n *Normalizer) tokens(text string) []string {
	text = strings.ToLower(text)
	if strings.TrimSpace(text) == "" {
		return nil
	}

	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithSegmentation(false),
		prose.WithExtraction(false))
	if err != nil {
		n.logger.Warn("tokenizer failed, splitting on whitespace", "error", err)
		return n.filter(strings.Fields(text))
	}

	words := make([]string, 0, len(doc.Tokens()))
	for _, tok := range doc.Tokens() {
		words = append(words, tok.Text)
	}
	return n.filter(words)
}

func (n *Normalizer) filter(words []string) []string {
	out := make([]string, 0, len(words))
	for _, word := range words {
		if !isAlphabetic(word) || n.isStopWord(word) {
			continue
		}

		// Stems that are stop words would not survive a second pass.
		stem := n.model.Stem(word)
		if !isAlphabetic(stem) || n.isStopWord(stem) {
			continue
		}
		out = append(out, stem)
	}
	return out
}

func (n *Normalizer) isStopWord(word string) bool {
	return strings.TrimSpace(stopwords.CleanString(word, n.model.Language, false)) == ""
}

func isAlphabetic(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
