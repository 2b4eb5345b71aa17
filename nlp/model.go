package nlp

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kljensen/snowball"
)

// ErrUnsupportedLanguage is returned by LoadModel for languages that have
// no stemmer or no stop-word list.
var ErrUnsupportedLanguage = errors.New("nlp: unsupported language")

// DefaultLanguage is the ISO 639-1 code used when none is configured.
const DefaultLanguage = "en"

// ISO 639-1 code to snowball stemmer name. Every code here also has a
// stop-word list in github.com/bbalet/stopwords.
var stemmers = map[string]string{
	"en": "english",
	"es": "spanish",
	"fr": "french",
	"hu": "hungarian",
	"no": "norwegian",
	"ru": "russian",
	"sv": "swedish",
}

// Languages returns the sorted ISO codes LoadModel accepts.
func Languages() []string {
	codes := make([]string, 0, len(stemmers))
	for code := range stemmers {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Model holds the language resources used by a Normalizer.
type Model struct {
	Language string // ISO 639-1 code, e.g. "en"
	stemmer  string // snowball language name
}

// LoadModel prepares the model for the ISO 639-1 language code.
func LoadModel(code string) (*Model, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		code = DefaultLanguage
	}

	name, ok := stemmers[code]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, code)
	}

	// The stemmer rejects unknown languages only when called.
	if _, err := snowball.Stem("running", name, true); err != nil {
		return nil, fmt.Errorf("nlp: loading %s stemmer: %w", name, err)
	}
	return &Model{Language: code, stemmer: name}, nil
}

// Stem reduces word to its stem, repeating until the stem no longer changes.
// Words the stemmer cannot handle are returned unchanged.
func (m *Model) Stem(word string) string {
	for range len(word) + 1 {
		stem, err := snowball.Stem(word, m.stemmer, false)
		if err != nil || stem == "" || stem == word {
			return word
		}
		word = stem
	}
	return word
}
