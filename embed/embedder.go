// Package embed provides the text embedding backends used by semantic matching.
package embed

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnavailable is returned when no embedding backend can be used.
	ErrUnavailable = errors.New("embed: embedding backend unavailable")

	// ErrUnknownBackend is returned for backend names New does not know.
	ErrUnknownBackend = errors.New("embed: unknown backend")
)

// Embedder turns text into vectors. Implementations are safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for texts, one per text in order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Backend names accepted in Config.Backend.
const (
	BackendNone    = "none"
	BackendOpenAI  = "openai"
	BackendLexical = "lexical"
)

// DefaultDimensions is the vector size of the lexical backend.
const DefaultDimensions = 512

// Config selects and configures an embedding backend.
type Config struct {
	// Backend is one of "openai", "lexical" or "none". Empty means none.
	Backend string `yaml:"backend"`

	// Host is the base URL of an OpenAI-compatible API.
	// Example: "http://localhost:11434/v1"
	Host string `yaml:"host"`

	// Model is the embedding model identifier.
	// Example: "nomic-embed-text", "text-embedding-3-small"
	Model string `yaml:"model"`

	// Token authenticates against the API. Local servers accept any value.
	Token string `yaml:"token"`

	// Dimensions is the vector size of the lexical backend.
	Dimensions int `yaml:"dimensions"`

	// Language is the ISO 639-1 code used by the lexical backend.
	Language string `yaml:"language"`
}

// Validate checks that c names a known backend with the settings it needs.
func (c *Config) Validate() error {
	switch c.backend() {
	case BackendNone, BackendLexical:
		return nil
	case BackendOpenAI:
		if strings.TrimSpace(c.Model) == "" {
			return errors.New("embed: openai backend requires a model")
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}
}

func (c *Config) backend() string {
	b := strings.ToLower(strings.TrimSpace(c.Backend))
	if b == "" {
		return BackendNone
	}
	return b
}

// New builds the backend named by cfg.Backend.
// The "none" backend yields an error wrapping ErrUnavailable.
func New(cfg Config) (Embedder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.backend() {
	case BackendOpenAI:
		return NewOpenAI(cfg)
	case BackendLexical:
		return NewLexical(cfg), nil
	default:
		return nil, fmt.Errorf("%w: no backend configured", ErrUnavailable)
	}
}
