package embed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Lazy defers building an Embedder until it is first used. The backend is
// built once and reused; if building fails, every call returns that error
// wrapped in ErrUnavailable.
type Lazy struct {
	factory func() (Embedder, error)
	logger  *slog.Logger

	once     sync.Once
	embedder Embedder
	err      error
}

// NewLazy wraps factory.
func NewLazy(factory func() (Embedder, error)) *Lazy {
	return &Lazy{
		factory: factory,
		logger:  slog.Default().With("component", "embedder"),
	}
}

// LazyFromConfig defers New(cfg).
func LazyFromConfig(cfg Config) *Lazy {
	return NewLazy(func() (Embedder, error) {
		return New(cfg)
	})
}

// Get returns the backend, building it on the first call.
func (l *Lazy) Get() (Embedder, error) {
	l.once.Do(func() {
		emb, err := l.factory()
		switch {
		case err != nil:
			l.err = err
		case emb == nil:
			l.err = errors.New("factory returned no embedder")
		default:
			l.embedder = emb
			return
		}

		l.logger.Warn("semantic matching disabled", "err", l.err)
		if !errors.Is(l.err, ErrUnavailable) {
			l.err = fmt.Errorf("%w: %w", ErrUnavailable, l.err)
		}
	})
	return l.embedder, l.err
}

func (l *Lazy) EmbedText(ctx context.Context, text string) ([]float32, error) {
	emb, err := l.Get()
	if err != nil {
		return nil, err
	}
	return emb.EmbedText(ctx, text)
}

func (l *Lazy) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	emb, err := l.Get()
	if err != nil {
		return nil, err
	}
	return emb.EmbedTexts(ctx, texts)
}

// Resolve returns the backend behind e, building it if e is lazy.
// A nil Embedder is unavailable.
func Resolve(e Embedder) (Embedder, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: no backend configured", ErrUnavailable)
	}
	if l, ok := e.(*Lazy); ok {
		return l.Get()
	}
	return e, nil
}
