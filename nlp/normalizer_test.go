package nlp

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadModel(t *testing.T) {
	for _, code := range Languages() {
		t.Run(code, func(t *testing.T) {
			m, err := LoadModel(code)
			require.NoError(t, err)
			assert.Equal(t, code, m.Language)
		})
	}

	m, err := LoadModel("")
	require.NoError(t, err)
	assert.Equal(t, DefaultLanguage, m.Language)

	_, err = LoadModel("zz")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
}

func TestStemFixedPoint(t *testing.T) {
	m, err := LoadModel("en")
	require.NoError(t, err)

	for _, word := range []string{"charging", "stations", "generously", "happiness", "run"} {
		stem := m.Stem(word)
		assert.Equal(t, stem, m.Stem(stem), "stem of %q is not a fixed point", word)
	}
	assert.Equal(t, "run", m.Stem("running"))
}

func TestNormalize(t *testing.T) {
	n := NewNormalizer(WithLogger(quietLogger()))

	tests := []struct {
		name  string
		text  string
		check func(t *testing.T, got string)
	}{
		{
			name: "stop words removed",
			text: "The cat is on the mat",
			check: func(t *testing.T, got string) {
				assert.Equal(t, "cat mat", got)
			},
		},
		{
			name: "inflections collapse",
			text: "Charging stations",
			check: func(t *testing.T, got string) {
				assert.Equal(t, n.Normalize("charging station"), got)
			},
		},
		{
			name: "non alphabetic tokens dropped",
			text: "Level 2 charging, 50kW!",
			check: func(t *testing.T, got string) {
				assert.NotContains(t, got, "2")
				assert.NotContains(t, got, "50kw")
				assert.NotContains(t, got, ",")
				assert.Contains(t, got, n.Normalize("charging"))
			},
		},
		{
			name: "single spaces",
			text: "  solar   panels\n\tinverters ",
			check: func(t *testing.T, got string) {
				assert.Equal(t, strings.Join(strings.Fields(got), " "), got)
				assert.Len(t, strings.Fields(got), 3)
			},
		},
		{
			name: "source order kept",
			text: "zebra apple",
			check: func(t *testing.T, got string) {
				assert.Equal(t, "zebra appl", got)
			},
		},
		{
			name: "blank",
			text: " \n ",
			check: func(t *testing.T, got string) {
				assert.Equal(t, "", got)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, n.Normalize(tt.text))
		})
	}
	assert.False(t, n.Degraded())
}

func TestNormalizeIdempotent(t *testing.T) {
	texts := []string{
		"EV charging station plan",
		"The quick brown foxes were jumping over the lazy dogs.",
		"Level 2 charging infrastructure, installed in 2021!",
		"Generously, happily and relentlessly",
		"",
	}

	normal := NewNormalizer(WithLogger(quietLogger()))
	degraded := NewNormalizer(WithLogger(quietLogger()), WithLoader(func(string) (*Model, error) {
		return nil, errors.New("no model")
	}))

	for _, n := range []*Normalizer{normal, degraded} {
		for _, text := range texts {
			once := n.Normalize(text)
			assert.Equal(t, once, n.Normalize(once), "degraded=%v text %q", n.Degraded(), text)
		}
	}
}

func TestNormalizeDegraded(t *testing.T) {
	var loads atomic.Int32
	n := NewNormalizer(
		WithLogger(quietLogger()),
		WithLoader(func(string) (*Model, error) {
			loads.Add(1)
			return nil, errors.New("model missing")
		}),
	)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, "the cat is on the mat", n.Normalize("The Cat is on the MAT"))
		}()
	}
	wg.Wait()

	assert.True(t, n.Degraded())
	assert.Equal(t, int32(1), loads.Load(), "model must be loaded once")
	assert.Equal(t, []string{"the", "cat"}, n.Tokens("The  Cat"))
}

func TestNormalizeUnsupportedLanguageDegrades(t *testing.T) {
	n := NewNormalizer(WithLogger(quietLogger()), WithLanguage("zz"))
	assert.Equal(t, "hello world", n.Normalize("Hello World"))
	assert.True(t, n.Degraded())
	assert.Equal(t, "zz", n.Language())
}

func BenchmarkNormalize(b *testing.B) {
	n := NewNormalizer(WithLogger(quietLogger()))
	text := strings.Repeat("Level 2 charging infrastructure for the new depot. ", 50)

	for i := 0; i < b.N; i++ {
		n.Normalize(text)
	}
}
