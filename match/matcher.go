package match

import (
	"fmt"
	"regexp"
	"strings"
)

// Matcher evaluates one query against many page texts.
// Patterns are compiled once, so a Matcher is built per search
// and shared by all pages. It is safe for concurrent use.
type Matcher struct {
	mode   Mode
	groups [][]compiledTerm
}

type compiledTerm struct {
	term    string // as compiled, after any transform
	text    string // lowercase term
	pattern *regexp.Regexp
}

type compileOptions struct {
	transform func(string) string
}

// CompileOption configures Compile.
type CompileOption func(*compileOptions)

// WithTermTransform rewrites every term before it is compiled, e.g. to
// normalize terms the same way page text is normalized. A term the
// transform reduces to blank is dropped like any other blank term.
func WithTermTransform(fn func(string) string) CompileOption {
	return func(o *compileOptions) {
		o.transform = fn
	}
}

// Compile prepares query for repeated evaluation under mode.
// It fails for semantic mode and for out-of-range thresholds.
func Compile(query Query, mode Mode, opts ...CompileOption) (*Matcher, error) {
	if mode == nil {
		return nil, fmt.Errorf("%w: no mode given", ErrUnknownMode)
	}

	switch mode.(type) {
	case Exact, Fuzzy:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMode, mode)
	}

	if err := mode.Validate(); err != nil {
		return nil, err
	}

	var o compileOptions
	for _, opt := range opts {
		opt(&o)
	}

	m := &Matcher{
		mode:   mode,
		groups: make([][]compiledTerm, len(query)),
	}

	for i, group := range query {
		terms := group.Terms()
		compiled := make([]compiledTerm, 0, len(terms))
		for _, term := range terms {
			if o.transform != nil {
				term = strings.TrimSpace(o.transform(term))
				if term == "" {
					continue
				}
			}

			ct := compiledTerm{term: term, text: strings.ToLower(term)}
			if _, ok := mode.(Exact); ok {
				ct.pattern = wordPattern(term)
			}
			compiled = append(compiled, ct)
		}
		m.groups[i] = compiled
	}
	return m, nil
}

// Mode returns the mode the matcher was compiled for.
func (m *Matcher) Mode() Mode {
	return m.mode
}

// Matches reports whether text satisfies every group of the query.
// Same semantics as QueryMatches.
func (m *Matcher) Matches(text string) bool {
	var tokens []string
	fuzzy, isFuzzy := m.mode.(Fuzzy)
	if isFuzzy && len(m.groups) > 0 {
		tokens = lowerFields(text)
	}

	for _, group := range m.groups {
		matched := false
		for _, term := range group {
			if isFuzzy {
				matched = anyTokenSimilar(tokens, term.text, fuzzy.Threshold)
			} else {
				matched = term.pattern.MatchString(text)
			}
			if matched {
				break
			}
		}

		if !matched {
			return false
		}
	}
	return true
}
