package match

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Threshold bounds accepted by each mode.
// Values outside these ranges are rejected, never clamped.
const (
	MinFuzzyThreshold = 50
	MaxFuzzyThreshold = 100

	MinSemanticThreshold = 0.5
	MaxSemanticThreshold = 1.0

	DefaultFuzzyThreshold    = 80
	DefaultSemanticThreshold = 0.7
)

// Mode selects how terms are compared with page text.
// Exactly one of Exact, Fuzzy or Semantic.
type Mode interface {
	// Name is the bare mode name: "exact", "fuzzy" or "semantic".
	Name() string

	// Validate reports whether the mode's threshold is in range.
	Validate() error

	String() string

	isMode()
}

// Exact matches terms as whole words, ignoring case.
type Exact struct{}

// Fuzzy matches a term against single whitespace-separated tokens
// whose similarity ratio is at least Threshold percent.
type Fuzzy struct {
	Threshold int
}

// Semantic compares embeddings of page text and term groups.
// A group matches when the cosine similarity is at least Threshold.
type Semantic struct {
	Threshold float64
}

func (Exact) isMode()    {}
func (Fuzzy) isMode()    {}
func (Semantic) isMode() {}

func (Exact) Name() string    { return "exact" }
func (Fuzzy) Name() string    { return "fuzzy" }
func (Semantic) Name() string { return "semantic" }

func (Exact) Validate() error { return nil }

func (f Fuzzy) Validate() error {
	if f.Threshold < MinFuzzyThreshold || f.Threshold > MaxFuzzyThreshold {
		return fmt.Errorf("%w: fuzzy threshold %d not in [%d, %d]",
			ErrInvalidThreshold, f.Threshold, MinFuzzyThreshold, MaxFuzzyThreshold)
	}
	return nil
}

func (s Semantic) Validate() error {
	// Written as a negation so NaN is rejected too.
	if !(s.Threshold >= MinSemanticThreshold && s.Threshold <= MaxSemanticThreshold) {
		return fmt.Errorf("%w: semantic threshold %g not in [%g, %g]",
			ErrInvalidThreshold, s.Threshold, MinSemanticThreshold, MaxSemanticThreshold)
	}
	return nil
}

func (Exact) String() string      { return "exact" }
func (f Fuzzy) String() string    { return fmt.Sprintf("fuzzy(%d)", f.Threshold) }
func (s Semantic) String() string { return fmt.Sprintf("semantic(%.2f)", s.Threshold) }

// ParseMode builds a Mode from a mode name and a threshold as typed by a user.
// An empty threshold selects the mode's default. The returned mode is valid.
func ParseMode(name, threshold string) (Mode, error) {
	threshold = strings.TrimSpace(threshold)

	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "exact":
		return Exact{}, nil
	case "fuzzy":
		m := Fuzzy{Threshold: DefaultFuzzyThreshold}
		if threshold != "" {
			v, err := strconv.ParseFloat(threshold, 64)
			if err != nil || v != math.Trunc(v) {
				return nil, fmt.Errorf("%w: fuzzy threshold %q is not an integer", ErrInvalidThreshold, threshold)
			}
			m.Threshold = int(v)
		}
		if err := m.Validate(); err != nil {
			return nil, err
		}
		return m, nil
	case "semantic":
		m := Semantic{Threshold: DefaultSemanticThreshold}
		if threshold != "" {
			v, err := strconv.ParseFloat(threshold, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: semantic threshold %q is not a number", ErrInvalidThreshold, threshold)
			}
			m.Threshold = v
		}
		if err := m.Validate(); err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
}
