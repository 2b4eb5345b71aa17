package match

import (
	"cmp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Span is the byte range [Start, End) of one term occurrence in a text.
type Span struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Term  string `json:"term"`
}

// Highlight finds every whole-word, case-insensitive occurrence of every
// term of query in text. Spans are sorted by start; a span lying inside
// an earlier one is dropped.
func Highlight(text string, query Query) []Span {
	// Exact is always valid, so Compile cannot fail.
	m, _ := Compile(query, Exact{})
	return m.Highlight(text)
}

// Highlight returns the spans of text the matcher's terms hit, sorted by
// start with nested spans dropped. In exact mode a span is a whole-word
// occurrence of a term; in fuzzy mode it is a whitespace separated token
// similar enough to a term. Terms are the compiled ones, so text must be
// in the form the matcher compares, e.g. already normalized.
func (m *Matcher) Highlight(text string) []Span {
	var spans []Span
	seen := make(map[string]struct{})

	fuzzy, isFuzzy := m.mode.(Fuzzy)
	var tokens []Span
	if isFuzzy {
		tokens = fieldSpans(text)
	}

	for _, group := range m.groups {
		for _, term := range group {
			if _, ok := seen[term.text]; ok {
				continue
			}
			seen[term.text] = struct{}{}

			if isFuzzy {
				for _, tok := range tokens {
					if similarEnough(term.text, strings.ToLower(text[tok.Start:tok.End]), fuzzy.Threshold) {
						spans = append(spans, Span{Start: tok.Start, End: tok.End, Term: term.term})
					}
				}
				continue
			}
			spans = appendWordSpans(spans, text, term)
		}
	}

	slices.SortFunc(spans, func(a, b Span) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(b.End, a.End)
	})

	merged := spans[:0]
	for _, s := range spans {
		if n := len(merged); n > 0 && s.End <= merged[n-1].End {
			continue
		}
		merged = append(merged, s)
	}
	return slices.Clip(merged)
}

// appendWordSpans appends every whole-word occurrence of term in text.
func appendWordSpans(spans []Span, text string, term compiledTerm) []Span {
	for pos := 0; pos < len(text); {
		loc := term.pattern.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[2], pos+loc[3]

		// The pattern sees pos as the start of text. The rune before it
		// must not continue a word.
		if start == pos && pos > 0 {
			if r, _ := utf8.DecodeLastRuneInString(text[:pos]); isWordRune(r) {
				_, size := utf8.DecodeRuneInString(text[pos:])
				pos += size
				continue
			}
		}
		spans = append(spans, Span{Start: start, End: end, Term: term.term})

		// The boundary rune after the term may precede the next occurrence.
		pos = end
	}
	return spans
}

// fieldSpans returns the byte ranges of the whitespace separated fields of
// text, as strings.Fields splits it.
func fieldSpans(text string) []Span {
	var fields []Span
	start := -1
	for i, r := range text {
		switch {
		case unicode.IsSpace(r):
			if start >= 0 {
				fields = append(fields, Span{Start: start, End: i})
				start = -1
			}
		case start < 0:
			start = i
		}
	}
	if start >= 0 {
		fields = append(fields, Span{Start: start, End: len(text)})
	}
	return fields
}

// Mark wraps every span of text in before and after.
// spans must be sorted and non-overlapping, as returned by Highlight.
func Mark(text string, spans []Span, before, after string) string {
	var b strings.Builder
	b.Grow(len(text) + len(spans)*(len(before)+len(after)))

	last := 0
	for _, s := range spans {
		if s.Start < last {
			continue
		}
		b.WriteString(text[last:s.Start])
		b.WriteString(before)
		b.WriteString(text[s.Start:s.End])
		b.WriteString(after)
		last = s.End
	}
	b.WriteString(text[last:])
	return b.String()
}

// Snippet returns the lines around the line containing offset, joined with
// single spaces. radius is the number of lines kept on each side.
func Snippet(text string, offset, radius int) string {
	if offset < 0 || offset > len(text) {
		return ""
	}

	lines := strings.Split(text, "\n")
	lineno := strings.Count(text[:offset], "\n")

	start := max(lineno-radius, 0)
	end := min(lineno+radius+1, len(lines))

	parts := make([]string, 0, end-start)
	for _, line := range lines[start:end] {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}
