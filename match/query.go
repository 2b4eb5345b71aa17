package match

import "strings"

// TermGroup is a set of alternative terms.
// A group matches when any one of its terms matches.
type TermGroup []string

// Terms returns the trimmed, non-blank terms of g.
func (g TermGroup) Terms() []string {
	terms := make([]string, 0, len(g))
	for _, term := range g {
		if term = strings.TrimSpace(term); term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}

// Query is a sequence of term groups that must all match.
type Query []TermGroup

// Clean returns a copy of q with blank terms removed from every group.
// Groups left without terms are kept, they can never match.
func (q Query) Clean() Query {
	cleaned := make(Query, len(q))
	for i, group := range q {
		cleaned[i] = TermGroup(group.Terms())
	}
	return cleaned
}

// TermMatches reports whether term occurs in text under mode.
// A blank term never matches. Semantic mode does not compare strings
// and always reports false here.
func TermMatches(text, term string, mode Mode) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return false
	}

	switch m := mode.(type) {
	case Exact:
		return wordPattern(term).MatchString(text)
	case Fuzzy:
		return anyTokenSimilar(lowerFields(text), strings.ToLower(term), m.Threshold)
	default:
		return false
	}
}

// GroupMatches reports whether any non-blank term of group matches text.
// A group without terms does not match.
func GroupMatches(text string, group TermGroup, mode Mode) bool {
	for _, term := range group.Terms() {
		if TermMatches(text, term, mode) {
			return true
		}
	}
	return false
}

// QueryMatches reports whether every group of query matches text.
// A query without groups matches every text.
func QueryMatches(text string, query Query, mode Mode) bool {
	for _, group := range query {
		if !GroupMatches(text, group, mode) {
			return false
		}
	}
	return true
}
