package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTermMatchesExact(t *testing.T) {
	tests := []struct {
		name string
		text string
		term string
		want bool
	}{
		{name: "whole word", text: "the cat sat", term: "cat", want: true},
		{name: "prefix of longer word", text: "category", term: "cat", want: false},
		{name: "suffix of longer word", text: "bobcat", term: "cat", want: false},
		{name: "case insensitive", text: "The CAT sat", term: "cat", want: true},
		{name: "trailing punctuation", text: "I saw a cat.", term: "cat", want: true},
		{name: "underscore joins words", text: "cat_food", term: "cat", want: false},
		{name: "special characters literal", text: "senior c++ developer", term: "c++", want: true},
		{name: "dot is not a wildcard", text: "axb", term: "a.b", want: false},
		{name: "unicode word", text: "café au lait", term: "café", want: true},
		{name: "unicode boundary", text: "cafés", term: "café", want: false},
		{name: "phrase", text: "EV charging station plan", term: "charging station", want: true},
		{name: "term is trimmed", text: "the cat sat", term: "  cat ", want: true},
		{name: "blank term", text: "the cat sat", term: "   ", want: false},
		{name: "empty text", text: "", term: "cat", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TermMatches(tt.text, tt.term, Exact{}))
		})
	}
}

func TestTermMatchesFuzzy(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		term      string
		threshold int
		want      bool
	}{
		{name: "typo", text: "EV charging station plan", term: "chargng", threshold: 80, want: true},
		{name: "identical ignoring case", text: "CHARGING", term: "charging", threshold: 100, want: true},
		{name: "unrelated tokens", text: "the dog", term: "cat", threshold: 80, want: false},
		{name: "typo above strict threshold", text: "charging", term: "chargng", threshold: 95, want: false},
		{name: "boundary is inclusive", text: "abcde", term: "abcdx", threshold: 80, want: true},
		{name: "blank term", text: "anything", term: " ", threshold: 50, want: false},
		{name: "empty text", text: "", term: "cat", threshold: 50, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TermMatches(tt.text, tt.term, Fuzzy{Threshold: tt.threshold}))
		})
	}
}

func TestTermMatchesSemanticIsNotAStringMode(t *testing.T) {
	assert.False(t, TermMatches("the cat sat", "cat", Semantic{Threshold: 0.5}))
}

func TestFuzzyMonotonicity(t *testing.T) {
	pairs := []struct{ text, term string }{
		{"EV charging station plan", "chargng"},
		{"Level 2 charging infrastructure", "infrastracture"},
		{"kitten", "sitting"},
		{"photovoltaic array", "fotovoltaic"},
	}

	for _, p := range pairs {
		for t1 := MinFuzzyThreshold; t1 <= MaxFuzzyThreshold; t1++ {
			if !TermMatches(p.text, p.term, Fuzzy{Threshold: t1}) {
				continue
			}
			for t2 := MinFuzzyThreshold; t2 < t1; t2++ {
				assert.True(t, TermMatches(p.text, p.term, Fuzzy{Threshold: t2}),
					"%q in %q matched at %d but not at %d", p.term, p.text, t1, t2)
			}
		}
	}
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 100.0, Ratio("", ""))
	assert.Equal(t, 100.0, Ratio("abc", "abc"))
	assert.Equal(t, 87.5, Ratio("chargng", "charging"))
	assert.InDelta(t, 57.14, Ratio("kitten", "sitting"), 0.01)
	assert.Equal(t, 0.0, Ratio("abc", ""))
}

func TestGroupMatches(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		group TermGroup
		want  bool
	}{
		{name: "any term", text: "the cat sat", group: TermGroup{"dog", "cat"}, want: true},
		{name: "no term", text: "the cat sat", group: TermGroup{"dog", "bird"}, want: false},
		{name: "empty group", text: "the cat sat", group: TermGroup{}, want: false},
		{name: "nil group", text: "the cat sat", group: nil, want: false},
		{name: "only blank terms", text: "the cat sat", group: TermGroup{"", "  ", "\t"}, want: false},
		{name: "blank terms are skipped", text: "the cat sat", group: TermGroup{" ", "cat"}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GroupMatches(tt.text, tt.group, Exact{}))
			assert.Equal(t, tt.want, GroupMatches(tt.text, tt.group, Fuzzy{Threshold: 100}))
		})
	}
}

func TestQueryMatchesVacuousTruth(t *testing.T) {
	modes := []Mode{Exact{}, Fuzzy{Threshold: 50}, Fuzzy{Threshold: 100}, Semantic{Threshold: 0.9}}
	texts := []string{"", "anything at all", "category"}

	for _, mode := range modes {
		for _, text := range texts {
			assert.True(t, QueryMatches(text, Query{}, mode), "mode %s text %q", mode, text)
			assert.True(t, QueryMatches(text, nil, mode), "mode %s text %q", mode, text)
		}
	}
}

func TestQueryMatches(t *testing.T) {
	pages := []string{
		"EV charging station plan",
		"no relevant content here",
		"Level 2 charging infrastructure",
	}

	tests := []struct {
		name  string
		query Query
		mode  Mode
		want  []bool
	}{
		{
			name:  "single group",
			query: Query{{"charging"}},
			mode:  Exact{},
			want:  []bool{true, false, true},
		},
		{
			name:  "and of groups",
			query: Query{{"charging"}, {"infrastructure"}},
			mode:  Exact{},
			want:  []bool{false, false, true},
		},
		{
			name:  "or inside group",
			query: Query{{"plan", "infrastructure"}},
			mode:  Exact{},
			want:  []bool{true, false, true},
		},
		{
			name:  "typo exact",
			query: Query{{"chargng"}},
			mode:  Exact{},
			want:  []bool{false, false, false},
		},
		{
			name:  "typo fuzzy",
			query: Query{{"chargng"}},
			mode:  Fuzzy{Threshold: 80},
			want:  []bool{true, false, true},
		},
		{
			name:  "empty group fails the query",
			query: Query{{"charging"}, {}},
			mode:  Exact{},
			want:  []bool{false, false, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i, page := range pages {
				assert.Equal(t, tt.want[i], QueryMatches(page, tt.query, tt.mode), "page %d", i)
			}
		})
	}
}

func TestQueryClean(t *testing.T) {
	q := Query{{" a ", "", "b"}, {"  "}}
	assert.Equal(t, Query{{"a", "b"}, {}}, q.Clean())
	assert.Equal(t, TermGroup{" a ", "", "b"}, q[0], "Clean must not modify the receiver")
}
