package search

import (
	"encoding/json"
	"sort"
)

// Page is one matching page: its zero-based index and the text that was
// compared against the query (normalized text when normalization was on).
type Page struct {
	Index int    `json:"page"`
	Text  string `json:"text"`
}

// ResultSet holds the matching pages of one search in ascending page order.
// The zero value is an empty result.
type ResultSet struct {
	pages []Page
}

func newResultSet(pages []Page) *ResultSet {
	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].Index < pages[j].Index
	})
	return &ResultSet{pages: pages}
}

// Len returns the number of matching pages.
func (r *ResultSet) Len() int {
	if r == nil {
		return 0
	}
	return len(r.pages)
}

// Indices returns the matching page indices in ascending order.
func (r *ResultSet) Indices() []int {
	indices := make([]int, r.Len())
	for i := range indices {
		indices[i] = r.pages[i].Index
	}
	return indices
}

// Get returns the compared text of page index if it matched.
func (r *ResultSet) Get(index int) (string, bool) {
	n := r.Len()
	i := sort.Search(n, func(i int) bool { return r.pages[i].Index >= index })
	if i < n && r.pages[i].Index == index {
		return r.pages[i].Text, true
	}
	return "", false
}

// Contains reports whether page index matched.
func (r *ResultSet) Contains(index int) bool {
	_, ok := r.Get(index)
	return ok
}

// Pages returns a copy of the matching pages in ascending order.
func (r *ResultSet) Pages() []Page {
	pages := make([]Page, r.Len())
	if r != nil {
		copy(pages, r.pages)
	}
	return pages
}

// MarshalJSON encodes the result as a list of {"page", "text"} objects.
func (r *ResultSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Pages())
}
