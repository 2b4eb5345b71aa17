// Package document provides the page-text sources searched by pdfterms.
package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/abiiranathan/pdfterms/pdf"
)

// ErrUnsupportedFormat is returned by Open for file types it cannot read.
var ErrUnsupportedFormat = errors.New("document: unsupported format")

// Source is a paged document. PageText never fails: a page that yields no
// text is an empty string. Implementations must allow concurrent PageText calls.
type Source interface {
	NumPages() int
	PageText(i int) string
}

// Document is a Source that holds resources until closed.
type Document interface {
	Source
	Close() error
}

// Pages is an in-memory Source, one string per page.
type Pages []string

func (p Pages) NumPages() int {
	return len(p)
}

func (p Pages) PageText(i int) string {
	if i < 0 || i >= len(p) {
		return ""
	}
	return p[i]
}

func (p Pages) Close() error {
	return nil
}

// ParseText splits text into pages on form feeds, the page separator
// written by pdftotext. Text without form feeds is a single page and a
// trailing form feed does not start an extra page.
func ParseText(text string) Pages {
	if text == "" {
		return Pages{}
	}

	pages := strings.Split(text, "\f")
	if len(pages) > 1 && pages[len(pages)-1] == "" {
		pages = pages[:len(pages)-1]
	}
	return Pages(pages)
}

// LoadText reads a plain text file as pages.
func LoadText(path string) (Pages, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("document: reading %s: %w", path, err)
	}
	return ParseText(string(data)), nil
}

// Open opens path as a PDF (.pdf) or plain text (.txt, .text) document.
func Open(path string) (Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("document: %w", err)
		}
		doc, err := pdf.Open(path)
		if err != nil {
			return nil, err
		}
		return doc, nil
	case ".txt", ".text":
		pages, err := LoadText(path)
		if err != nil {
			return nil, err
		}
		return pages, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}
