package search

import (
	"errors"

	"github.com/abiiranathan/pdfterms/match"
)

var (
	// ErrSemanticUnavailable is returned when a semantic search cannot embed
	// text. It is distinct from a search that matched no pages.
	ErrSemanticUnavailable = errors.New("search: semantic matching unavailable")

	// ErrNoDocument is returned when Search is given no document.
	ErrNoDocument = errors.New("search: no document")

	// ErrInvalidThreshold is match.ErrInvalidThreshold, returned for a mode
	// whose threshold is out of range.
	ErrInvalidThreshold = match.ErrInvalidThreshold

	// ErrUnknownMode is match.ErrUnknownMode.
	ErrUnknownMode = match.ErrUnknownMode
)
