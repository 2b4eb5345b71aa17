package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/abiiranathan/pdfterms/document"
	"github.com/abiiranathan/pdfterms/match"
	"github.com/abiiranathan/pdfterms/search"
	"github.com/abiiranathan/pdfterms/terms"
)

// SearchConfig configures the search endpoint.
type SearchConfig struct {
	// Documents are resolved relative to Root, and may not leave it.
	// Empty means the working directory.
	Root string

	// Timeout bounds one search. Zero means no limit.
	Timeout time.Duration

	// Used when a request names no mode or threshold.
	DefaultMode      string
	DefaultThreshold string

	// Open loads a document. Default is document.Open.
	Open func(path string) (document.Document, error)
}

type searchRequest struct {
	File      string      `json:"file"`
	Category  string      `json:"category"`
	Question  string      `json:"question"`
	Groups    match.Query `json:"groups"`
	Mode      string      `json:"mode"`
	Threshold *float64    `json:"threshold"`
	Normalize bool        `json:"normalize"`
	Highlight bool        `json:"highlight"`
}

type pageResponse struct {
	Page  int          `json:"page"`
	Text  string       `json:"text"`
	Spans []match.Span `json:"spans,omitempty"`
}

type searchResponse struct {
	File      string         `json:"file"`
	Mode      string         `json:"mode"`
	Normalize bool           `json:"normalize"`
	Count     int            `json:"count"`
	Pages     []pageResponse `json:"pages"`
}

// Search runs a query against a document on the server. The query is
// either the groups stored for category/question or explicit groups.
func Search(engine *search.Engine, store *terms.Store, cfg SearchConfig) http.HandlerFunc {
	open := cfg.Open
	if open == nil {
		open = document.Open
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}

		mode, err := requestMode(req, cfg)
		if err != nil {
			writeError(w, r, err)
			return
		}

		query, err := requestQuery(req, store)
		if err != nil {
			writeError(w, r, err)
			return
		}

		path, err := resolvePath(cfg.Root, req.File)
		if err != nil {
			writeError(w, r, err)
			return
		}

		doc, err := open(path)
		if err != nil {
			writeError(w, r, err)
			return
		}
		defer doc.Close()

		ctx := r.Context()
		if cfg.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
			defer cancel()
		}

		opts := search.Options{Mode: mode, Normalize: req.Normalize}
		rs, err := engine.Search(ctx, doc, query, opts)
		if err != nil {
			writeError(w, r, err)
			return
		}

		var highlight func(string) []match.Span
		if req.Highlight {
			if highlight, err = engine.Highlighter(query, opts); err != nil {
				writeError(w, r, err)
				return
			}
		}

		resp := searchResponse{
			File:      req.File,
			Mode:      mode.String(),
			Normalize: req.Normalize,
			Count:     rs.Len(),
			Pages:     make([]pageResponse, 0, rs.Len()),
		}
		for _, page := range rs.Pages() {
			pr := pageResponse{Page: page.Index, Text: page.Text}
			if highlight != nil {
				pr.Spans = highlight(page.Text)
			}
			resp.Pages = append(resp.Pages, pr)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func requestMode(req searchRequest, cfg SearchConfig) (match.Mode, error) {
	name := req.Mode
	threshold := ""
	if req.Threshold != nil {
		threshold = strconv.FormatFloat(*req.Threshold, 'f', -1, 64)
	}
	if name == "" {
		name = cfg.DefaultMode
		if threshold == "" {
			threshold = cfg.DefaultThreshold
		}
	}
	return match.ParseMode(name, threshold)
}

func requestQuery(req searchRequest, store *terms.Store) (match.Query, error) {
	if req.Groups != nil {
		return req.Groups, nil
	}
	if req.Category == "" || req.Question == "" {
		return nil, fmt.Errorf("%w: need category and question, or groups", errBadRequest)
	}
	return store.Query(req.Category, req.Question)
}

func resolvePath(root, file string) (string, error) {
	if strings.TrimSpace(file) == "" {
		return "", fmt.Errorf("%w: file is required", errBadRequest)
	}
	if !filepath.IsLocal(file) {
		return "", fmt.Errorf("%w: file must be relative to the documents directory", errBadRequest)
	}
	if root == "" {
		return file, nil
	}
	return filepath.Join(root, file), nil
}

// Healthz reports that the server is up.
func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
