package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abiiranathan/pdfterms/document"
	"github.com/abiiranathan/pdfterms/match"
	"github.com/abiiranathan/pdfterms/metrics"
	"github.com/abiiranathan/pdfterms/search"
	"github.com/abiiranathan/pdfterms/terms"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var plan = document.Pages{
	"EV charging station plan",
	"no relevant content here",
	"Level 2 charging infrastructure",
}

type testServer struct {
	handler http.Handler
	store   *terms.Store
	opened  []string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := terms.Open(filepath.Join(t.TempDir(), "terms.json"))
	require.NoError(t, err)
	require.NoError(t, store.AddCategory("Energy"))
	require.NoError(t, store.AddQuestion("Energy", "EV charging"))
	require.NoError(t, store.SetGroups("Energy", "EV charging", match.Query{{"charging"}, {"infrastructure"}}))

	ts := &testServer{store: store}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	mux := http.NewServeMux()
	SetupRoutes(mux, Services{
		Store:  store,
		Engine: search.New(search.WithMetrics(m)),
		Search: SearchConfig{
			Root:        "/srv/docs",
			DefaultMode: "exact",
			Open: func(path string) (document.Document, error) {
				ts.opened = append(ts.opened, path)
				if strings.HasSuffix(path, "missing.pdf") {
					return nil, os.ErrNotExist
				}
				return plan, nil
			},
		},
		Gatherer: reg,
	})

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts.handler = Logger(log, m)(mux)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if s, ok := body.(string); ok {
		r = strings.NewReader(s)
	} else if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(method, path, r))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestTermsAPI(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/terms", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Energy"}, decode[map[string][]string](t, rec)["categories"])

	rec = ts.do(t, http.MethodPost, "/api/terms/Health", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodPut, "/api/terms/Health/Hospitals", map[string]any{
		"groups": [][]string{{"clinic", " hospital", ""}, {"ward"}},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[questionResponse](t, rec)
	assert.Equal(t, match.Query{{"clinic", "hospital"}, {"ward"}}, got.Groups)

	rec = ts.do(t, http.MethodGet, "/api/terms/Health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"Hospitals"}, decode[map[string]any](t, rec)["questions"])

	rec = ts.do(t, http.MethodGet, "/api/terms/Health/Hospitals", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Changes are persisted.
	reopened, err := terms.Open(ts.store.Path())
	require.NoError(t, err)
	assert.Equal(t, []string{"Energy", "Health"}, reopened.Categories())

	rec = ts.do(t, http.MethodDelete, "/api/terms/Health/Hospitals", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = ts.do(t, http.MethodGet, "/api/terms/Health/Hospitals", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/api/terms/Health", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = ts.do(t, http.MethodGet, "/api/terms/Health", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPut, "/api/terms/Nope/Q", map[string]any{"groups": [][]string{}})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPut, "/api/terms/Energy/Q", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchAPI(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		body   any
		status int
		pages  []int
	}{
		{
			name:   "explicit groups",
			body:   map[string]any{"file": "plan.pdf", "groups": [][]string{{"charging"}}},
			status: http.StatusOK,
			pages:  []int{0, 2},
		},
		{
			name:   "stored question",
			body:   map[string]any{"file": "plan.pdf", "category": "Energy", "question": "EV charging"},
			status: http.StatusOK,
			pages:  []int{2},
		},
		{
			name:   "fuzzy",
			body:   map[string]any{"file": "plan.pdf", "groups": [][]string{{"chargng"}}, "mode": "fuzzy", "threshold": 80},
			status: http.StatusOK,
			pages:  []int{0, 2},
		},
		{
			name:   "no matches",
			body:   map[string]any{"file": "plan.pdf", "groups": [][]string{{"chargng"}}},
			status: http.StatusOK,
			pages:  []int{},
		},
		{
			name:   "threshold out of range",
			body:   map[string]any{"file": "plan.pdf", "groups": [][]string{{"x"}}, "mode": "fuzzy", "threshold": 120},
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown mode",
			body:   map[string]any{"file": "plan.pdf", "groups": [][]string{{"x"}}, "mode": "vector"},
			status: http.StatusBadRequest,
		},
		{
			name:   "semantic unavailable",
			body:   map[string]any{"file": "plan.pdf", "groups": [][]string{{"x"}}, "mode": "semantic", "threshold": 0.8},
			status: http.StatusServiceUnavailable,
		},
		{
			name:   "unknown question",
			body:   map[string]any{"file": "plan.pdf", "category": "Energy", "question": "Wind"},
			status: http.StatusNotFound,
		},
		{
			name:   "no query",
			body:   map[string]any{"file": "plan.pdf"},
			status: http.StatusBadRequest,
		},
		{
			name:   "no file",
			body:   map[string]any{"groups": [][]string{{"x"}}},
			status: http.StatusBadRequest,
		},
		{
			name:   "escapes root",
			body:   map[string]any{"file": "../etc/passwd.txt", "groups": [][]string{{"x"}}},
			status: http.StatusBadRequest,
		},
		{
			name:   "missing document",
			body:   map[string]any{"file": "missing.pdf", "groups": [][]string{{"x"}}},
			status: http.StatusNotFound,
		},
		{
			name:   "malformed body",
			body:   "{",
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, "/api/search", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status != http.StatusOK {
				assert.NotEmpty(t, decode[map[string]string](t, rec)["message"])
				return
			}

			resp := decode[searchResponse](t, rec)
			indices := make([]int, 0, len(resp.Pages))
			for _, p := range resp.Pages {
				indices = append(indices, p.Page)
				assert.Equal(t, plan[p.Page], p.Text)
			}
			assert.Equal(t, tt.pages, indices)
			assert.Equal(t, len(tt.pages), resp.Count)
		})
	}

	assert.Contains(t, ts.opened, filepath.Join("/srv/docs", "plan.pdf"))
}

func TestSearchDefaultRoot(t *testing.T) {
	var opened []string
	handler := Search(search.New(), nil, SearchConfig{
		Open: func(path string) (document.Document, error) {
			opened = append(opened, path)
			return plan, nil
		},
	})

	tests := []struct {
		file   string
		status int
	}{
		{"/etc/pdfterms/secret.txt", http.StatusBadRequest},
		{"../outside.pdf", http.StatusBadRequest},
		{"docs/plan.pdf", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			body := `{"file": "` + tt.file + `", "groups": []}`
			req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(body))
			rec := httptest.NewRecorder()
			handler(rec, req)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
	assert.Equal(t, []string{"docs/plan.pdf"}, opened)
}

func TestSearchHighlightFuzzy(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/search", map[string]any{
		"file": "plan.pdf", "groups": [][]string{{"chargng"}}, "mode": "fuzzy", "threshold": 80, "highlight": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[searchResponse](t, rec)
	require.Len(t, resp.Pages, 2)
	assert.Equal(t, []match.Span{{Start: 3, End: 11, Term: "chargng"}}, resp.Pages[0].Spans)
	assert.Equal(t, []match.Span{{Start: 8, End: 16, Term: "chargng"}}, resp.Pages[1].Spans)
}

func TestSearchHighlight(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/search", map[string]any{
		"file": "plan.pdf", "groups": [][]string{{"charging"}}, "highlight": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[searchResponse](t, rec)
	require.Len(t, resp.Pages, 2)
	assert.Equal(t, []match.Span{{Start: 3, End: 11, Term: "charging"}}, resp.Pages[0].Spans)
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{terms.ErrCategoryNotFound, http.StatusNotFound},
		{os.ErrNotExist, http.StatusNotFound},
		{match.ErrInvalidThreshold, http.StatusBadRequest},
		{document.ErrUnsupportedFormat, http.StatusBadRequest},
		{search.ErrSemanticUnavailable, http.StatusServiceUnavailable},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusOf(tt.err))
		})
	}
}

func TestMiddleware(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "fixed-id")
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, "fixed-id", rec.Header().Get(RequestIDHeader))

	rec = ts.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `pdfterms_http_requests_total{method="GET",path="GET /healthz",status="200"} 2`)
}
