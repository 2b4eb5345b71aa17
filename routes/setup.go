package routes

import (
	"net/http"

	"github.com/abiiranathan/pdfterms/metrics"
	"github.com/abiiranathan/pdfterms/search"
	"github.com/abiiranathan/pdfterms/terms"
	"github.com/prometheus/client_golang/prometheus"
)

// Services are the dependencies of the HTTP API.
type Services struct {
	Store    *terms.Store
	Engine   *search.Engine
	Search   SearchConfig
	Gatherer prometheus.Gatherer // nil disables /metrics
}

func SetupRoutes(mux *http.ServeMux, s Services) {
	// Term configuration
	mux.HandleFunc("GET /api/terms", ListCategories(s.Store))
	mux.HandleFunc("GET /api/terms/{category}", ListQuestions(s.Store))
	mux.HandleFunc("GET /api/terms/{category}/{question}", GetQuestion(s.Store))
	mux.HandleFunc("POST /api/terms/{category}", AddCategory(s.Store))
	mux.HandleFunc("DELETE /api/terms/{category}", RemoveCategory(s.Store))
	mux.HandleFunc("PUT /api/terms/{category}/{question}", PutQuestion(s.Store))
	mux.HandleFunc("DELETE /api/terms/{category}/{question}", RemoveQuestion(s.Store))

	// Search endpoint
	mux.HandleFunc("POST /api/search", Search(s.Engine, s.Store, s.Search))

	mux.HandleFunc("GET /healthz", Healthz)
	if s.Gatherer != nil {
		mux.Handle("GET /metrics", metrics.Handler(s.Gatherer))
	}
}
