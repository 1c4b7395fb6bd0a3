// Package chi is the HTTP API: similarity checks, search, retrieval context
// and gap analysis runs.
package chi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/simcheck/internal/metrics"
	healthuc "github.com/kailas-cloud/simcheck/internal/usecase/health"
	"github.com/kailas-cloud/simcheck/internal/version"
)

// maxBodyBytes bounds request bodies; drafts are long but not unbounded.
const maxBodyBytes = 4 << 20

// Server holds the services behind the HTTP API.
type Server struct {
	similarity SimilarityService
	search     SearchService
	gaps       GapRuns
	health     HealthChecker
	apiKeys    []string
	logger     *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	similarity SimilarityService,
	search SearchService,
	gaps GapRuns,
	health HealthChecker,
	apiKeys []string,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		similarity: similarity,
		search:     search,
		gaps:       gaps,
		health:     health,
		apiKeys:    apiKeys,
		logger:     logger,
	}
}

// Routes builds the router with the full middleware chain.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(s.apiKeys))
	r.Use(metrics.Middleware())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/similarity/check", s.CheckSimilarity)
		r.Post("/similarity/analyze", s.AnalyzeSimilarity)
		r.Post("/embeddings", s.GenerateEmbedding)
		r.Post("/search", s.SearchSimilar)
		r.Post("/context", s.RetrievalContext)

		r.Route("/gaps/runs", func(r chi.Router) {
			r.Post("/", s.StartGapRun)
			r.Get("/", s.ListGapRuns)
			r.Get("/{id}", s.GetGapRun)
			r.Get("/{id}/export", s.ExportGapRun)
			r.Delete("/{id}", s.CancelGapRun)
		})
	})
	return r
}

type healthResponse struct {
	Status  healthuc.Status                 `json:"status"`
	Checks  map[string]healthuc.CheckResult `json:"checks"`
	Version string                          `json:"version"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthResponse{
		Status:  report.Status,
		Checks:  report.Checks,
		Version: version.Version,
	})
}

// decodeBody reads a JSON body into dst, rejecting unknown trailing data.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	if dec.More() {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body: trailing data")
		return false
	}
	return true
}
