package chi

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	domgap "github.com/kailas-cloud/simcheck/internal/domain/gap"
	gapuc "github.com/kailas-cloud/simcheck/internal/usecase/gap"
)

const (
	defaultRunListLimit = 20
	maxRunListLimit     = 100
)

// StartGapRun handles POST /v1/gaps/runs.
func (s *Server) StartGapRun(w http.ResponseWriter, r *http.Request) {
	var req gapuc.Request
	if !decodeBody(w, r, &req) {
		return
	}

	run, err := s.gaps.Start(r.Context(), req)
	if err != nil {
		handleError(w, r, err)
		return
	}

	w.Header().Set("Location", "/v1/gaps/runs/"+run.ID)
	writeJSON(w, http.StatusAccepted, run)
}

// GetGapRun handles GET /v1/gaps/runs/{id}.
func (s *Server) GetGapRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.gaps.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

type runSummary struct {
	ID           string           `json:"id"`
	Params       domgap.RunParams `json:"params"`
	Status       domgap.RunStatus `json:"status"`
	Error        string           `json:"error,omitempty"`
	Combinations int              `json:"combinations"`
	Analyzed     int              `json:"analyzed"`
	Stats        domgap.Stats     `json:"stats"`
	CreatedAt    time.Time        `json:"createdAt"`
	FinishedAt   *time.Time       `json:"finishedAt,omitempty"`
}

type runListResponse struct {
	Items []runSummary `json:"items"`
}

// ListGapRuns handles GET /v1/gaps/runs?limit=N. Gaps are omitted from the listing.
func (s *Server) ListGapRuns(w http.ResponseWriter, r *http.Request) {
	var limit *int
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, fmt.Sprintf("invalid limit: %v", err))
		return
	}
	n := defaultRunListLimit
	if limit != nil {
		n = *limit
	}
	if n < 1 || n > maxRunListLimit {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			fmt.Sprintf("limit must be between 1 and %d", maxRunListLimit))
		return
	}

	runs, err := s.gaps.List(r.Context(), n)
	if err != nil {
		handleError(w, r, err)
		return
	}

	items := make([]runSummary, len(runs))
	for i := range runs {
		run := &runs[i]
		items[i] = runSummary{
			ID:           run.ID,
			Params:       run.Params,
			Status:       run.Status,
			Error:        run.Error,
			Combinations: run.Combinations,
			Analyzed:     run.Analyzed,
			Stats:        run.Stats,
			CreatedAt:    run.CreatedAt,
			FinishedAt:   run.FinishedAt,
		}
	}
	writeJSON(w, http.StatusOK, runListResponse{Items: items})
}

// ExportGapRun handles GET /v1/gaps/runs/{id}/export?format=csv|json.
func (s *Server) ExportGapRun(w http.ResponseWriter, r *http.Request) {
	var format *string
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &format); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, fmt.Sprintf("invalid format: %v", err))
		return
	}
	f := "csv"
	if format != nil && *format != "" {
		f = *format
	}
	if f != "csv" && f != "json" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "format must be csv or json")
		return
	}

	run, err := s.gaps.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	if f == "json" {
		writeJSON(w, http.StatusOK, run.Gaps)
		return
	}

	var buf bytes.Buffer
	if err := run.WriteCSV(&buf); err != nil {
		handleError(w, r, fmt.Errorf("export run %s: %w", run.ID, err))
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportName(run)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func exportName(run *domgap.Run) string {
	prefix := "content-gaps"
	if run.Params.Variant == domgap.VariantFunnel {
		prefix = "funnel-gaps"
	}
	return fmt.Sprintf("%s-%s.csv", prefix, run.CreatedAt.UTC().Format("2006-01-02"))
}

type cancelResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// CancelGapRun handles DELETE /v1/gaps/runs/{id}. The run stops at its next
// batch boundary and keeps the gaps found so far.
func (s *Server) CancelGapRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.gaps.Cancel(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, cancelResponse{ID: id, Status: "cancelling"})
}
