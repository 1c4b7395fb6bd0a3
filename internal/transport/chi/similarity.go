package chi

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/kailas-cloud/simcheck/internal/domain"
	"github.com/kailas-cloud/simcheck/internal/domain/narrative"
	domsim "github.com/kailas-cloud/simcheck/internal/domain/similarity"
)

type checkRequest struct {
	DraftText string `json:"draftText"`
	Source    string `json:"source"`
}

// CheckSimilarity handles POST /v1/similarity/check.
func (s *Server) CheckSimilarity(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	report, err := s.similarity.Check(ctx, req.DraftText, req.Source)
	if err != nil {
		handleError(w, r, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, report)
}

// percent accepts a similarity given as a JSON number or a numeric string.
type percent float64

func (p *percent) UnmarshalJSON(data []byte) error {
	raw := string(bytes.Trim(data, `"`))
	if raw == "" || raw == "null" {
		*p = 0
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("similarity must be a number: %w", err)
	}
	*p = percent(v)
	return nil
}

type analyzeRequest struct {
	DraftText string `json:"draftText"`
	Document  struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	} `json:"document"`
	Similarity percent `json:"similarity"`
}

// AnalyzeSimilarity handles POST /v1/similarity/analyze.
func (s *Server) AnalyzeSimilarity(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	analysis, err := s.similarity.AnalyzeOne(r.Context(), narrative.Request{
		DraftText:         req.DraftText,
		Title:             req.Document.Title,
		Content:           req.Document.Content,
		SimilarityPercent: domsim.FormatPercent(float64(req.Similarity)),
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}
