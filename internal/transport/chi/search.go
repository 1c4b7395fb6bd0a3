package chi

import (
	"net/http"
	"strings"

	"github.com/kailas-cloud/simcheck/internal/domain"
	"github.com/kailas-cloud/simcheck/internal/domain/retrieval"
	"github.com/kailas-cloud/simcheck/internal/domain/search/result"
	domsim "github.com/kailas-cloud/simcheck/internal/domain/similarity"
	searchuc "github.com/kailas-cloud/simcheck/internal/usecase/search"
)

type embeddingRequest struct {
	Text string `json:"text"`
}

type embeddingResponse struct {
	Embedding  []float32 `json:"embedding"`
	Dimensions int       `json:"dimensions"`
}

// GenerateEmbedding handles POST /v1/embeddings.
func (s *Server) GenerateEmbedding(w http.ResponseWriter, r *http.Request) {
	var req embeddingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	res, err := s.search.Embed(ctx, req.Text)
	if err != nil {
		handleError(w, r, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, embeddingResponse{Embedding: res.Embedding, Dimensions: len(res.Embedding)})
}

type searchRequest struct {
	Query     string    `json:"query"`
	Embedding []float32 `json:"embedding"`
	Source    string    `json:"source"`
	Limit     int       `json:"limit"`
}

type searchHit struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Category    string  `json:"category"`
	URL         string  `json:"url,omitempty"`
	File        string  `json:"filename,omitempty"`
	Content     string  `json:"content"`
	ChunkIndex  int     `json:"chunkIndex"`
	TotalChunks int     `json:"totalChunks"`
	Score       float64 `json:"score"`
	Similarity  string  `json:"similarity"`
}

type searchResponse struct {
	Matches []searchHit `json:"matches"`
	Total   int         `json:"total"`
}

// SearchSimilar handles POST /v1/search.
func (s *Server) SearchSimilar(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	results, err := s.search.Search(ctx, searchuc.Query{
		Text:   req.Query,
		Vector: req.Embedding,
		Source: req.Source,
		Limit:  req.Limit,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	hits := make([]searchHit, len(results))
	for i := range results {
		hits[i] = searchHitOf(&results[i])
	}
	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, searchResponse{Matches: hits, Total: len(hits)})
}

func searchHitOf(r *result.Result) searchHit {
	d := r.Document()
	return searchHit{
		ID:          d.ID(),
		Title:       d.Title(),
		Category:    d.Category(),
		URL:         d.SourceURL(),
		File:        d.SourceFile(),
		Content:     d.Content(),
		ChunkIndex:  d.ChunkIndex(),
		TotalChunks: d.TotalChunks(),
		Score:       r.Score(),
		Similarity:  domsim.FormatPercent(r.Percent()),
	}
}

type contextRequest struct {
	Query   string `json:"query"`
	Feature string `json:"feature"`
	Source  string `json:"source"`
	Limit   int    `json:"limit"`
}

// RetrievalContext handles POST /v1/context. A feature name takes precedence
// over a free-text query.
func (s *Server) RetrievalContext(w http.ResponseWriter, r *http.Request) {
	var req contextRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	var (
		out retrieval.Context
		err error
	)
	if strings.TrimSpace(req.Feature) != "" {
		out, err = s.search.FeatureContext(ctx, req.Source, req.Feature, req.Limit)
	} else {
		out, err = s.search.Context(ctx, req.Source, req.Query, req.Limit)
	}
	if err != nil {
		handleError(w, r, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, out)
}
