// Package qdrant is a vector index backed by the Qdrant REST API.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/simcheck/internal/domain"
	"github.com/kailas-cloud/simcheck/internal/domain/document"
	"github.com/kailas-cloud/simcheck/internal/domain/search/result"
)

const service = "qdrant"

// Config holds connection settings.
type Config struct {
	URL        string
	APIKey     string
	Dimensions int
	Timeout    time.Duration
	Logger     *zap.Logger
	HTTPClient *http.Client
}

// Client talks to one Qdrant deployment. Collections are addressed per call.
type Client struct {
	baseURL    string
	apiKey     string
	dimensions int
	http       *http.Client
	logger     *zap.Logger
}

// New creates a Qdrant client.
func New(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		dimensions: cfg.Dimensions,
		http:       hc,
		logger:     logger,
	}
}

// Dimensions returns the configured vector size.
func (c *Client) Dimensions() int { return c.dimensions }

type vectorParams struct {
	Size     int    `json:"size"`
	Distance string `json:"distance"`
}

type collectionInfo struct {
	Result struct {
		PointsCount int `json:"points_count"`
		Config      struct {
			Params struct {
				Vectors vectorParams `json:"vectors"`
			} `json:"params"`
		} `json:"config"`
	} `json:"result"`
}

// EnsureCollection creates the collection with cosine distance when it is
// missing. An existing collection with a different vector size is a
// DimensionMismatchError.
func (c *Client) EnsureCollection(ctx context.Context, collection string) error {
	var info collectionInfo
	err := c.do(ctx, http.MethodGet, collectionPath(collection), nil, &info)
	if err == nil {
		size := info.Result.Config.Params.Vectors.Size
		if size > 0 && size != c.dimensions {
			return &domain.DimensionMismatchError{Expected: size, Got: c.dimensions}
		}
		return nil
	}
	if !isNotFound(err) {
		return fmt.Errorf("inspect collection %s: %w", collection, err)
	}

	c.logger.Info("creating qdrant collection",
		zap.String("collection", collection), zap.Int("dimensions", c.dimensions))
	body := map[string]any{"vectors": vectorParams{Size: c.dimensions, Distance: "Cosine"}}
	if err := c.do(ctx, http.MethodPut, collectionPath(collection), body, nil); err != nil {
		return fmt.Errorf("create collection %s: %w", collection, err)
	}
	return nil
}

type point struct {
	ID      int64          `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

// Upsert writes points and waits until they are searchable.
func (c *Client) Upsert(ctx context.Context, collection string, points []document.Point) error {
	if len(points) == 0 {
		return nil
	}
	out := make([]point, 0, len(points))
	for i := range points {
		if err := domain.CheckDimensions(points[i].Vector, c.dimensions); err != nil {
			return err
		}
		d := points[i].Document
		out = append(out, point{ID: d.ID(), Vector: points[i].Vector, Payload: payloadOf(&d)})
	}
	path := collectionPath(collection) + "/points?wait=true"
	if err := c.do(ctx, http.MethodPut, path, map[string]any{"points": out}, nil); err != nil {
		return fmt.Errorf("upsert %s: %w", collection, c.collectionErr(collection, err))
	}
	return nil
}

type searchResponse struct {
	Result []struct {
		ID      json.RawMessage `json:"id"`
		Score   float64         `json:"score"`
		Payload payload         `json:"payload"`
	} `json:"result"`
}

// Search returns the limit nearest chunks, most similar first.
func (c *Client) Search(ctx context.Context, collection string, vector []float32, limit int) ([]result.Result, error) {
	if err := domain.CheckDimensions(vector, c.dimensions); err != nil {
		return nil, err
	}
	req := map[string]any{"vector": vector, "limit": limit, "with_payload": true}

	var resp searchResponse
	if err := c.do(ctx, http.MethodPost, collectionPath(collection)+"/points/search", req, &resp); err != nil {
		return nil, fmt.Errorf("search %s: %w", collection, c.collectionErr(collection, err))
	}

	results := make([]result.Result, 0, len(resp.Result))
	for _, hit := range resp.Result {
		results = append(results, result.New(hit.Payload.document(parseID(hit.ID)), hit.Score))
	}
	result.SortByScore(results)
	return results, nil
}

// Count returns the exact number of points in a collection.
func (c *Client) Count(ctx context.Context, collection string) (int, error) {
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	if err := c.do(ctx, http.MethodPost, collectionPath(collection)+"/points/count",
		map[string]any{"exact": true}, &resp); err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, c.collectionErr(collection, err))
	}
	return resp.Result.Count, nil
}

// DropCollection deletes a collection and its points. A missing collection
// is not an error.
func (c *Client) DropCollection(ctx context.Context, collection string) error {
	if err := c.do(ctx, http.MethodDelete, collectionPath(collection), nil, nil); err != nil && !isNotFound(err) {
		return fmt.Errorf("delete collection %s: %w", collection, err)
	}
	return nil
}

// Ping checks that the server answers.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/collections", nil, nil)
}

func (c *Client) collectionErr(collection string, err error) error {
	if isNotFound(err) {
		return fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, collection)
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.NewUpstreamError(service, 0, "", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.NewUpstreamError(service, resp.StatusCode, errorMessage(raw), nil)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.NewUpstreamError(service, resp.StatusCode, "", fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func collectionPath(collection string) string {
	return "/collections/" + url.PathEscape(collection)
}

func isNotFound(err error) bool {
	var ue *domain.UpstreamCallError
	return errors.As(err, &ue) && ue.StatusCode == http.StatusNotFound
}

// errorMessage extracts status.error from a Qdrant error body, falling back to the raw text.
func errorMessage(raw []byte) string {
	var parsed struct {
		Status struct {
			Error string `json:"error"`
		} `json:"status"`
	}
	if json.Unmarshal(raw, &parsed) == nil && parsed.Status.Error != "" {
		return parsed.Status.Error
	}
	return strings.TrimSpace(string(raw))
}
