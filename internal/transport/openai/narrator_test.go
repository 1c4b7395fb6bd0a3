package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/simcheck/internal/domain"
	"github.com/kailas-cloud/simcheck/internal/domain/narrative"
)

func testNarrator(url string) *Narrator {
	return NewNarrator(&NarratorConfig{
		Config: Config{
			APIKey:  "test-key",
			BaseURL: url,
			Model:   "gpt-4o-mini",
			Logger:  zap.NewNop(),
		},
		MaxTokens:   4000,
		Temperature: 0.2,
	})
}

func chatResponse(content string) map[string]any {
	return map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
		"usage": map[string]any{"prompt_tokens": 900, "completion_tokens": 300, "total_tokens": 1200},
	}
}

func TestNarrator_Analyze(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req struct {
			Model       string  `json:"model"`
			MaxTokens   int     `json:"max_tokens"`
			Temperature float32 `json:"temperature"`
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.Model != "gpt-4o-mini" || req.MaxTokens != 4000 {
			t.Errorf("request = %+v", req)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[0].Content != narrative.SystemPersona {
			t.Fatalf("messages = %+v", req.Messages)
		}
		// the full document text reaches the model, never a display copy
		if !strings.Contains(req.Messages[1].Content, strings.Repeat("long body ", 500)) {
			t.Error("document content was truncated")
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatResponse("**Overall**: mostly unique"))
	}))
	defer server.Close()

	got, err := testNarrator(server.URL).Analyze(context.Background(), narrative.Request{
		DraftText:         "my draft",
		Title:             "Existing post",
		Content:           strings.Repeat("long body ", 500),
		SimilarityPercent: "72.5",
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got != "**Overall**: mostly unique" {
		t.Errorf("analysis = %q", got)
	}
}

func TestNarrator_InvalidRequest(t *testing.T) {
	_, err := testNarrator("http://unused").Analyze(context.Background(), narrative.Request{Content: "x"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestNarrator_UpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	_, err := testNarrator(server.URL).Analyze(context.Background(), narrative.Request{
		DraftText: "d", Content: "c", SimilarityPercent: "60.0",
	})
	var upErr *domain.UpstreamCallError
	if !errors.As(err, &upErr) || upErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 UpstreamCallError, got %v", err)
	}
	if upErr.Service != "chat completions" {
		t.Errorf("service = %s", upErr.Service)
	}
}

func TestNarrator_EmptyCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatResponse("   "))
	}))
	defer server.Close()

	_, err := testNarrator(server.URL).Analyze(context.Background(), narrative.Request{
		DraftText: "d", Content: "c",
	})
	if !errors.Is(err, domain.ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", err)
	}
}
