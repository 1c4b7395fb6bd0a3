package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestBearerAuthMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		keys   []string
		path   string
		header string
		want   int
	}{
		{"no keys passes through", nil, "/v1/search", "", http.StatusOK},
		{"blank keys pass through", []string{"", ""}, "/v1/search", "", http.StatusOK},
		{"missing header", []string{"secret"}, "/v1/search", "", http.StatusUnauthorized},
		{"basic scheme", []string{"secret"}, "/v1/search", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"wrong key", []string{"secret"}, "/v1/search", "Bearer wrong-key", http.StatusUnauthorized},
		{"valid key", []string{"secret"}, "/v1/search", "Bearer secret", http.StatusOK},
		{"lowercase scheme", []string{"secret"}, "/v1/search", "bearer secret", http.StatusOK},
		{"empty token", []string{"secret"}, "/v1/search", "Bearer ", http.StatusUnauthorized},
		{"second of several keys", []string{"key1", "key2"}, "/v1/gaps/runs", "Bearer key2", http.StatusOK},
		{"health exempt", []string{"secret"}, "/health", "", http.StatusOK},
		{"metrics exempt", []string{"secret"}, "/metrics", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := BearerAuthMiddleware(tt.keys)(okHandler())
			req := httptest.NewRequest(http.MethodGet, tt.path, http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Fatalf("status = %d, want %d", rr.Code, tt.want)
			}
			if tt.want != http.StatusUnauthorized {
				return
			}
			var resp ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if resp.Code != CodeUnauthorized || resp.Error == "" {
				t.Errorf("response = %+v", resp)
			}
			if rr.Header().Get("WWW-Authenticate") == "" {
				t.Error("missing WWW-Authenticate challenge")
			}
		})
	}
}
