package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// publicPaths are probed by load balancers and Prometheus without credentials.
var publicPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// BearerAuthMiddleware requires "Authorization: Bearer <key>" with one of
// apiKeys on every non-public route. No keys disables the check.
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	keys := make([][]byte, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, []byte(k))
		}
	}

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			token, reason := bearerToken(r.Header.Get("Authorization"))
			if reason == "" && !knownKey(keys, token) {
				reason = "invalid api key"
			}
			if reason != "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="simcheck"`)
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, reason)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken splits the header; the scheme is matched case-insensitively.
func bearerToken(header string) ([]byte, string) {
	if header == "" {
		return nil, "missing authorization header"
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return nil, "authorization header must use Bearer scheme"
	}
	return []byte(strings.TrimSpace(token)), ""
}

// knownKey compares against every key so timing does not reveal which matched.
func knownKey(keys [][]byte, token []byte) bool {
	match := 0
	for _, k := range keys {
		match |= subtle.ConstantTimeCompare(k, token)
	}
	return match == 1
}
