package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/simcheck/internal/domain"
	"github.com/kailas-cloud/simcheck/internal/logger"
)

// ErrorCode is the machine-readable part of an error response.
type ErrorCode string

// Error codes returned by the API.
const (
	CodeBadRequest         ErrorCode = "bad_request"
	CodeValidationFailed   ErrorCode = "validation_failed"
	CodeUnauthorized       ErrorCode = "unauthorized"
	CodeNotFound           ErrorCode = "not_found"
	CodeCollectionNotFound ErrorCode = "collection_not_found"
	CodeRunNotFound        ErrorCode = "run_not_found"
	CodeRunFinished        ErrorCode = "run_finished"
	CodeVectorDimMismatch  ErrorCode = "vector_dim_mismatch"
	CodeNotConfigured      ErrorCode = "not_configured"
	CodeRateLimited        ErrorCode = "rate_limited"
	CodeUpstreamError      ErrorCode = "upstream_error"
	CodeTimeout            ErrorCode = "timeout"
	CodeInternalError      ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code  ErrorCode `json:"code"`
	Error string    `json:"error"`
}

type errorMapping struct {
	sentinel error
	status   int
	code     ErrorCode
}

// errorMappings is ordered: the first match wins.
var errorMappings = []errorMapping{
	{domain.ErrInvalidInput, http.StatusBadRequest, CodeValidationFailed},
	{domain.ErrInvalidSchema, http.StatusBadRequest, CodeValidationFailed},
	{domain.ErrVectorDimMismatch, http.StatusInternalServerError, CodeVectorDimMismatch},
	{domain.ErrCollectionNotFound, http.StatusNotFound, CodeCollectionNotFound},
	{domain.ErrRunNotFound, http.StatusNotFound, CodeRunNotFound},
	{domain.ErrNotFound, http.StatusNotFound, CodeNotFound},
	{domain.ErrRunFinished, http.StatusConflict, CodeRunFinished},
	{domain.ErrNotConfigured, http.StatusServiceUnavailable, CodeNotConfigured},
	{domain.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited},
	{domain.ErrUpstream, http.StatusBadGateway, CodeUpstreamError},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Error: message})
}

// handleError maps a service error onto a status and code. Unknown errors are
// logged and reported as a generic 500.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	// A size mismatch is the caller's fault only for a vector it supplied;
	// otherwise the embedder and the index disagree.
	if errors.Is(err, domain.ErrVectorDimMismatch) && errors.Is(err, domain.ErrInvalidInput) {
		log.Warn("request rejected", zap.Error(err))
		writeError(w, http.StatusBadRequest, CodeVectorDimMismatch, err.Error())
		return
	}

	for _, m := range errorMappings {
		if !errors.Is(err, m.sentinel) {
			continue
		}
		if m.status >= http.StatusInternalServerError {
			log.Error("request failed", zap.Error(err))
		} else {
			log.Warn("request rejected", zap.Error(err))
		}
		writeError(w, m.status, m.code, clientMessage(err, m))
		return
	}

	switch {
	case r.Context().Err() != nil:
		log.Info("request cancelled by client", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, CodeTimeout, "request cancelled")
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn("upstream call timed out", zap.Error(err))
		writeError(w, http.StatusGatewayTimeout, CodeTimeout, "upstream call timed out")
	default:
		log.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
	}
}

// clientMessage keeps details for client errors and hides internals of server-side ones.
func clientMessage(err error, m errorMapping) string {
	if m.status < http.StatusInternalServerError {
		return err.Error()
	}
	var ce *domain.ConfigurationError
	if errors.As(err, &ce) {
		return ce.Error()
	}
	var ue *domain.UpstreamCallError
	if errors.As(err, &ue) {
		return ue.Service + ": " + domain.ErrUpstream.Error()
	}
	return m.sentinel.Error()
}
