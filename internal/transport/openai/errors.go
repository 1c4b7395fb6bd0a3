package openai

import (
	"encoding/json"
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/simcheck/internal/domain"
)

// upstreamError converts a go-openai failure into a domain.UpstreamCallError
// carrying the status code and the most useful part of the body.
// 429 responses also match domain.ErrRateLimited.
func upstreamError(service string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return domain.NewUpstreamError(service, apiErr.HTTPStatusCode, apiErr.Message, causeFor(apiErr.HTTPStatusCode, err))
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		body := extractDetail(reqErr.Body)
		if body == "" {
			body = string(reqErr.Body)
		}
		return domain.NewUpstreamError(service, reqErr.HTTPStatusCode, body, causeFor(reqErr.HTTPStatusCode, err))
	}

	return domain.NewUpstreamError(service, 0, "", err)
}

func causeFor(status int, err error) error {
	if status == http.StatusTooManyRequests {
		return errors.Join(domain.ErrRateLimited, err)
	}
	return err
}

// extractDetail pulls "detail" out of a JSON error body (OpenAI-compatible proxies use it).
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
