package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/simcheck/internal/domain"
	"github.com/kailas-cloud/simcheck/internal/domain/narrative"
	"github.com/kailas-cloud/simcheck/internal/metrics"
)

const narrativeService = "chat completions"

// NarratorConfig extends Config with completion settings.
type NarratorConfig struct {
	Config
	MaxTokens   int
	Temperature float32
}

// Narrator asks a chat model for the qualitative draft-versus-document analysis.
type Narrator struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	logger      *zap.Logger
}

// NewNarrator creates a chat-completion narrator.
func NewNarrator(cfg *NarratorConfig) *Narrator {
	return &Narrator{
		client:      newClient(&cfg.Config),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      cfg.Logger,
	}
}

// Analyze returns the model's analysis text for req.
func (n *Narrator) Analyze(ctx context.Context, req narrative.Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	start := time.Now()
	resp, err := n.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: n.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: narrative.SystemPersona},
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt()},
		},
		MaxTokens:   n.maxTokens,
		Temperature: n.temperature,
	})
	metrics.NarrativeDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.NarrativeCallsTotal.WithLabelValues("error").Inc()
		return "", upstreamError(narrativeService, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		metrics.NarrativeCallsTotal.WithLabelValues("empty").Inc()
		return "", domain.NewUpstreamError(narrativeService, 0, "", fmt.Errorf("empty completion"))
	}

	metrics.NarrativeCallsTotal.WithLabelValues("success").Inc()
	n.logger.Debug("Narrative completed",
		zap.String("model", n.model),
		zap.String("title", req.Title),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)
	return resp.Choices[0].Message.Content, nil
}
