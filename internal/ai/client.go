// Package ai wraps the language-model capabilities the workflow engine
// depends on: ticket classification, draft generation, draft review, and
// query refinement. Each capability is a stateless request/response call
// that validates the model's structured output and returns an error on
// malformed payloads; callers decide how to fall back.
package ai

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-sonnet-4-5-20250929"

// Client holds the Anthropic client plus the plumbing shared by every
// capability: retry with backoff, a circuit breaker, a concurrency cap,
// and an outbound rate limiter.
type Client struct {
	client         *anthropic.Client
	model          string
	maxTokens      int
	retry          RetryConfig
	circuitBreaker *CircuitBreaker
	concurrencySem *semaphore.Weighted
	limiter        *rate.Limiter
}

// Config holds client configuration.
type Config struct {
	APIKey             string      // if empty, reads ANTHROPIC_API_KEY
	Model              string      // default: DefaultModel
	MaxTokens          int         // default: 2048
	MaxConcurrentCalls int         // 0 = unlimited
	RequestsPerSecond  float64     // 0 = unlimited
	Retry              RetryConfig // zero value = DefaultRetryConfig
}

// NewClient creates an AI client.
func NewClient(cfg *Config) (*Client, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2048
	}

	retry := cfg.Retry
	if retry.MaxRetries == 0 {
		retry = DefaultRetryConfig()
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	var cb *CircuitBreaker
	if retry.CircuitBreakerEnabled {
		cb = NewCircuitBreaker(retry.FailureThreshold, retry.SuccessThreshold, retry.OpenTimeout)
	}

	var sem *semaphore.Weighted
	if cfg.MaxConcurrentCalls > 0 {
		sem = semaphore.NewWeighted(int64(cfg.MaxConcurrentCalls))
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		client:         &client,
		model:          model,
		maxTokens:      maxTokens,
		retry:          retry,
		circuitBreaker: cb,
		concurrencySem: sem,
		limiter:        limiter,
	}, nil
}

// callModel makes one model call with the shared retry/limit plumbing and
// returns the concatenated text blocks of the response.
func (c *Client) callModel(ctx context.Context, operation, system, prompt string) (string, error) {
	startTime := time.Now()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	var response *anthropic.Message
	err := c.retryWithBackoff(ctx, operation, func(attemptCtx context.Context) error {
		resp, apiErr := c.client.Messages.New(attemptCtx, params)
		if apiErr != nil {
			return apiErr
		}
		response = resp
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%s call failed: %w", operation, err)
	}

	var responseText string
	for _, block := range response.Content {
		if block.Type == "text" {
			responseText += block.Text
		}
	}

	logModelCall(operation, response.Usage.InputTokens, response.Usage.OutputTokens, time.Since(startTime))
	return responseText, nil
}
