package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"
)

// Config contains configuration for the LLM client.
type Config struct {
	// BaseURL is the base URL of the OpenAI-compatible API.
	BaseURL string

	// APIKey is sent as a bearer token. Empty disables the header.
	APIKey string

	// Model is the model used for completions and rule generation.
	Model string

	// EmbeddingModel is the model used for embeddings.
	// Default: Model
	EmbeddingModel string

	// MaxTokens caps completion length.
	// Default: 1024
	MaxTokens int

	// Timeout is the per-request timeout.
	// Default: 30s
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt for
	// transient failures (network errors, 5xx).
	// Default: 2
	MaxRetries int

	// RetryBackoff is the base delay for exponential backoff between
	// retries.
	// Default: 1s
	RetryBackoff time.Duration

	// MaxIdleConns controls the connection pool size.
	// Default: 10
	MaxIdleConns int
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxTokens:    1024,
		Timeout:      30 * time.Second,
		MaxRetries:   2,
		RetryBackoff: time.Second,
		MaxIdleConns: 10,
	}
}

// Client is an HTTP client for an OpenAI-compatible LLM API. It implements
// the pipeline Generator port and the validator Completer and Embedder
// ports.
type Client struct {
	config *Config
	client *http.Client
	logger *slog.Logger
}

// NewClient creates a new LLM client.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("llm: config must not be nil")
	}
	if config.BaseURL == "" {
		return nil, fmt.Errorf("llm: base URL must not be empty")
	}
	if config.Model == "" {
		return nil, fmt.Errorf("llm: model must not be empty")
	}

	cfg := *config
	defaults := DefaultConfig()
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = cfg.Model
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaults.MaxTokens
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = defaults.RetryBackoff
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = defaults.MaxIdleConns
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConns,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	return &Client{
		config: &cfg,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		logger: slog.Default().With("component", "llm"),
	}, nil
}

type completionRequest struct {
	Model     string `json:"model"`
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Complete returns the model's completion for the given prompt.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	var resp completionResponse
	err := c.doJSON(ctx, "/v1/completions", &completionRequest{
		Model:     c.config.Model,
		Prompt:    prompt,
		MaxTokens: c.config.MaxTokens,
	}, &resp)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", &ParseError{
			Endpoint: c.config.BaseURL,
			Cause:    fmt.Errorf("completion response has no choices"),
		}
	}
	return resp.Choices[0].Text, nil
}

// Generate produces rule code in the requested target format from the
// rendered prompt. The completion is stripped of markdown code fences,
// which models add even when told not to.
func (c *Client) Generate(ctx context.Context, prompt, targetFormat string) (string, error) {
	full := fmt.Sprintf("%s\n\nRespond with only the %s rule, no explanation.", prompt, targetFormat)

	completion, err := c.Complete(ctx, full)
	if err != nil {
		return "", err
	}

	rule := stripCodeFence(completion)
	if strings.TrimSpace(rule) == "" {
		return "", &ParseError{
			Endpoint:    c.config.BaseURL,
			RawResponse: completion,
			Cause:       fmt.Errorf("model returned an empty rule"),
		}
	}
	return rule, nil
}

// Embed returns the embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	var resp embeddingResponse
	err := c.doJSON(ctx, "/v1/embeddings", &embeddingRequest{
		Model: c.config.EmbeddingModel,
		Input: text,
	}, &resp)
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 {
		return nil, &ParseError{
			Endpoint: c.config.BaseURL,
			Cause:    fmt.Errorf("embedding response has no data"),
		}
	}
	return resp.Data[0].Embedding, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// doJSON posts reqBody to path and decodes the response into respBody.
// Transient failures (network errors, 5xx) are retried with exponential
// backoff; auth failures, rate limits, and 4xx are returned immediately.
func (c *Client) doJSON(ctx context.Context, path string, reqBody, respBody interface{}) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("llm: failed to marshal request: %w", err)
	}

	url := strings.TrimSuffix(c.config.BaseURL, "/") + path

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * c.config.RetryBackoff
			c.logger.Debug("retrying request",
				"path", path,
				"attempt", attempt,
				"max_retries", c.config.MaxRetries,
				"backoff", backoff,
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("llm: failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.config.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = &APIError{
				Endpoint: c.config.BaseURL,
				Message:  "request failed",
				Cause:    err,
			}
			c.logger.Warn("request failed, will retry",
				"path", path,
				"attempt", attempt+1,
				"error", err,
			)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return &ParseError{
				Endpoint: c.config.BaseURL,
				Cause:    fmt.Errorf("failed to read response: %w", readErr),
			}
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			if err := json.Unmarshal(body, respBody); err != nil {
				return &ParseError{
					Endpoint:    c.config.BaseURL,
					RawResponse: truncateBody(body),
					Cause:       fmt.Errorf("failed to unmarshal response: %w", err),
				}
			}
			return nil

		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return &AuthError{
				Endpoint: c.config.BaseURL,
				Message:  string(body),
			}

		case resp.StatusCode == http.StatusTooManyRequests:
			return &RateLimitError{
				Endpoint:   c.config.BaseURL,
				RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
				Message:    string(body),
			}

		case resp.StatusCode >= 500:
			lastErr = &APIError{
				Endpoint:   c.config.BaseURL,
				StatusCode: resp.StatusCode,
				Message:    truncateBody(body),
			}
			c.logger.Warn("request returned server error, will retry",
				"path", path,
				"status", resp.StatusCode,
				"attempt", attempt+1,
			)

		default:
			return &APIError{
				Endpoint:   c.config.BaseURL,
				StatusCode: resp.StatusCode,
				Message:    truncateBody(body),
			}
		}
	}

	return lastErr
}

// stripCodeFence removes a surrounding markdown code fence, including an
// optional language tag on the opening fence.
func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		// Drop the language tag line.
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// parseRetryAfter parses a Retry-After header in either delay-seconds or
// HTTP-date form.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}

	var seconds int
	if _, err := fmt.Sscanf(header, "%d", &seconds); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}

	return 0
}

const maxErrorBody = 512

func truncateBody(body []byte) string {
	if len(body) <= maxErrorBody {
		return string(body)
	}
	return string(body[:maxErrorBody]) + "..."
}
