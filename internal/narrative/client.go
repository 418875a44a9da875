// Package narrative drafts consultant-style reports through an
// OpenAI-compatible chat completions endpoint.
package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultBaseURL  = "https://api.openai.com/v1"
	maxResponseSize = 4 << 20
)

// Generator produces a completion for a system and user message pair.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// RetryConfig controls retry behaviour for transient failures.
type RetryConfig struct {
	MaxAttempts       int
	BackoffBase       time.Duration
	BackoffMultiplier float64
	MaxBackoff        time.Duration
}

// DefaultRetryConfig returns the retry policy used when none is given.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		BackoffBase:       time.Second,
		BackoffMultiplier: 2.0,
		MaxBackoff:        15 * time.Second,
	}
}

// OpenAIClient talks to an OpenAI-compatible /chat/completions endpoint.
type OpenAIClient struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
	retry      RetryConfig
	logger     *slog.Logger
}

// ClientOption configures an OpenAIClient.
type ClientOption func(*OpenAIClient)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(o *OpenAIClient) { o.httpClient = c }
}

// WithRetryConfig sets the retry policy.
func WithRetryConfig(cfg RetryConfig) ClientOption {
	return func(o *OpenAIClient) { o.retry = cfg }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ClientOption {
	return func(o *OpenAIClient) { o.logger = l }
}

// NewOpenAIClient creates a client. An empty baseURL targets api.openai.com.
func NewOpenAIClient(baseURL, model, apiKey string, opts ...ClientOption) *OpenAIClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	c := &OpenAIClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		retry:      DefaultRetryConfig(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.retry.MaxAttempts < 1 {
		c.retry.MaxAttempts = 1
	}
	return c
}

// Configured reports whether an API key is present.
func (c *OpenAIClient) Configured() bool { return c.apiKey != "" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate sends one chat completion, retrying transient failures.
func (c *OpenAIClient) Generate(ctx context.Context, system, user string) (string, error) {
	if !c.Configured() {
		return "", ErrMissingKey
	}
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", &FatalError{err: fmt.Errorf("encode request: %w", err)}
	}

	requestID := uuid.NewString()
	var lastErr error
	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		out, err := c.do(ctx, requestID, body)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if IsFatal(err) {
			return "", err
		}
		if attempt < c.retry.MaxAttempts {
			backoff := c.backoff(attempt)
			c.logger.Debug("narrative: request failed, retrying",
				slog.String("request_id", requestID),
				slog.Int("attempt", attempt),
				slog.Duration("backoff", backoff),
				slog.String("error", err.Error()))
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
	return "", lastErr
}

func (c *OpenAIClient) backoff(attempt int) time.Duration {
	mult := 1.0
	for i := 1; i < attempt; i++ {
		mult *= c.retry.BackoffMultiplier
	}
	d := time.Duration(float64(c.retry.BackoffBase) * mult)
	if c.retry.MaxBackoff > 0 && d > c.retry.MaxBackoff {
		d = c.retry.MaxBackoff
	}
	jitter := float64(d) * 0.25 * (rand.Float64()*2 - 1)
	return d + time.Duration(jitter)
}

func (c *OpenAIClient) do(ctx context.Context, requestID string, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", &FatalError{err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &TransientError{err: fmt.Errorf("http request: %w", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", &TransientError{err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp.StatusCode, raw)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", &FatalError{err: fmt.Errorf("decode response: %w", err)}
	}
	if len(parsed.Choices) == 0 {
		return "", &FatalError{err: fmt.Errorf("response has no choices")}
	}
	return parsed.Choices[0].Message.Content, nil
}

func classifyStatus(code int, body []byte) error {
	msg := string(body)
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	err := fmt.Errorf("provider error (status %d): %s", code, msg)
	if code == http.StatusTooManyRequests || code >= 500 {
		return &TransientError{err: err}
	}
	return &FatalError{err: err}
}
