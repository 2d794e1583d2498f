// Package llm implements ports.PromptRunner over an OpenAI-compatible
// streaming chat completions API (Groq by default).
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aibee/wizard/internal/logging"
	"github.com/aibee/wizard/pkg/domain"
	"github.com/aibee/wizard/pkg/ports"
)

const (
	// DefaultBaseURL is the Groq OpenAI-compatible endpoint.
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	// DefaultModel is the completion model used when none is configured.
	DefaultModel = "deepseek-r1-distill-llama-70b"
	// SystemPrompt is sent ahead of every prompt.
	SystemPrompt = "You are a concise assistant..."
)

// Config holds the completion request parameters.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	TopP        float64
	MaxTokens   int
	Timeout     time.Duration
}

// DefaultConfig returns the Groq defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:     DefaultBaseURL,
		Model:       DefaultModel,
		Temperature: 0.6,
		TopP:        0.95,
		MaxTokens:   4096,
		Timeout:     5 * time.Minute,
	}
}

var _ ports.PromptRunner = (*Runner)(nil)

// Runner sends prompts to the completion API and returns cleaned results.
type Runner struct {
	cfg        Config
	httpClient *http.Client
	retry      RetryConfig
	logger     *slog.Logger
	onDelta    func(delta string)
}

// Option configures the Runner.
type Option func(*Runner)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Runner) {
		r.httpClient = c
	}
}

// WithRetryConfig sets the retry configuration.
func WithRetryConfig(cfg RetryConfig) Option {
	return func(r *Runner) {
		r.retry = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithDeltaHandler is called with every streamed fragment, e.g. to echo progress.
func WithDeltaHandler(fn func(delta string)) Option {
	return func(r *Runner) {
		r.onDelta = fn
	}
}

// New creates a Runner. Zero fields of cfg fall back to DefaultConfig.
func New(cfg Config, opts ...Option) *Runner {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	r := &Runner{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		retry:      DefaultRetryConfig(),
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model               string        `json:"model"`
	Messages            []chatMessage `json:"messages"`
	Temperature         float64       `json:"temperature"`
	TopP                float64       `json:"top_p,omitempty"`
	MaxCompletionTokens int           `json:"max_completion_tokens,omitempty"`
	Stream              bool          `json:"stream"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Error json.RawMessage `json:"error,omitempty"`
}

// RunPrompt implements ports.PromptRunner. Transient failures are retried
// with exponential backoff; the last error is returned when attempts run out.
func (r *Runner) RunPrompt(ctx context.Context, prompt string) (domain.PromptResult, error) {
	attempts := r.retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		text, err := r.complete(ctx, prompt)
		if err == nil {
			return Parse(text), nil
		}
		lastErr = err

		if IsFatal(err) || ctx.Err() != nil {
			return domain.PromptResult{}, err
		}
		if attempt < attempts {
			wait := r.retry.backoff(attempt)
			r.logger.Debug("Completion failed, retrying", "attempt", attempt, "max_attempts", attempts, "backoff", wait, "err", err)
			select {
			case <-ctx.Done():
				return domain.PromptResult{}, ctx.Err()
			case <-time.After(wait):
			}
		}
	}
	return domain.PromptResult{}, lastErr
}

// complete performs one streaming request and returns the accumulated text.
func (r *Runner) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: r.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature:         r.cfg.Temperature,
		TopP:                r.cfg.TopP,
		MaxCompletionTokens: r.cfg.MaxTokens,
		Stream:              true,
	})
	if err != nil {
		return "", NewFatalError(fmt.Errorf("encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", NewFatalError(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if r.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)
	}

	r.logger.Debug("Sending completion request", "model", r.cfg.Model, "prompt_len", len(prompt))

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", NewTransientError(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return "", classifyHTTPError(resp.StatusCode, raw)
	}

	var full strings.Builder
	errDone := errors.New("done")
	err = streamSSE(resp.Body, func(data string) error {
		if data == "[DONE]" {
			return errDone
		}
		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return nil
		}
		if len(chunk.Error) > 0 && string(chunk.Error) != "null" {
			return NewFatalError(fmt.Errorf("upstream stream error: %s", chunk.Error))
		}
		for _, c := range chunk.Choices {
			if c.Delta.Content == "" {
				continue
			}
			full.WriteString(c.Delta.Content)
			if r.onDelta != nil {
				r.onDelta(c.Delta.Content)
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, errDone) {
		if IsFatal(err) {
			return "", err
		}
		return "", NewTransientError(fmt.Errorf("read stream: %w", err))
	}
	return full.String(), nil
}
