// Package gemini implements praxis.Completer using the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"log/slog"

	"praxis"
	"praxis/llm"

	"golang.org/x/sync/semaphore"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Ensure Completer implements praxis.Completer at compile time.
var _ praxis.Completer = (*Completer)(nil)

// Completer sends completion requests to Gemini. JSON output is
// requested via the response MIME type; the shared repair pass still
// runs because models occasionally fence or annotate output anyway.
type Completer struct {
	client *genai.Client
	model  string
	retry  llm.RetryConfig
	logger *slog.Logger
	sem    *semaphore.Weighted
}

// Option configures a Completer.
type Option func(*Completer)

// WithRetryConfig sets the retry configuration.
func WithRetryConfig(cfg llm.RetryConfig) Option {
	return func(c *Completer) {
		c.retry = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Completer) {
		c.logger = logger
	}
}

// WithConcurrency bounds the number of in-flight completions.
func WithConcurrency(n int) Option {
	return func(c *Completer) {
		if n < 1 {
			n = 1
		}
		c.sem = semaphore.NewWeighted(int64(n))
	}
}

// NewCompleter creates a Completer over an existing genai client.
func NewCompleter(client *genai.Client, model string, opts ...Option) *Completer {
	if model == "" {
		model = DefaultModel
	}
	c := &Completer{
		client: client,
		model:  model,
		retry:  llm.DefaultRetryConfig(),
		logger: slog.Default(),
		sem:    semaphore.NewWeighted(4),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Complete sends the instructions and payload to Gemini and decodes the
// JSON response into out.
func (c *Completer) Complete(ctx context.Context, instructions, payload string, out any) error {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer c.sem.Release(1)

	config := BuildConfig(instructions)

	var text string
	err := llm.Retry(ctx, c.retry, func(ctx context.Context) error {
		c.logger.Debug("sending completion request",
			slog.String("provider", "gemini"),
			slog.String("model", c.model))

		result, err := c.client.Models.GenerateContent(ctx, c.model,
			[]*genai.Content{{
				Parts: []*genai.Part{{Text: payload}},
			}},
			config,
		)
		if err != nil {
			return ClassifyError(err)
		}
		if result == nil {
			return praxis.Errorf(praxis.EUNAVAILABLE, "gemini returned nil result")
		}
		text = result.Text()
		return nil
	})
	if err != nil {
		return err
	}

	return llm.DecodeResponse(text, out)
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls.
// Temperature zero and a JSON response type keep output parseable.
func BuildConfig(instructions string) *genai.GenerateContentConfig {
	temp := float32(0)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: instructions}},
		},
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	}
}

// ClassifyError maps genai API failures to application error codes.
func ClassifyError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 429:
			return praxis.Errorf(praxis.ERATELIMITED, "gemini throttled request: %v", apiErr.Message)
		case apiErr.Code == 408 || apiErr.Code == 504:
			return praxis.Errorf(praxis.ETIMEOUT, "gemini timed out: %v", apiErr.Message)
		case apiErr.Code >= 500:
			return praxis.Errorf(praxis.EUNAVAILABLE, "gemini error: %v", apiErr.Message)
		default:
			return praxis.Errorf(praxis.EINVALID, "gemini rejected request: %v", apiErr.Message)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return praxis.Errorf(praxis.ETIMEOUT, "gemini request timed out: %v", err)
	}
	return praxis.Errorf(praxis.EUNAVAILABLE, "gemini request failed: %v", err)
}
