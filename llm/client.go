// Package llm provides a praxis.Completer backed by a local
// OpenAI-compatible inference server such as Ollama or LM Studio.
// Hosted completion lives in the gemini package; both share the same
// retry policy and JSON repair behavior.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"praxis"

	"golang.org/x/sync/semaphore"
)

var _ praxis.Completer = (*Client)(nil)

// maxResponseSize limits the response body to prevent memory exhaustion.
const maxResponseSize = 10 * 1024 * 1024 // 10MB

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	endpoint   Endpoint
	model      string
	httpClient *http.Client
	retry      RetryConfig
	logger     *slog.Logger
	sem        *semaphore.Weighted
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithRetryConfig sets the retry configuration.
func WithRetryConfig(cfg RetryConfig) Option {
	return func(client *Client) {
		client.retry = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(client *Client) {
		client.logger = logger
	}
}

// WithConcurrency bounds the number of in-flight completions.
func WithConcurrency(n int) Option {
	return func(client *Client) {
		if n < 1 {
			n = 1
		}
		client.sem = semaphore.NewWeighted(int64(n))
	}
}

// NewClient creates a client for the given endpoint and model.
func NewClient(endpoint Endpoint, model string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		model:    model,
		retry:    DefaultRetryConfig(),
		httpClient: &http.Client{
			Timeout: 180 * time.Second, // local models can be slow
		},
		logger: slog.Default(),
		sem:    semaphore.NewWeighted(4),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Complete sends the instructions and payload to the model and decodes
// the JSON response into out, with one repair pass over malformed output.
func (c *Client) Complete(ctx context.Context, instructions, payload string, out any) error {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer c.sem.Release(1)

	var content string
	err := Retry(ctx, c.retry, func(ctx context.Context) error {
		var err error
		content, err = c.doRequest(ctx, instructions, payload)
		return err
	})
	if err != nil {
		return err
	}

	return DecodeResponse(content, out)
}

// DecodeResponse decodes model output into out. When the content does
// not parse as-is, one repair pass strips code fences, comments, and
// trailing commas before giving up with an EMALFORMED error carrying
// the raw text.
func DecodeResponse(content string, out any) error {
	if err := json.Unmarshal([]byte(content), out); err == nil {
		return nil
	}

	repaired := ExtractJSON(content)
	if repaired == "" {
		return praxis.MalformedErrorf(content, "model output contains no JSON")
	}
	if err := json.Unmarshal([]byte(repaired), out); err != nil {
		return praxis.MalformedErrorf(content, "model output failed to decode after repair: %v", err)
	}
	return nil
}

// chatRequest is the OpenAI-compatible request format.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the OpenAI-compatible response format.
type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// doRequest executes a single HTTP round trip and returns the message
// content.
func (c *Client) doRequest(ctx context.Context, instructions, payload string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: instructions},
			{Role: "user", Content: payload},
		},
		Temperature: 0, // extraction wants determinism, not creativity
	})
	if err != nil {
		return "", praxis.Errorf(praxis.EINTERNAL, "marshal request: %v", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.URL(), bytes.NewReader(body))
	if err != nil {
		return "", praxis.Errorf(praxis.EINTERNAL, "create request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.Debug("sending completion request",
		slog.String("endpoint", c.endpoint.Name()),
		slog.String("model", c.model))

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", praxis.Errorf(praxis.ETIMEOUT, "completion request timed out: %v", err)
		}
		return "", praxis.Errorf(praxis.EUNAVAILABLE, "completion request failed: %v", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return "", praxis.Errorf(praxis.EUNAVAILABLE, "read response: %v", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return "", classifyHTTPError(httpResp.StatusCode, httpResp.Header, respBody)
	}

	var resp chatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", praxis.MalformedErrorf(string(respBody), "parse completion response: %v", err)
	}
	if len(resp.Choices) == 0 {
		return "", praxis.MalformedErrorf(string(respBody), "no choices in completion response")
	}

	return resp.Choices[0].Message.Content, nil
}

// classifyHTTPError maps HTTP failures to application error codes.
func classifyHTTPError(statusCode int, header http.Header, body []byte) error {
	bodyStr := string(body)
	if len(bodyStr) > 200 {
		bodyStr = bodyStr[:200] + "..."
	}

	switch {
	case statusCode == http.StatusTooManyRequests:
		err := praxis.Errorf(praxis.ERATELIMITED, "provider throttled request (status %d): %s", statusCode, bodyStr)
		return withRetryAfter(err, parseRetryAfter(header.Get("Retry-After")))
	case statusCode == http.StatusRequestTimeout, statusCode == http.StatusGatewayTimeout:
		return praxis.Errorf(praxis.ETIMEOUT, "provider timed out (status %d): %s", statusCode, bodyStr)
	case statusCode >= 500:
		return praxis.Errorf(praxis.EUNAVAILABLE, "provider error (status %d): %s", statusCode, bodyStr)
	default:
		return praxis.Errorf(praxis.EINVALID, "provider rejected request (status %d): %s", statusCode, bodyStr)
	}
}

// parseRetryAfter reads a Retry-After header given in seconds.
// HTTP-date values are ignored; the backoff schedule covers them.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
