// Package gemini provides a client for submitting flattened contracts to the
// Gemini generateContent API and turning the answer into a markdown report.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/theirongolddev/gemaudit/internal/log"
)

const (
	// DefaultBaseURL is the public Gemini API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	maxBodySize    = 8 << 20 // 8 MB
	temperature    = 0.2
)

var (
	// ErrUnauthorized indicates the API key is missing, invalid or lacks access.
	ErrUnauthorized = errors.New("gemini: unauthorized (API key invalid or lacks access)")
	// ErrRateLimited indicates the API quota or rate limit was hit.
	ErrRateLimited = errors.New("gemini: rate limited or quota exhausted")
	// ErrEmptyResponse indicates the API returned no usable candidate.
	ErrEmptyResponse = errors.New("gemini: empty response")
)

// Client submits analysis requests for one API key and model.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
	now     func() time.Time
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at a different endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient creates a client for the given key and model.
// Returns nil if the key is empty.
func NewClient(apiKey, model string, opts ...Option) *Client {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil
	}
	c := &Client{
		apiKey:  apiKey,
		model:   strings.TrimPrefix(strings.TrimSpace(model), "models/"),
		baseURL: DefaultBaseURL,
		http:    &http.Client{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the model the client submits to.
func (c *Client) Model() string {
	return c.model
}

// Analyze submits the flattened code and returns the markdown report.
// No timeout is applied beyond ctx.
func (c *Client) Analyze(ctx context.Context, code, projectName string) (string, error) {
	req := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: systemPrompt}}},
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: buildPrompt(code, projectName)}},
		}},
		GenerationConfig: &generateConfig{Temperature: temperature},
	}

	started := c.now()
	resp, err := c.generate(ctx, req)
	if err != nil {
		return "", err
	}

	text := resp.text()
	if text == "" {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("%w: prompt blocked (%s)", ErrEmptyResponse, resp.PromptFeedback.BlockReason)
		}
		return "", ErrEmptyResponse
	}

	ev := log.Debug().Str("model", c.model).Dur("elapsed", c.now().Sub(started))
	if resp.UsageMetadata != nil {
		ev = ev.Int64("prompt_tokens", resp.UsageMetadata.PromptTokenCount).
			Int64("output_tokens", resp.UsageMetadata.CandidatesTokenCount)
	}
	ev.Msg("gemini analysis complete")

	return FormatReport(ReportMeta{
		ProjectName: projectName,
		Model:       c.model,
		GeneratedAt: c.now(),
		Usage:       resp.UsageMetadata,
	}, text), nil
}

// generate performs an authenticated generateContent call.
func (c *Client) generate(ctx context.Context, body generateRequest) (*generateResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("gemini: encoding request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("gemini: creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)
	req.Header.Set("User-Agent", "github.com/theirongolddev/gemaudit/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("gemini: reading response: %w", err)
	}

	log.Debug().Int("status", resp.StatusCode).Int("bytes", len(data)).Msg("gemini response")

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(resp.StatusCode, data)
	}

	var out generateResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("gemini: parsing response: %w", err)
	}
	return &out, nil
}

// statusError builds an error for an unexpected status, including the API's
// own message when the body carries one.
func statusError(status int, body []byte) error {
	var ae apiError
	if err := json.Unmarshal(body, &ae); err == nil && ae.Error.Message != "" {
		// An invalid key comes back as 400 INVALID_ARGUMENT.
		if strings.Contains(strings.ToLower(ae.Error.Message), "api key not valid") {
			return ErrUnauthorized
		}
		return fmt.Errorf("gemini: unexpected status %d: %s", status, ae.Error.Message)
	}
	return fmt.Errorf("gemini: unexpected status %d", status)
}

// text joins the parts of the first candidate.
func (r *generateResponse) text() string {
	if r == nil || len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return strings.TrimSpace(b.String())
}
