package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c := NewClient("test-key", "gemini-1.5-flash", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	c.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return c
}

func TestNewClient_EmptyKey(t *testing.T) {
	if c := NewClient("  ", "gemini-1.5-pro"); c != nil {
		t.Fatal("NewClient with blank key returned non-nil client")
	}
	if c := NewClient("k", "models/gemini-1.5-pro"); c.Model() != "gemini-1.5-pro" {
		t.Fatalf("Model = %q, want models/ prefix stripped", c.Model())
	}
}

func TestAnalyze_Success(t *testing.T) {
	var gotPath, gotKey string
	var gotReq generateRequest

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotReq)

		_, _ = io.WriteString(w, `{
			"candidates":[{"content":{"parts":[{"text":"## Executive Summary\n"},{"text":"No critical issues."}]},"finishReason":"STOP"}],
			"usageMetadata":{"promptTokenCount":1200,"candidatesTokenCount":300,"totalTokenCount":1500}
		}`)
	})

	report, err := c.Analyze(context.Background(), "contract A {}", "vault")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if gotPath != "/models/gemini-1.5-flash:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("api key header = %q, want test-key", gotKey)
	}
	if len(gotReq.Contents) != 1 || !strings.Contains(gotReq.Contents[0].Parts[0].Text, "contract A {}") {
		t.Errorf("request did not carry the flattened code: %+v", gotReq.Contents)
	}

	for _, want := range []string{
		"# Gemini AI Analysis: vault",
		"gemini-1.5-flash",
		"2025-06-01T12:00:00Z",
		"1200 prompt / 300 output",
		"## Executive Summary\nNo critical issues.",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestAnalyze_StatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
		substr string
	}{
		{name: "unauthorized", status: http.StatusForbidden, want: ErrUnauthorized},
		{name: "rate limited", status: http.StatusTooManyRequests, want: ErrRateLimited},
		{
			name:   "invalid key as 400",
			status: http.StatusBadRequest,
			body:   `{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`,
			want:   ErrUnauthorized,
		},
		{
			name:   "server error with message",
			status: http.StatusInternalServerError,
			body:   `{"error":{"code":500,"message":"backend unavailable"}}`,
			substr: "unexpected status 500: backend unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.Analyze(context.Background(), "code", "p")
			if err == nil {
				t.Fatal("Analyze returned nil error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			if tt.substr != "" && !strings.Contains(err.Error(), tt.substr) {
				t.Fatalf("error = %q, want substring %q", err, tt.substr)
			}
		})
	}
}

func TestAnalyze_EmptyCandidates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"candidates":[],"promptFeedback":{"blockReason":"SAFETY"}}`)
	})

	_, err := c.Analyze(context.Background(), "code", "p")
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("error = %v, want ErrEmptyResponse", err)
	}
	if !strings.Contains(err.Error(), "SAFETY") {
		t.Errorf("error %q does not mention block reason", err)
	}
}

func TestAnalyze_ContextCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Analyze(ctx, "code", "p"); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}
