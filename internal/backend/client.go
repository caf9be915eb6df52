package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the remote chat backend. The contract is deliberately
// narrow: submit text, receive reply text. Anything else is a failure.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient builds a client for the backend at baseURL. A zero timeout
// leaves the underlying http.Client without a deadline.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
	}
}

// Ask submits one user message and returns the backend's reply text.
// Transport errors, non-2xx statuses, and undecodable bodies are all
// returned as errors; callers treat them uniformly.
func (c *Client) Ask(ctx context.Context, message string) (string, error) {
	form := url.Values{}
	form.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("send chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("chat backend returned status %d", resp.StatusCode)
	}

	var payload struct {
		Response *string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if payload.Response == nil {
		return "", fmt.Errorf("chat response missing response field")
	}

	return *payload.Response, nil
}
