package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/iho/doubleentry/internal/adapter/http/dto"
)

// requestIDHeader is picked up by the server's request ID middleware so
// CLI calls can be found in server logs.
const requestIDHeader = "X-Request-Id"

// apiClient calls the ledger HTTP API.
type apiClient struct {
	baseURL string
	http    *http.Client
	header  http.Header
}

func newAPIClient(opts *options) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(opts.baseURL, "/"),
		http:    &http.Client{Timeout: opts.timeout},
		header:  http.Header{},
	}
}

// apiError is a non-2xx answer from the API.
type apiError struct {
	Status    int
	RequestID string
	Body      dto.ErrorResponse
	Raw       []byte
}

func (e *apiError) Error() string {
	msg := fmt.Sprintf("request failed with status %d: %s", e.Status, e.Body.Error)
	if e.Body.Message != "" {
		msg += ": " + e.Body.Message
	}
	for _, v := range e.Body.Violations {
		msg += "\n  - " + v
	}
	if e.RequestID != "" {
		msg += "\nrequest id: " + e.RequestID
	}
	return msg
}

func (c *apiClient) get(ctx context.Context, path string, query url.Values, out any) error {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *apiClient) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	for k, v := range c.header {
		req.Header[k] = v
	}
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &apiError{Status: resp.StatusCode, RequestID: requestID, Raw: data}
		if json.Unmarshal(data, &apiErr.Body) != nil {
			apiErr.Body.Error = strings.TrimSpace(string(data))
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
