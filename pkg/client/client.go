// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

// Package client provides a Go client library for the streamwall API.
//
// Streamwall launches and supervises a wall of browser windows watching a
// stream. This client library provides typed access to all streamwall API
// endpoints: session control, record management, events and crash reports.
//
// # Getting Started
//
// Create a client pointing to your streamwall daemon:
//
//	c := client.New("http://localhost:4690")
//
// The client provides access to different API resources through sub-clients:
//
//	// Launch the session
//	err := c.Session.Launch(ctx)
//
//	// List the running instances
//	instances, err := c.Session.Instances(ctx)
//
//	// Activate a profile
//	profile, err := c.Profiles.Activate(ctx, id)
//
// # Error Handling
//
// API errors are returned as *APIError values, which include an error code
// and message:
//
//	p, err := c.Profiles.Get(ctx, "unknown")
//	if err != nil {
//	    if apiErr, ok := err.(*client.APIError); ok {
//	        fmt.Printf("API error: %s - %s\n", apiErr.Code, apiErr.Message)
//	    }
//	}
//
// # Context Support
//
// All API methods accept a context.Context for cancellation and timeouts.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is a streamwall API client.
//
// A Client provides access to the streamwall API through resource-specific
// sub-clients. Use [New] to create a Client instance.
//
// The Client is safe for concurrent use by multiple goroutines.
type Client struct {
	baseURL    string
	httpClient *http.Client

	// Session provides access to session control: launching, terminating,
	// recovering and arranging browser instances.
	Session *SessionClient

	// Profiles provides access to launch profile records.
	Profiles *ProfileClient

	// Layouts provides access to window layout records.
	Layouts *LayoutClient

	// Settings provides access to the singleton settings record.
	Settings *SettingsClient

	// Events provides access to the event history.
	Events *EventClient

	// Crashes provides access to stored crash reports.
	Crashes *CrashClient

	// Monitor provides access to resource monitor actions.
	Monitor *MonitorClient
}

// Option configures a [Client]. Options are passed to [New] to customize
// client behavior.
type Option func(*Client)

// New creates a new streamwall API client with the given base URL and options.
//
// The baseURL should be the root URL of the daemon (e.g., "http://localhost:4690").
// Any trailing slash is automatically removed.
//
// By default the client uses a 30-second HTTP timeout. Use [WithTimeout] or
// [WithHTTPClient] to customize.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	c.Session = &SessionClient{c: c}
	c.Profiles = &ProfileClient{c: c}
	c.Layouts = &LayoutClient{c: c}
	c.Settings = &SettingsClient{c: c}
	c.Events = &EventClient{c: c}
	c.Crashes = &CrashClient{c: c}
	c.Monitor = &MonitorClient{c: c}

	return c
}

// WithHTTPClient sets a custom HTTP client for making requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the HTTP client timeout for all requests.
//
// The default timeout is 30 seconds. Launching a large session can take
// longer than that when a launch delay is configured.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// BaseURL returns the base URL of the API.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// apiResponse is the standard API response envelope.
type apiResponse struct {
	Data  json.RawMessage `json:"data"`
	Error *APIError       `json:"error"`
}

// APIError represents an error response from the streamwall API.
//
// API errors include a machine-readable Code and a human-readable Message.
//
// Common error codes include:
//   - "NOT_FOUND": The requested resource does not exist
//   - "BAD_REQUEST": The request was malformed
//   - "VALIDATION_ERROR": A record failed validation
//   - "CONFLICT": The operation conflicts with the session state
//   - "SESSION_ERROR": A launch or recovery failed
type APIError struct {
	// Code is a machine-readable error code.
	Code string `json:"code"`

	// Message is a human-readable description of the error.
	Message string `json:"message"`

	// Details contains additional error information, if available.
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// get performs a GET request to the given path.
func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

// post performs a POST request to the given path with no body.
func (c *Client) post(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, path, nil)
}

// postJSON performs a POST request with a JSON body.
func (c *Client) postJSON(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(data))
}

// putJSON performs a PUT request with a JSON body.
func (c *Client) putJSON(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPut, path, bytes.NewReader(data))
}

// delete performs a DELETE request to the given path.
func (c *Client) delete(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodDelete, path, nil)
}

// do performs an HTTP request and parses the response.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (json.RawMessage, error) {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return c.parseResponse(resp)
}

// parseResponse reads and parses an API response.
func (c *Client) parseResponse(resp *http.Response) (json.RawMessage, error) {
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
		}
		// Return raw body for non-envelope responses
		return respBody, nil
	}

	if apiResp.Error != nil {
		return nil, apiResp.Error
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	return apiResp.Data, nil
}
