// Package remote provides the shared HTTP plumbing for the hosted
// storefront services (catalog, cart, order). It maps transport and
// protocol failures onto the client's error taxonomy: a request that
// never completed is a network error, a non-2xx response is a server
// rejection carrying the server's message, and an unparseable body is
// a decode error. None of these are retried here.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"storefront/internal/model"
	"storefront/internal/transport"
)

// userAgent identifies this client to the services.
// Required: the API gateway rate-limits requests without a User-Agent.
const userAgent = "Storefront/1.0"

// supportedAPIMajor is the newest major API version this client speaks.
// Services advertise their version in the API-Version response header;
// a newer major version gets a logged warning, not a hard failure.
const supportedAPIMajor = "v1"

// Client is the HTTP client shared by the service-specific clients.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a client with the browser-fingerprint transport.
func New(timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport.NewBrowserTransport(timeout),
		},
		logger: logger,
	}
}

// NewWithHTTPClient creates a client around an existing *http.Client.
// Used by tests to point at httptest servers without the TLS transport.
func NewWithHTTPClient(hc *http.Client, logger *slog.Logger) *Client {
	return &Client{httpClient: hc, logger: logger}
}

// GetJSON issues a GET and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, service, url string, out interface{}) error {
	return c.do(ctx, service, http.MethodGet, url, nil, out)
}

// PostJSON issues a POST with a JSON body and decodes the response into
// out when out is non-nil.
func (c *Client) PostJSON(ctx context.Context, service, url string, body, out interface{}) error {
	return c.do(ctx, service, http.MethodPost, url, body, out)
}

// Delete issues a DELETE. The response body is discarded.
func (c *Client) Delete(ctx context.Context, service, url string) error {
	return c.do(ctx, service, http.MethodDelete, url, nil, nil)
}

func (c *Client) do(ctx context.Context, service, method, url string, body, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling %s request: %w", service, err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("creating %s request: %w", service, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Cache-Control", "no-store")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.NewNetworkError(service, err)
	}
	defer resp.Body.Close()

	c.checkAPIVersion(service, resp.Header.Get("API-Version"))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.NewNetworkError(service, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		apiErr := model.NewRateLimitError(service)
		if reset, ok := ParseRateLimitReset(resp.Header.Get("RateLimit")); ok {
			apiErr.Message = fmt.Sprintf("%s (resets in %ds)", apiErr.Message, reset)
		}
		return apiErr
	}
	if resp.StatusCode >= 400 {
		return model.NewServerRejectedError(service, resp.StatusCode,
			strings.TrimSpace(string(respBody)))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return model.NewDecodeError(service, err)
	}
	return nil
}

// checkAPIVersion warns when a service advertises a major version newer
// than this client supports. Absent or unparseable headers are ignored;
// the services predate versioned responses.
func (c *Client) checkAPIVersion(service, version string) {
	if version == "" || c.logger == nil {
		return
	}
	v := version
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return
	}
	if semver.Compare(semver.Major(v), supportedAPIMajor) > 0 {
		c.logger.Warn("service API is newer than this client supports",
			slog.String("service", service),
			slog.String("api_version", version),
			slog.String("supported_major", supportedAPIMajor),
		)
	}
}
