package facebook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// ClientOption allows for customization of the client
type ClientOption func(*FacebookClient)

// WithHTTPClient substitutes the HTTP client, primarily for tests.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *FacebookClient) {
		c.httpClient = httpClient
	}
}

// FacebookClient talks to the Graph API. Page access tokens are passed
// per call since every operation acts on behalf of a specific page.
type FacebookClient struct {
	config     *FacebookConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *logrus.Logger
}

// NewFacebookClient creates a new Graph API client
func NewFacebookClient(config *FacebookConfig, opts ...ClientOption) (*FacebookClient, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Spread the configured write budget evenly across the window,
	// burst of 1 for a conservative approach
	window := time.Duration(config.RateWindow) * time.Minute
	r := rate.Every(window / time.Duration(config.RateLimit))

	client := &FacebookClient{
		config:     config,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(r, 1),
		logger:     config.Logger,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// handleResponse checks for API errors in the response
func (c *FacebookClient) handleResponse(resp *http.Response, op string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read error response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"status_code": resp.StatusCode,
		"op":          op,
		"body":        string(body),
	}).Error("Facebook API error")

	return &APIError{Op: op, Status: resp.StatusCode, Body: string(body)}
}

// makeRequest issues a Graph API call. The access token travels as a
// query parameter; POST bodies are JSON, matching the Graph API's
// accepted formats.
func (c *FacebookClient) makeRequest(ctx context.Context, method, rawURL string, query url.Values, body interface{}) (*http.Response, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
	}

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	fullURL := rawURL
	if len(query) > 0 {
		fullURL = fmt.Sprintf("%s?%s", rawURL, query.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}

	return resp, nil
}

// objectURL builds the Graph URL for an object path like "{id}/comments".
func (c *FacebookClient) objectURL(path string) string {
	return fmt.Sprintf("%s/%s", c.config.GraphBaseURL, path)
}
