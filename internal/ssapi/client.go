// Package ssapi is the HTTP client for the S&S Activewear REST API v2.
package ssapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"ssactivewear-mcp/internal/domain"
)

const (
	USBaseURL = "https://api.ssactivewear.com/v2"
	CABaseURL = "https://api-ca.ssactivewear.com/v2"

	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "SS-Activewear-MCP/1.0"
)

// BaseURLForRegion maps a region selector to its API host. Anything other
// than "CA" is the US API.
func BaseURLForRegion(region string) string {
	if strings.EqualFold(strings.TrimSpace(region), "CA") {
		return CABaseURL
	}
	return USBaseURL
}

// Options configures a Client.
type Options struct {
	BaseURL       string
	AccountNumber string
	APIKey        string
	Timeout       time.Duration
	UserAgent     string
	// Debug logs every request and error body.
	Debug bool
}

// Client performs authenticated GETs against the vendor API.
type Client struct {
	baseURL    string
	account    string
	apiKey     string
	userAgent  string
	debug      bool
	httpClient *http.Client
	logger     *zap.Logger
}

// New builds a Client. Missing credentials are not an error here; they
// surface as domain.ErrMissingCredentials on the first Fetch.
func New(opts Options, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = USBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		account:   opts.AccountNumber,
		apiKey:    opts.APIKey,
		userAgent: opts.UserAgent,
		debug:     opts.Debug,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		logger: logger,
	}
}

// Configured reports whether both credentials are present.
func (c *Client) Configured() bool {
	return c.account != "" && c.apiKey != ""
}

// Fetch issues GET <base>/<path>?<params>. The response body is returned
// as-is for 2xx statuses; other statuses map onto the domain error taxonomy.
// mediatype defaults to json.
func (c *Client) Fetch(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if !c.Configured() {
		return nil, domain.ErrMissingCredentials
	}

	query := url.Values{}
	for k, vs := range params {
		query[k] = append([]string(nil), vs...)
	}
	if query.Get("mediatype") == "" {
		query.Set("mediatype", "json")
	}

	fullURL := c.baseURL + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.URL.RawQuery = query.Encode()
	req.SetBasicAuth(c.account, c.apiKey)
	req.Header.Set("Accept", acceptFor(query.Get("mediatype")))
	req.Header.Set("User-Agent", c.userAgent)

	if c.debug {
		c.logger.Debug("ss api request",
			zap.String("url", fullURL),
			zap.String("query", req.URL.RawQuery),
			zap.String("account", c.account))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrNetworkUnreachable, ctxErr)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrNetworkUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrNetworkUnreachable, err)
	}

	if c.debug {
		c.logger.Debug("ss api response", zap.Int("status", resp.StatusCode), zap.Int("bytes", len(body)))
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	msg := errorMessage(resp.StatusCode, body)
	if c.debug {
		c.logger.Debug("ss api error", zap.Int("status", resp.StatusCode), zap.ByteString("body", body))
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnauthorized, msg)
	case http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s", domain.ErrForbidden, msg)
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, msg)
	}
	return nil, &domain.UpstreamError{Status: resp.StatusCode, Message: msg}
}

func acceptFor(mediaType string) string {
	if strings.EqualFold(mediaType, "xml") {
		return "application/xml"
	}
	return "application/json"
}

type errorBody struct {
	Message string `json:"message"`
	Errors  []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// errorMessage prefers the body's `message`, then its joined `errors`, then
// the status text.
func errorMessage(status int, body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		if eb.Message != "" {
			return eb.Message
		}
		msgs := make([]string, 0, len(eb.Errors))
		for _, e := range eb.Errors {
			if e.Message != "" {
				msgs = append(msgs, e.Message)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, ", ")
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("status %d", status)
}
