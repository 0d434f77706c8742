// Package medusa wraps the commerce backend's store REST API with centralized
// auth headers, timeouts, logging, and error mapping. Every field and error
// shape is backend-defined; this client never reinterprets amounts or state.
package medusa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/verdantlane/storefront-gateway/pkg/config"
	pkgerrors "github.com/verdantlane/storefront-gateway/pkg/errors"
	"github.com/verdantlane/storefront-gateway/pkg/logger"
)

// PublishableKeyHeader authenticates storefront-scope requests.
const PublishableKeyHeader = "x-publishable-api-key"

var (
	errBaseURLRequired = errors.New("medusa base url is required")
	errKeyRequired     = errors.New("medusa publishable key is required")
	errLoggerRequired  = errors.New("medusa logger is required")
)

type Client struct {
	httpClient     *http.Client
	baseURL        string
	publishableKey string
	logger         *logger.Logger
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(context.Context) error
}

// NewClient validates the configuration and builds the wrapper.
func NewClient(cfg config.MedusaConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	key := strings.TrimSpace(cfg.PublishableKey)
	if key == "" {
		return nil, errKeyRequired
	}
	return &Client{
		httpClient:     &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:        baseURL,
		publishableKey: key,
		logger:         logg,
	}, nil
}

// BaseURL returns the configured backend origin.
func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.baseURL
}

// PublishableKey returns the storefront API key.
func (c *Client) PublishableKey() string {
	if c == nil {
		return ""
	}
	return c.publishableKey
}

// Ping probes the backend health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ping medusa: %w", err)
	}
	defer drain(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("ping medusa: status %d", resp.StatusCode)
	}
	return nil
}

type requestOptions struct {
	method    string
	path      string
	query     url.Values
	body      any
	authToken string
}

// do issues a request and decodes the JSON body into out when non-nil.
func (c *Client) do(ctx context.Context, opts requestOptions, out any) error {
	var bodyReader io.Reader
	if opts.body != nil {
		encoded, err := json.Marshal(opts.body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding request body")
		}
		bodyReader = bytes.NewReader(encoded)
	}

	endpoint := c.baseURL + opts.path
	if len(opts.query) > 0 {
		endpoint += "?" + opts.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, opts.method, endpoint, bodyReader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(PublishableKeyHeader, c.publishableKey)
	if opts.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if opts.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+opts.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return mapTransportError(err, opts.method, opts.path)
	}
	defer drain(resp.Body)

	if resp.StatusCode >= 400 {
		return mapStatusError(resp, opts.method, opts.path)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err,
			fmt.Sprintf("decoding %s %s response", opts.method, opts.path))
	}
	return nil
}

func mapTransportError(err error, method, path string) error {
	msg := fmt.Sprintf("%s %s", method, path)
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return pkgerrors.Wrap(pkgerrors.CodeUpstreamTimeout, err, msg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, msg)
}

func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

// upstreamError matches the backend's error payload; message is surfaced to
// callers for mutations, per the propagation policy.
type upstreamError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func mapStatusError(resp *http.Response, method, path string) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	message := fmt.Sprintf("%s %s returned %d", method, path, resp.StatusCode)
	var payload upstreamError
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Message != "" {
		message = payload.Message
	}

	code := pkgerrors.CodeUpstream
	switch resp.StatusCode {
	case http.StatusBadRequest:
		code = pkgerrors.CodeValidation
	case http.StatusUnauthorized:
		code = pkgerrors.CodeUnauthorized
	case http.StatusNotFound:
		code = pkgerrors.CodeNotFound
	case http.StatusConflict:
		code = pkgerrors.CodeConflict
	case http.StatusUnprocessableEntity:
		code = pkgerrors.CodeStateConflict
	case http.StatusGatewayTimeout:
		code = pkgerrors.CodeUpstreamTimeout
	}
	return pkgerrors.New(code, message).WithDetails(map[string]any{
		"status": resp.StatusCode,
		"type":   payload.Type,
	})
}

func drain(body io.ReadCloser) {
	io.Copy(io.Discard, body)
	body.Close()
}
