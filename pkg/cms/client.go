// Package cms reads marketing content from the headless CMS. A 404 from any
// endpoint means the content type is not provisioned, so calls return empty
// defaults instead of errors and page rendering proceeds degraded.
package cms

import (
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

type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logger.Logger
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(context.Context) error
}

func NewClient(cfg config.CMSConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errors.New("cms logger is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("cms base url is required")
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:    baseURL,
		logger:     logg,
	}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/banners", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ping cms: %w", err)
	}
	defer drain(resp.Body)
	if resp.StatusCode >= 500 {
		return fmt.Errorf("ping cms: status %d", resp.StatusCode)
	}
	return nil
}

// get decodes the JSON:API envelope at path into out. Returns (false, nil)
// when the content type is absent upstream.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) (bool, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building cms request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "GET "+path)
	}
	defer drain(resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode >= 400 {
		return false, pkgerrors.New(pkgerrors.CodeUpstream,
			fmt.Sprintf("cms GET %s returned %d", path, resp.StatusCode))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "decoding cms response")
	}
	return true, nil
}

func drain(body io.ReadCloser) {
	io.Copy(io.Discard, body)
	body.Close()
}
