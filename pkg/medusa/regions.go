package medusa

import (
	"context"
	"net/http"
	"net/url"
)

type regionsResponse struct {
	Regions []Region `json:"regions"`
}

// ListRegions returns every region the backend serves, with countries expanded.
func (c *Client) ListRegions(ctx context.Context) ([]Region, error) {
	query := url.Values{}
	query.Set("fields", "*countries")
	var resp regionsResponse
	if err := c.do(ctx, requestOptions{
		method: http.MethodGet,
		path:   "/store/regions",
		query:  query,
	}, &resp); err != nil {
		return nil, err
	}
	return resp.Regions, nil
}
