package medusa

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	pkgerrors "github.com/verdantlane/storefront-gateway/pkg/errors"
)

const productFields = "*variants.calculated_price,*variants.prices,+variants.inventory_quantity,+shipping_profile_id"

type productsResponse struct {
	Products []Product `json:"products"`
	Count    int       `json:"count"`
	Offset   int       `json:"offset"`
	Limit    int       `json:"limit"`
}

// ListProductsParams narrows and paginates the catalog read.
type ListProductsParams struct {
	RegionID     string
	CountryCode  string
	CollectionID string
	Query        string
	Limit        int
	Offset       int
}

// ProductPage is a read-time projection; nothing here is persisted.
type ProductPage struct {
	Products []Product
	Count    int
	Offset   int
	Limit    int
}

func (c *Client) ListProducts(ctx context.Context, params ListProductsParams) (*ProductPage, error) {
	query := url.Values{}
	query.Set("fields", productFields)
	if params.RegionID != "" {
		query.Set("region_id", params.RegionID)
	}
	if params.CountryCode != "" {
		query.Set("country_code", params.CountryCode)
	}
	if params.CollectionID != "" {
		query.Set("collection_id", params.CollectionID)
	}
	if params.Query != "" {
		query.Set("q", params.Query)
	}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Offset > 0 {
		query.Set("offset", strconv.Itoa(params.Offset))
	}

	var resp productsResponse
	if err := c.do(ctx, requestOptions{
		method: http.MethodGet,
		path:   "/store/products",
		query:  query,
	}, &resp); err != nil {
		return nil, err
	}
	return &ProductPage{
		Products: resp.Products,
		Count:    resp.Count,
		Offset:   resp.Offset,
		Limit:    resp.Limit,
	}, nil
}

// GetProductByHandle fetches a single product. Handles are unique upstream.
func (c *Client) GetProductByHandle(ctx context.Context, handle, regionID string) (*Product, error) {
	query := url.Values{}
	query.Set("fields", productFields)
	query.Set("handle", handle)
	if regionID != "" {
		query.Set("region_id", regionID)
	}

	var resp productsResponse
	if err := c.do(ctx, requestOptions{
		method: http.MethodGet,
		path:   "/store/products",
		query:  query,
	}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Products) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return &resp.Products[0], nil
}
