// Package products serves the catalog with prices reconciled for the
// shopper's region. Every variant gets a display price string so templates
// never do their own currency math.
package products

import (
	"context"
	"strings"

	"github.com/verdantlane/storefront-gateway/internal/pricing"
	"github.com/verdantlane/storefront-gateway/internal/regions"
	pkgerrors "github.com/verdantlane/storefront-gateway/pkg/errors"
	"github.com/verdantlane/storefront-gateway/pkg/logger"
	"github.com/verdantlane/storefront-gateway/pkg/medusa"
)

type catalogClient interface {
	ListProducts(ctx context.Context, params medusa.ListProductsParams) (*medusa.ProductPage, error)
	GetProductByHandle(ctx context.Context, handle, regionID string) (*medusa.Product, error)
}

// ListParams narrows the catalog read from the query string.
type ListParams struct {
	CountryCode  string
	CollectionID string
	Query        string
	Limit        int
	Offset       int
}

// VariantView decorates a backend variant with its reconciled price.
type VariantView struct {
	medusa.Variant
	Price        *pricing.VariantPrice `json:"price,omitempty"`
	DisplayPrice string                `json:"display_price"`
}

// ProductView is a Product with priced variants.
type ProductView struct {
	medusa.Product
	Variants []VariantView `json:"variants"`
}

// Page is one page of the priced catalog.
type Page struct {
	Products []ProductView `json:"products"`
	Count    int           `json:"count"`
	Offset   int           `json:"offset"`
	Limit    int           `json:"limit"`
}

type Service interface {
	List(ctx context.Context, params ListParams) (*Page, error)
	Get(ctx context.Context, handle, countryCode string) (*ProductView, error)
}

type service struct {
	client  catalogClient
	regions regions.Service
	logger  *logger.Logger
}

func NewService(client catalogClient, regionSvc regions.Service, logg *logger.Logger) Service {
	return &service{client: client, regions: regionSvc, logger: logg}
}

func (s *service) List(ctx context.Context, params ListParams) (*Page, error) {
	region, err := s.regions.Resolve(ctx, params.CountryCode)
	if err != nil {
		return nil, err
	}

	page, err := s.client.ListProducts(ctx, medusa.ListProductsParams{
		RegionID:     region.ID,
		CountryCode:  strings.ToLower(params.CountryCode),
		CollectionID: params.CollectionID,
		Query:        params.Query,
		Limit:        params.Limit,
		Offset:       params.Offset,
	})
	if err != nil {
		return nil, err
	}

	views := make([]ProductView, 0, len(page.Products))
	for i := range page.Products {
		views = append(views, s.priced(ctx, &page.Products[i], region.CurrencyCode))
	}
	return &Page{
		Products: views,
		Count:    page.Count,
		Offset:   page.Offset,
		Limit:    page.Limit,
	}, nil
}

func (s *service) Get(ctx context.Context, handle, countryCode string) (*ProductView, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product handle is required")
	}
	region, err := s.regions.Resolve(ctx, countryCode)
	if err != nil {
		return nil, err
	}
	product, err := s.client.GetProductByHandle(ctx, handle, region.ID)
	if err != nil {
		return nil, err
	}
	view := s.priced(ctx, product, region.CurrencyCode)
	return &view, nil
}

// priced attaches a reconciled price per variant. Variants without a price
// in the region's currency render the shared unavailable fallback; the
// product stays on the page.
func (s *service) priced(ctx context.Context, product *medusa.Product, currencyCode string) ProductView {
	variants := make([]VariantView, 0, len(product.Variants))
	for i := range product.Variants {
		variant := product.Variants[i]
		if variant.Product == nil {
			variant.Product = product
		}
		price, ok := pricing.ForVariant(&variant, currencyCode)
		if !ok {
			s.logger.Debug(s.logger.WithFields(ctx, map[string]any{
				"variant_id": variant.ID,
				"currency":   currencyCode,
			}), "variant has no price for currency")
		}
		variants = append(variants, VariantView{
			Variant:      variant,
			Price:        price,
			DisplayPrice: pricing.Format(price),
		})
	}
	return ProductView{Product: *product, Variants: variants}
}
