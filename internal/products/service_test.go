package products

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/verdantlane/storefront-gateway/internal/pricing"
	"github.com/verdantlane/storefront-gateway/internal/regions"
	"github.com/verdantlane/storefront-gateway/pkg/config"
	pkgerrors "github.com/verdantlane/storefront-gateway/pkg/errors"
	"github.com/verdantlane/storefront-gateway/pkg/logger"
	"github.com/verdantlane/storefront-gateway/pkg/medusa"
)

type fakeCatalog struct {
	page       *medusa.ProductPage
	product    *medusa.Product
	lastParams medusa.ListProductsParams
	err        error
}

func (f *fakeCatalog) ListProducts(_ context.Context, params medusa.ListProductsParams) (*medusa.ProductPage, error) {
	f.lastParams = params
	return f.page, f.err
}

func (f *fakeCatalog) GetProductByHandle(context.Context, string, string) (*medusa.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.product, nil
}

type fakeRegionLister struct {
	regions []medusa.Region
}

func (f *fakeRegionLister) ListRegions(context.Context) ([]medusa.Region, error) {
	return f.regions, nil
}

func usRegions() *fakeRegionLister {
	return &fakeRegionLister{regions: []medusa.Region{
		{ID: "reg_us", Name: "United States", CurrencyCode: "usd", Countries: []medusa.Country{{ISO2: "us"}}},
	}}
}

func newTestService(catalog *fakeCatalog) Service {
	logg := logger.New(logger.Options{ServiceName: "test"})
	regionSvc := regions.NewService(usRegions(), config.RegionConfig{
		DefaultCountry: "us",
		CountryAlias:   "gb:ie",
	}, logg)
	return NewService(catalog, regionSvc, logg)
}

func seedProduct() medusa.Product {
	return medusa.Product{
		ID:     "prod_1",
		Title:  "Tomato Seeds",
		Handle: "tomato-seeds",
		Variants: []medusa.Variant{
			{
				ID: "var_usd",
				CalculatedPrice: &medusa.CalculatedPrice{
					CalculatedAmount: decimal.NewFromInt(8),
					CurrencyCode:     "usd",
				},
			},
			{
				ID:     "var_eur_only",
				Prices: []medusa.Price{{Amount: decimal.NewFromInt(9), CurrencyCode: "eur"}},
			},
		},
	}
}

func TestList_AttachesDisplayPrices(t *testing.T) {
	product := seedProduct()
	catalog := &fakeCatalog{page: &medusa.ProductPage{Products: []medusa.Product{product}, Count: 1}}
	svc := newTestService(catalog)

	page, err := svc.List(context.Background(), ListParams{CountryCode: "us", Limit: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if catalog.lastParams.RegionID != "reg_us" {
		t.Fatalf("expected resolved region on request, got %q", catalog.lastParams.RegionID)
	}
	variants := page.Products[0].Variants
	if variants[0].DisplayPrice != "$8.00" {
		t.Fatalf("expected $8.00, got %q", variants[0].DisplayPrice)
	}
	if variants[1].Price != nil || variants[1].DisplayPrice != pricing.Unavailable {
		t.Fatalf("variant without usd price must render the fallback, got %q", variants[1].DisplayPrice)
	}
}

func TestGet_RequiresHandle(t *testing.T) {
	svc := newTestService(&fakeCatalog{})

	_, err := svc.Get(context.Background(), "  ", "us")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGet_NotFoundPropagates(t *testing.T) {
	catalog := &fakeCatalog{err: pkgerrors.New(pkgerrors.CodeNotFound, "product not found")}
	svc := newTestService(catalog)

	_, err := svc.Get(context.Background(), "missing", "us")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGet_PricesDetail(t *testing.T) {
	product := seedProduct()
	catalog := &fakeCatalog{product: &product}
	svc := newTestService(catalog)

	view, err := svc.Get(context.Background(), "tomato-seeds", "us")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Variants[0].Price == nil || !view.Variants[0].Price.Calculated.Equal(decimal.NewFromInt(8)) {
		t.Fatalf("unexpected price: %+v", view.Variants[0].Price)
	}
}
