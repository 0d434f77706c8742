// Package regions maps ISO-2 country codes to commerce regions. The full
// region list is fetched once per cache window and expanded into a per-country
// cache so the hot path never blocks on the backend.
package regions

import (
	"context"
	"strings"

	"github.com/verdantlane/storefront-gateway/pkg/cache"
	"github.com/verdantlane/storefront-gateway/pkg/config"
	pkgerrors "github.com/verdantlane/storefront-gateway/pkg/errors"
	"github.com/verdantlane/storefront-gateway/pkg/logger"
	"github.com/verdantlane/storefront-gateway/pkg/medusa"
)

type regionLister interface {
	ListRegions(ctx context.Context) ([]medusa.Region, error)
}

type Service interface {
	// Resolve returns the region serving countryCode, the configured default
	// region when no match exists, and an error only when neither resolves.
	Resolve(ctx context.Context, countryCode string) (*medusa.Region, error)
	// List returns every region, cache-backed.
	List(ctx context.Context) ([]medusa.Region, error)
	// Invalidate drops the cache so the next read refetches.
	Invalidate()
}

type service struct {
	client         regionLister
	cache          *cache.TTL[medusa.Region]
	logger         *logger.Logger
	defaultCountry string
	aliasFrom      string
	aliasTo        string
}

func NewService(client regionLister, cfg config.RegionConfig, logg *logger.Logger) Service {
	svc := &service{
		client:         client,
		cache:          cache.NewTTL[medusa.Region](cfg.CacheTTL),
		logger:         logg,
		defaultCountry: strings.ToLower(cfg.DefaultCountry),
	}
	if from, to, ok := cfg.AliasPair(); ok {
		svc.aliasFrom = from
		svc.aliasTo = to
	}
	return svc
}

func (s *service) Resolve(ctx context.Context, countryCode string) (*medusa.Region, error) {
	code := strings.ToLower(strings.TrimSpace(countryCode))
	if code == "" {
		code = s.defaultCountry
	}
	if code == s.aliasFrom {
		code = s.aliasTo
	}

	if region, ok := s.cache.Get(code); ok {
		return &region, nil
	}

	if err := s.refill(ctx); err != nil {
		if region, ok := s.cache.Get(s.defaultCountry); ok {
			if s.logger != nil {
				s.logger.Warn(s.logger.WithCountry(ctx, code), "region list fetch failed, serving cached default region")
			}
			return &region, nil
		}
		if s.logger != nil {
			s.logger.Warn(s.logger.WithCountry(ctx, code), "region list fetch failed, cache stale")
		}
		return nil, err
	}

	if region, ok := s.cache.Get(code); ok {
		return &region, nil
	}
	if region, ok := s.cache.Get(s.defaultCountry); ok {
		if s.logger != nil {
			s.logger.Info(s.logger.WithCountry(ctx, code), "country not served, using default region")
		}
		return &region, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no region serves country "+code)
}

func (s *service) List(ctx context.Context) ([]medusa.Region, error) {
	return s.client.ListRegions(ctx)
}

func (s *service) Invalidate() {
	s.cache.Flush()
}

func (s *service) refill(ctx context.Context) error {
	regions, err := s.client.ListRegions(ctx)
	if err != nil {
		return err
	}
	for _, region := range regions {
		for _, country := range region.Countries {
			iso := strings.ToLower(country.ISO2)
			if iso == "" {
				continue
			}
			s.cache.Set(iso, region)
		}
	}
	return nil
}
