// Package content serves the editorial surface of the storefront. Reads
// must never take the page down: any CMS failure is logged and the caller
// gets empty defaults, except a blog-post detail lookup which still
// distinguishes not-found.
package content

import (
	"context"

	"github.com/verdantlane/storefront-gateway/pkg/cms"
	pkgerrors "github.com/verdantlane/storefront-gateway/pkg/errors"
	"github.com/verdantlane/storefront-gateway/pkg/logger"
)

type cmsClient interface {
	Banners(ctx context.Context) ([]cms.Banner, error)
	BlogPosts(ctx context.Context) ([]cms.BlogPost, error)
	BlogPost(ctx context.Context, slug string) (*cms.BlogPost, error)
	FAQs(ctx context.Context) ([]cms.FAQEntry, error)
	Collections(ctx context.Context) ([]cms.Collection, error)
}

type Service interface {
	Banners(ctx context.Context) []cms.Banner
	BlogPosts(ctx context.Context) []cms.BlogPost
	BlogPost(ctx context.Context, slug string) (*cms.BlogPost, error)
	FAQs(ctx context.Context) []cms.FAQEntry
	Collections(ctx context.Context) []cms.Collection
}

type service struct {
	client cmsClient
	logger *logger.Logger
}

// NewService accepts a nil client when no CMS is configured; every read
// then returns its empty default.
func NewService(client cmsClient, logg *logger.Logger) Service {
	return &service{client: client, logger: logg}
}

func (s *service) Banners(ctx context.Context) []cms.Banner {
	if s.client == nil {
		return []cms.Banner{}
	}
	banners, err := s.client.Banners(ctx)
	if err != nil {
		s.logger.Warn(s.logger.WithField(ctx, "error", err.Error()), "banner fetch failed, serving empty")
		return []cms.Banner{}
	}
	return banners
}

func (s *service) BlogPosts(ctx context.Context) []cms.BlogPost {
	if s.client == nil {
		return []cms.BlogPost{}
	}
	posts, err := s.client.BlogPosts(ctx)
	if err != nil {
		s.logger.Warn(s.logger.WithField(ctx, "error", err.Error()), "blog list fetch failed, serving empty")
		return []cms.BlogPost{}
	}
	return posts
}

// BlogPost is the one content read that returns an error: a detail page
// needs a real 404 rather than an empty shell.
func (s *service) BlogPost(ctx context.Context, slug string) (*cms.BlogPost, error) {
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}
	if s.client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "blog post not found")
	}
	post, err := s.client.BlogPost(ctx, slug)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "blog post not found")
	}
	return post, nil
}

func (s *service) FAQs(ctx context.Context) []cms.FAQEntry {
	if s.client == nil {
		return []cms.FAQEntry{}
	}
	entries, err := s.client.FAQs(ctx)
	if err != nil {
		s.logger.Warn(s.logger.WithField(ctx, "error", err.Error()), "faq fetch failed, serving empty")
		return []cms.FAQEntry{}
	}
	return entries
}

func (s *service) Collections(ctx context.Context) []cms.Collection {
	if s.client == nil {
		return []cms.Collection{}
	}
	collections, err := s.client.Collections(ctx)
	if err != nil {
		s.logger.Warn(s.logger.WithField(ctx, "error", err.Error()), "collection fetch failed, serving empty")
		return []cms.Collection{}
	}
	return collections
}
