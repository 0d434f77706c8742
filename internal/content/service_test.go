package content

import (
	"context"
	"testing"

	"github.com/verdantlane/storefront-gateway/pkg/cms"
	pkgerrors "github.com/verdantlane/storefront-gateway/pkg/errors"
	"github.com/verdantlane/storefront-gateway/pkg/logger"
)

type fakeCMS struct {
	banners     []cms.Banner
	posts       []cms.BlogPost
	post        *cms.BlogPost
	faqs        []cms.FAQEntry
	collections []cms.Collection
	err         error
}

func (f *fakeCMS) Banners(context.Context) ([]cms.Banner, error) {
	return f.banners, f.err
}

func (f *fakeCMS) BlogPosts(context.Context) ([]cms.BlogPost, error) {
	return f.posts, f.err
}

func (f *fakeCMS) BlogPost(context.Context, string) (*cms.BlogPost, error) {
	return f.post, f.err
}

func (f *fakeCMS) FAQs(context.Context) ([]cms.FAQEntry, error) {
	return f.faqs, f.err
}

func (f *fakeCMS) Collections(context.Context) ([]cms.Collection, error) {
	return f.collections, f.err
}

func newTestService(client *fakeCMS) Service {
	return NewService(client, logger.New(logger.Options{ServiceName: "test"}))
}

func TestListReads_DegradeToEmptyOnFailure(t *testing.T) {
	svc := newTestService(&fakeCMS{err: pkgerrors.New(pkgerrors.CodeUpstream, "cms down")})
	ctx := context.Background()

	if banners := svc.Banners(ctx); banners == nil || len(banners) != 0 {
		t.Fatalf("expected empty banner slice, got %v", banners)
	}
	if posts := svc.BlogPosts(ctx); posts == nil || len(posts) != 0 {
		t.Fatalf("expected empty post slice, got %v", posts)
	}
	if faqs := svc.FAQs(ctx); faqs == nil || len(faqs) != 0 {
		t.Fatalf("expected empty faq slice, got %v", faqs)
	}
	if collections := svc.Collections(ctx); collections == nil || len(collections) != 0 {
		t.Fatalf("expected empty collection slice, got %v", collections)
	}
}

func TestListReads_PassThrough(t *testing.T) {
	svc := newTestService(&fakeCMS{
		banners: []cms.Banner{{ID: 1, Title: "Spring planting"}},
		faqs:    []cms.FAQEntry{{ID: 2, Question: "Do you ship seeds abroad?"}},
	})
	ctx := context.Background()

	banners := svc.Banners(ctx)
	if len(banners) != 1 || banners[0].Title != "Spring planting" {
		t.Fatalf("unexpected banners: %v", banners)
	}
	if faqs := svc.FAQs(ctx); len(faqs) != 1 {
		t.Fatalf("unexpected faqs: %v", faqs)
	}
}

func TestBlogPost_DetailErrorsPropagate(t *testing.T) {
	svc := newTestService(&fakeCMS{err: pkgerrors.New(pkgerrors.CodeNotFound, "blog post not found")})

	_, err := svc.BlogPost(context.Background(), "missing-post")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBlogPost_RequiresSlug(t *testing.T) {
	svc := newTestService(&fakeCMS{})

	_, err := svc.BlogPost(context.Background(), "")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
