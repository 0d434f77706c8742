package cms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/verdantlane/storefront-gateway/pkg/config"
	pkgerrors "github.com/verdantlane/storefront-gateway/pkg/errors"
	"github.com/verdantlane/storefront-gateway/pkg/logger"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(config.CMSConfig{
		BaseURL:        srv.URL,
		RequestTimeout: 2 * time.Second,
	}, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("building client: %v", err)
	}
	return client
}

func TestBanners_DecodesEnvelope(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("populate") != "*" {
			t.Errorf("expected populate=* query, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"id":1,"title":"Spring sale","active":true}],"meta":{"pagination":{"total":1}}}`))
	}))

	banners, err := client.Banners(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(banners) != 1 || banners[0].Title != "Spring sale" {
		t.Fatalf("unexpected banners: %+v", banners)
	}
}

func TestBanners_404MeansEmpty(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	banners, err := client.Banners(context.Background())
	if err != nil {
		t.Fatalf("404 should not error, got %v", err)
	}
	if banners == nil || len(banners) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", banners)
	}
}

func TestBanners_5xxErrors(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.Banners(context.Background())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUpstream {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestBlogPost_FiltersBySlug(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("filters[slug][$eq]"); got != "growing-basil" {
			t.Errorf("expected slug filter, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"id":7,"title":"Growing basil","slug":"growing-basil"}]}`))
	}))

	post, err := client.BlogPost(context.Background(), "growing-basil")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post.Slug != "growing-basil" {
		t.Fatalf("unexpected post: %+v", post)
	}
}

func TestBlogPost_EmptyDataIsNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[]}`))
	}))

	_, err := client.BlogPost(context.Background(), "missing")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
