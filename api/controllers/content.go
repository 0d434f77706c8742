package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/verdantlane/storefront-gateway/api/responses"
	contentsvc "github.com/verdantlane/storefront-gateway/internal/content"
	"github.com/verdantlane/storefront-gateway/pkg/logger"
)

func ContentBanners(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{"banners": svc.Banners(r.Context())})
	}
}

func ContentBlogPosts(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{"posts": svc.BlogPosts(r.Context())})
	}
}

func ContentBlogPost(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := svc.BlogPost(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"post": post})
	}
}

func ContentFAQs(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{"faqs": svc.FAQs(r.Context())})
	}
}

func ContentCollections(svc contentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{"collections": svc.Collections(r.Context())})
	}
}
