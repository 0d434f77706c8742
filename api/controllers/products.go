package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/verdantlane/storefront-gateway/api/responses"
	"github.com/verdantlane/storefront-gateway/api/validators"
	productsvc "github.com/verdantlane/storefront-gateway/internal/products"
	"github.com/verdantlane/storefront-gateway/pkg/logger"
)

const (
	defaultProductLimit = 20
	maxProductLimit     = 100
)

func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", defaultProductLimit, 1, maxProductLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 10000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), productsvc.ListParams{
			CountryCode:  strings.TrimSpace(r.URL.Query().Get("country")),
			CollectionID: strings.TrimSpace(r.URL.Query().Get("collection_id")),
			Query:        strings.TrimSpace(r.URL.Query().Get("q")),
			Limit:        limit,
			Offset:       offset,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handle := chi.URLParam(r, "handle")
		country := strings.TrimSpace(r.URL.Query().Get("country"))

		product, err := svc.Get(r.Context(), handle, country)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}
