package controllers

import (
	"net/http"
	"strings"

	"github.com/verdantlane/storefront-gateway/api/responses"
	"github.com/verdantlane/storefront-gateway/internal/regions"
	"github.com/verdantlane/storefront-gateway/pkg/logger"
)

// Regions lists every region, or resolves one when ?country= is present.
func Regions(svc regions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		country := strings.TrimSpace(r.URL.Query().Get("country"))
		if country != "" {
			region, err := svc.Resolve(r.Context(), country)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, region)
			return
		}

		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"regions": list})
	}
}
