package controllers

import (
	"io"
	"net/http"

	"github.com/verdantlane/storefront-gateway/api/middleware"
	"github.com/verdantlane/storefront-gateway/api/responses"
	"github.com/verdantlane/storefront-gateway/internal/proxy"
	pkgerrors "github.com/verdantlane/storefront-gateway/pkg/errors"
	"github.com/verdantlane/storefront-gateway/pkg/logger"
)

// proxyBodyLimit caps forwarded request bodies at 1 MiB.
const proxyBodyLimit = 1 << 20

// MedusaProxy forwards the raw call described by ?path= and relays the
// upstream reply verbatim.
func MedusaProxy(svc proxy.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "proxy service unavailable"))
			return
		}

		var body []byte
		if r.Body != nil {
			var err error
			body, err = io.ReadAll(http.MaxBytesReader(w, r.Body, proxyBodyLimit))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "request body too large"))
				return
			}
		}

		resp, err := svc.Forward(r.Context(), proxy.Request{
			Method:   r.Method,
			Path:     r.URL.Query().Get("path"),
			Header:   r.Header,
			Body:     body,
			ClientIP: middleware.ClientIP(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteRaw(w, resp.Status, resp.ContentType, resp.Body)
	}
}
