package controllers

import (
	"net/http"

	"github.com/verdantlane/storefront-gateway/api/responses"
	"github.com/verdantlane/storefront-gateway/api/validators"
	newslettersvc "github.com/verdantlane/storefront-gateway/internal/newsletter"
	"github.com/verdantlane/storefront-gateway/pkg/logger"
)

type subscribeRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name,omitempty"`
}

func NewsletterSubscribe(svc newslettersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload subscribeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Subscribe(r.Context(), payload.Email, payload.FirstName); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "subscribed"})
	}
}
