package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/verdantlane/storefront-gateway/api/responses"
	"github.com/verdantlane/storefront-gateway/api/validators"
	cartsvc "github.com/verdantlane/storefront-gateway/internal/cart"
	"github.com/verdantlane/storefront-gateway/pkg/auth/session"
	pkgerrors "github.com/verdantlane/storefront-gateway/pkg/errors"
	"github.com/verdantlane/storefront-gateway/pkg/logger"
)

// writeCartResult persists a newly created cart id to the session cookie
// and renders the cart. A declined consent means the cart still works for
// this response but will not survive the browser session.
func writeCartResult(w http.ResponseWriter, r *http.Request, logg *logger.Logger, sessions *session.Manager, result cartsvc.Result) {
	if result.Created {
		sess := sessions.FromRequest(r)
		if !sessions.WriteCart(w, sess, result.Cart.ID) && logg != nil {
			logg.Info(logg.WithCartID(r.Context(), result.Cart.ID), "cart created without consent, cookie not written")
		}
	}
	responses.WriteSuccess(w, result.Cart)
}

func countryParam(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("country"))
}

// GetCart returns the session cart, creating one when none exists.
func GetCart(svc cartsvc.Service, sessions *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessions.FromRequest(r)
		result, err := svc.GetOrSet(r.Context(), sess.CartID, countryParam(r), sessions.EnsureAnonID(w, sess))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeCartResult(w, r, logg, sessions, result)
	}
}

type addItemRequest struct {
	VariantID string `json:"variant_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

func AddCartItem(svc cartsvc.Service, sessions *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sess := sessions.FromRequest(r)
		result, err := svc.AddItem(r.Context(), sess.CartID, payload.VariantID, payload.Quantity, countryParam(r), sessions.EnsureAnonID(w, sess))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeCartResult(w, r, logg, sessions, result)
	}
}

type addCheapestRequest struct {
	ProductHandle string `json:"product_handle" validate:"required"`
}

// AddCheapestItem adds the lowest-priced purchasable variant of a product.
func AddCheapestItem(svc cartsvc.Service, sessions *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addCheapestRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sess := sessions.FromRequest(r)
		result, err := svc.AddCheapest(r.Context(), sess.CartID, payload.ProductHandle, countryParam(r), sessions.EnsureAnonID(w, sess))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeCartResult(w, r, logg, sessions, result)
	}
}

type updateItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

func UpdateCartItem(svc cartsvc.Service, sessions *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lineID := chi.URLParam(r, "lineID")

		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sess := sessions.FromRequest(r)
		cart, err := svc.UpdateItem(r.Context(), sess.CartID, lineID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

func RemoveCartItem(svc cartsvc.Service, sessions *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lineID := chi.URLParam(r, "lineID")

		sess := sessions.FromRequest(r)
		cart, err := svc.RemoveItem(r.Context(), sess.CartID, lineID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

type setCountryRequest struct {
	CountryCode string `json:"country_code" validate:"required,len=2"`
}

// SetCartRegion moves the cart to the region serving the given country.
func SetCartRegion(svc cartsvc.Service, sessions *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload setCountryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sess := sessions.FromRequest(r)
		cart, err := svc.SetCountry(r.Context(), sess.CartID, payload.CountryCode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

type promotionsRequest struct {
	Codes []string `json:"codes" validate:"required"`
}

func ApplyCartPromotions(svc cartsvc.Service, sessions *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload promotionsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sess := sessions.FromRequest(r)
		if sess.CartID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "no active cart for session"))
			return
		}
		cart, err := svc.ApplyPromotions(r.Context(), sess.CartID, payload.Codes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}
