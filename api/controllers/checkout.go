package controllers

import (
	"net/http"

	"github.com/verdantlane/storefront-gateway/api/responses"
	"github.com/verdantlane/storefront-gateway/api/validators"
	checkoutsvc "github.com/verdantlane/storefront-gateway/internal/checkout"
	"github.com/verdantlane/storefront-gateway/pkg/auth/session"
	"github.com/verdantlane/storefront-gateway/pkg/logger"
	"github.com/verdantlane/storefront-gateway/pkg/medusa"
)

type addressRequest struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Address1    string `json:"address_1" validate:"required"`
	Address2    string `json:"address_2,omitempty"`
	City        string `json:"city" validate:"required"`
	PostalCode  string `json:"postal_code" validate:"required"`
	Province    string `json:"province,omitempty"`
	CountryCode string `json:"country_code" validate:"required,len=2"`
	Phone       string `json:"phone,omitempty"`
}

func (a addressRequest) toAddress() medusa.Address {
	return medusa.Address{
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		Address1:    a.Address1,
		Address2:    a.Address2,
		City:        a.City,
		PostalCode:  a.PostalCode,
		Province:    a.Province,
		CountryCode: a.CountryCode,
		Phone:       a.Phone,
	}
}

type setAddressesRequest struct {
	Email           string          `json:"email" validate:"required,email"`
	ShippingAddress addressRequest  `json:"shipping_address" validate:"required"`
	BillingAddress  *addressRequest `json:"billing_address,omitempty"`
}

func CheckoutAddresses(svc checkoutsvc.Service, sessions *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload setAddressesRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := checkoutsvc.AddressesInput{
			Email:           payload.Email,
			ShippingAddress: payload.ShippingAddress.toAddress(),
		}
		if payload.BillingAddress != nil {
			billing := payload.BillingAddress.toAddress()
			input.BillingAddress = &billing
		}

		sess := sessions.FromRequest(r)
		cart, err := svc.SetAddresses(r.Context(), sess.CartID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

func CheckoutShippingOptions(svc checkoutsvc.Service, sessions *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessions.FromRequest(r)
		options, err := svc.ShippingOptions(r.Context(), sess.CartID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"shipping_options": options})
	}
}

type shippingMethodRequest struct {
	OptionID string `json:"option_id" validate:"required"`
}

func CheckoutShippingMethod(svc checkoutsvc.Service, sessions *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload shippingMethodRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sess := sessions.FromRequest(r)
		cart, err := svc.SelectShippingMethod(r.Context(), sess.CartID, payload.OptionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart)
	}
}

type paymentSessionRequest struct {
	ProviderID string `json:"provider_id,omitempty"`
}

func CheckoutPaymentSession(svc checkoutsvc.Service, sessions *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload paymentSessionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sess := sessions.FromRequest(r)
		collection, err := svc.InitiatePayment(r.Context(), sess.CartID, payload.ProviderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, collection)
	}
}

// CheckoutValidate is the pre-submit shipping coverage check. It reports
// uncovered profile ids without attempting completion.
func CheckoutValidate(svc checkoutsvc.Service, sessions *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessions.FromRequest(r)
		missing, err := svc.MissingProfiles(r.Context(), sess.CartID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"valid":               len(missing) == 0,
			"missing_profile_ids": missing,
		})
	}
}

// CheckoutComplete finalizes the order and retires the cart cookie.
func CheckoutComplete(svc checkoutsvc.Service, sessions *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessions.FromRequest(r)
		order, err := svc.Complete(r.Context(), sess.CartID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessions.ClearCart(w)
		responses.WriteSuccess(w, map[string]any{"order": order})
	}
}
