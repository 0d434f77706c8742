package controllers

import (
	"net/http"

	"github.com/verdantlane/storefront-gateway/api/responses"
	"github.com/verdantlane/storefront-gateway/api/validators"
	customersvc "github.com/verdantlane/storefront-gateway/internal/customers"
	"github.com/verdantlane/storefront-gateway/pkg/auth/session"
	"github.com/verdantlane/storefront-gateway/pkg/logger"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func CustomerLogin(svc customersvc.Service, sessions *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), payload.Email, payload.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sess := sessions.FromRequest(r)
		if !sessions.WriteAuth(w, sess, result.Token) && logg != nil {
			logg.Info(r.Context(), "login without consent, auth cookie not written")
		}
		responses.WriteSuccess(w, map[string]any{"customer": result.Customer})
	}
}

type registerRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

func CustomerRegister(svc customersvc.Service, sessions *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload registerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Register(r.Context(), customersvc.RegisterInput{
			Email:     payload.Email,
			Password:  payload.Password,
			FirstName: payload.FirstName,
			LastName:  payload.LastName,
			Phone:     payload.Phone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sess := sessions.FromRequest(r)
		sessions.WriteAuth(w, sess, result.Token)
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"customer": result.Customer})
	}
}

func CustomerMe(svc customersvc.Service, sessions *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessions.FromRequest(r)
		customer, err := svc.Me(r.Context(), sess.AuthToken)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"customer": customer})
	}
}

// CustomerLogout drops the auth cookie. The backend token simply expires;
// there is no server-side session to revoke.
func CustomerLogout(sessions *session.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions.ClearAuth(w)
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}
