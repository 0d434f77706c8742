// Package session owns the storefront's cookie surface: the cart identifier,
// the backend-issued auth token, onboarding state, and the consent flags that
// gate whether the first two may be written at all.
package session

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/verdantlane/storefront-gateway/pkg/auth"
	"github.com/verdantlane/storefront-gateway/pkg/config"
)

const (
	CartCookie       = "_medusa_cart_id"
	AuthCookie       = "_medusa_jwt"
	AnonCookie       = "_medusa_sid"
	OnboardingCookie = "_medusa_onboarding"

	// Consent cookies are written by the storefront client and only read here.
	ConsentAcceptedCookie = "cookiesAccepted"
	ConsentDeclinedCookie = "cookiesDeclined"
)

// anonMaxAge keeps the anonymous browser id around long enough to serialize
// cart creation across tabs without becoming a tracking identifier.
const anonMaxAge = 24 * time.Hour

// Session is the per-request view of the cookie state.
type Session struct {
	CartID          string
	AuthToken       string
	AnonID          string
	OnboardingSeen  bool
	ConsentAccepted bool
	ConsentDeclined bool
}

// CanPersist reports whether functional cookies may be written for this
// session under the configured consent policy.
func (s Session) CanPersist(requireConsent bool) bool {
	if !requireConsent {
		return true
	}
	return s.ConsentAccepted && !s.ConsentDeclined
}

// Manager encodes and decodes the storefront cookies.
type Manager struct {
	cfg config.CookieConfig
	now func() time.Time
}

func NewManager(cfg config.CookieConfig) *Manager {
	return &Manager{cfg: cfg, now: time.Now}
}

// FromRequest loads the session view from the incoming request's cookies.
func (m *Manager) FromRequest(r *http.Request) Session {
	s := Session{}
	if c, err := r.Cookie(CartCookie); err == nil {
		s.CartID = c.Value
	}
	if c, err := r.Cookie(AuthCookie); err == nil {
		s.AuthToken = c.Value
	}
	if c, err := r.Cookie(AnonCookie); err == nil {
		s.AnonID = c.Value
	}
	if c, err := r.Cookie(OnboardingCookie); err == nil && c.Value != "" {
		s.OnboardingSeen = true
	}
	if c, err := r.Cookie(ConsentAcceptedCookie); err == nil && c.Value == "true" {
		s.ConsentAccepted = true
	}
	if c, err := r.Cookie(ConsentDeclinedCookie); err == nil && c.Value == "true" {
		s.ConsentDeclined = true
	}
	return s
}

// EnsureAnonID returns a stable per-browser identifier, minting one and
// setting its cookie when the session has none yet. Without consent no cookie
// may land, so the id is empty and callers skip whatever it would have keyed.
func (m *Manager) EnsureAnonID(w http.ResponseWriter, s Session) string {
	if s.AnonID != "" {
		return s.AnonID
	}
	if !s.CanPersist(m.cfg.RequireConsent) {
		return ""
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     AnonCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(anonMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteStrictMode,
	})
	return id
}

// WriteCart persists the cart id, honoring the consent gate. Returns whether
// a cookie was actually written so callers can log degraded sessions.
func (m *Manager) WriteCart(w http.ResponseWriter, s Session, cartID string) bool {
	if !s.CanPersist(m.cfg.RequireConsent) {
		return false
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CartCookie,
		Value:    cartID,
		Path:     "/",
		MaxAge:   int(m.cfg.CartMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteStrictMode,
	})
	return true
}

// ClearCart expires the cart cookie.
func (m *Manager) ClearCart(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CartCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// WriteAuth persists the backend JWT. The cookie's lifetime is the configured
// maximum, shortened to the token's own exp claim when that comes first.
func (m *Manager) WriteAuth(w http.ResponseWriter, s Session, token string) bool {
	if !s.CanPersist(m.cfg.RequireConsent) {
		return false
	}
	maxAge := m.cfg.AuthMaxAge
	if expiry, err := auth.TokenExpiry(token); err == nil && !expiry.IsZero() {
		if until := expiry.Sub(m.now()); until > 0 && until < maxAge {
			maxAge = until
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteStrictMode,
	})
	return true
}

// ClearAuth expires the auth cookie.
func (m *Manager) ClearAuth(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// WriteOnboarding marks the onboarding flow as seen.
func (m *Manager) WriteOnboarding(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     OnboardingCookie,
		Value:    "seen",
		Path:     "/",
		MaxAge:   int(m.cfg.CartMaxAge.Seconds()),
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
