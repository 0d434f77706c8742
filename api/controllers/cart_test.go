package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	cartsvc "github.com/verdantlane/storefront-gateway/internal/cart"
	"github.com/verdantlane/storefront-gateway/pkg/auth/session"
	"github.com/verdantlane/storefront-gateway/pkg/config"
	pkgerrors "github.com/verdantlane/storefront-gateway/pkg/errors"
	"github.com/verdantlane/storefront-gateway/pkg/logger"
	"github.com/verdantlane/storefront-gateway/pkg/medusa"
)

type fakeCartService struct {
	cartsvc.Service
	result         cartsvc.Result
	err            error
	lastCartID     string
	lastSessionKey string
}

func (f *fakeCartService) GetOrSet(_ context.Context, cartID, _, sessionKey string) (cartsvc.Result, error) {
	f.lastCartID = cartID
	f.lastSessionKey = sessionKey
	return f.result, f.err
}

func (f *fakeCartService) AddItem(_ context.Context, cartID, _ string, _ int, _, sessionKey string) (cartsvc.Result, error) {
	f.lastCartID = cartID
	f.lastSessionKey = sessionKey
	return f.result, f.err
}

func testSessions() *session.Manager {
	return session.NewManager(config.CookieConfig{
		CartMaxAge:     168 * time.Hour,
		AuthMaxAge:     168 * time.Hour,
		RequireConsent: true,
	})
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test"})
}

func cartCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CartCookie {
			return c
		}
	}
	return nil
}

func TestGetCart_CreatesAndWritesCookieWithConsent(t *testing.T) {
	svc := &fakeCartService{result: cartsvc.Result{
		Cart:    &medusa.Cart{ID: "cart_new"},
		Created: true,
	}}
	handler := GetCart(svc, testSessions(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.AddCookie(&http.Cookie{Name: session.ConsentAcceptedCookie, Value: "true"})
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	cookie := cartCookie(rec)
	if cookie == nil || cookie.Value != "cart_new" {
		t.Fatalf("expected cart cookie, got %v", cookie)
	}
	if !cookie.HttpOnly || cookie.SameSite != http.SameSiteStrictMode {
		t.Fatalf("cart cookie must be http-only same-site strict: %+v", cookie)
	}
}

func TestGetCart_NoCookieWithoutConsent(t *testing.T) {
	svc := &fakeCartService{result: cartsvc.Result{
		Cart:    &medusa.Cart{ID: "cart_new"},
		Created: true,
	}}
	handler := GetCart(svc, testSessions(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("cart must still render without consent, got %d", rec.Code)
	}
	if cookie := cartCookie(rec); cookie != nil {
		t.Fatalf("cookie must not be written without consent: %+v", cookie)
	}
}

func TestGetCart_MintsAnonIDWithConsent(t *testing.T) {
	svc := &fakeCartService{result: cartsvc.Result{
		Cart:    &medusa.Cart{ID: "cart_new"},
		Created: true,
	}}
	handler := GetCart(svc, testSessions(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.AddCookie(&http.Cookie{Name: session.ConsentAcceptedCookie, Value: "true"})
	rec := httptest.NewRecorder()
	handler(rec, req)

	var anon *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.AnonCookie {
			anon = c
		}
	}
	if anon == nil || anon.Value == "" {
		t.Fatal("expected an anonymous session cookie with consent")
	}
	if svc.lastSessionKey != anon.Value {
		t.Fatalf("expected minted id %q forwarded as session key, got %q", anon.Value, svc.lastSessionKey)
	}
}

func TestAddCartItem_ForwardsExistingAnonID(t *testing.T) {
	svc := &fakeCartService{result: cartsvc.Result{Cart: &medusa.Cart{ID: "cart_new"}, Created: true}}
	handler := AddCartItem(svc, testSessions(), testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/cart/add",
		strings.NewReader(`{"variant_id":"var_1","quantity":1}`))
	req.AddCookie(&http.Cookie{Name: session.ConsentAcceptedCookie, Value: "true"})
	req.AddCookie(&http.Cookie{Name: session.AnonCookie, Value: "sid_1"})
	rec := httptest.NewRecorder()
	handler(rec, req)

	if svc.lastSessionKey != "sid_1" {
		t.Fatalf("expected existing anon id forwarded, got %q", svc.lastSessionKey)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.AnonCookie {
			t.Fatalf("existing anon id must not be reminted: %+v", c)
		}
	}
}

func TestGetCart_PassesSessionCartID(t *testing.T) {
	svc := &fakeCartService{result: cartsvc.Result{Cart: &medusa.Cart{ID: "cart_1"}}}
	handler := GetCart(svc, testSessions(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.AddCookie(&http.Cookie{Name: session.CartCookie, Value: "cart_1"})
	rec := httptest.NewRecorder()
	handler(rec, req)

	if svc.lastCartID != "cart_1" {
		t.Fatalf("expected session cart id forwarded, got %q", svc.lastCartID)
	}
	if cookie := cartCookie(rec); cookie != nil {
		t.Fatalf("existing cart must not rewrite the cookie: %+v", cookie)
	}
}

func TestAddCartItem_ValidatesBody(t *testing.T) {
	svc := &fakeCartService{}
	handler := AddCartItem(svc, testSessions(), testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/cart/add", strings.NewReader(`{"variant_id":""}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["error"].(map[string]any)["code"] != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestAddCartItem_ServiceErrorMapped(t *testing.T) {
	svc := &fakeCartService{err: pkgerrors.New(pkgerrors.CodeUpstreamTimeout, "commerce backend timed out")}
	handler := AddCartItem(svc, testSessions(), testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/cart/add",
		strings.NewReader(`{"variant_id":"var_1","quantity":2}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", rec.Code)
	}
}
