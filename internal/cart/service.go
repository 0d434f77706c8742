// Package cart keeps the browser's cart in step with the commerce backend:
// lazy creation, cookie-held identity, and region synchronization when the
// shopper switches country.
package cart

import (
	"context"
	"strings"
	"time"

	"github.com/verdantlane/storefront-gateway/internal/pricing"
	"github.com/verdantlane/storefront-gateway/internal/regions"
	pkgerrors "github.com/verdantlane/storefront-gateway/pkg/errors"
	"github.com/verdantlane/storefront-gateway/pkg/logger"
	"github.com/verdantlane/storefront-gateway/pkg/medusa"
)

const (
	// createLockTTL bounds how long a concurrent create for the same browser
	// stays blocked if the first request dies mid-flight.
	createLockTTL = 10 * time.Second
	// createLockWait bounds how long a losing concurrent create waits for
	// the holder before giving up and creating anyway.
	createLockWait = 2 * time.Second
	createLockPoll = 100 * time.Millisecond
)

type commerceClient interface {
	CreateCart(ctx context.Context, input medusa.CreateCartInput) (*medusa.Cart, error)
	GetCart(ctx context.Context, cartID string) (*medusa.Cart, error)
	UpdateCart(ctx context.Context, cartID string, patch medusa.CartPatch) (*medusa.Cart, error)
	AddLineItem(ctx context.Context, cartID, variantID string, quantity int) (*medusa.Cart, error)
	UpdateLineItem(ctx context.Context, cartID, lineItemID string, quantity int) (*medusa.Cart, error)
	DeleteLineItem(ctx context.Context, cartID, lineItemID string) (*medusa.Cart, error)
	GetProductByHandle(ctx context.Context, handle, regionID string) (*medusa.Product, error)
}

type locker interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	CartLockKey(sessionID string) string
}

// Result carries a cart plus whether this call created it, so the controller
// knows to persist the id to the session cookie.
type Result struct {
	Cart    *medusa.Cart
	Created bool
}

type Service interface {
	// GetOrSet returns the session's cart, creating one when cartID is empty
	// and patching its region when it no longer matches countryCode.
	GetOrSet(ctx context.Context, cartID, countryCode, sessionKey string) (Result, error)
	// AddItem adds a variant, creating the cart lazily first.
	AddItem(ctx context.Context, cartID, variantID string, quantity int, countryCode, sessionKey string) (Result, error)
	// AddCheapest adds the lowest-priced purchasable variant of a product.
	AddCheapest(ctx context.Context, cartID, productHandle, countryCode, sessionKey string) (Result, error)
	Update(ctx context.Context, cartID string, patch medusa.CartPatch) (*medusa.Cart, error)
	UpdateItem(ctx context.Context, cartID, lineItemID string, quantity int) (*medusa.Cart, error)
	RemoveItem(ctx context.Context, cartID, lineItemID string) (*medusa.Cart, error)
	// SetCountry re-homes the cart into the region serving countryCode.
	SetCountry(ctx context.Context, cartID, countryCode string) (*medusa.Cart, error)
	// ApplyPromotions replaces the cart's promo codes.
	ApplyPromotions(ctx context.Context, cartID string, codes []string) (*medusa.Cart, error)
}

type service struct {
	client  commerceClient
	regions regions.Service
	locks   locker
	logger  *logger.Logger
}

func NewService(client commerceClient, regionSvc regions.Service, locks locker, logg *logger.Logger) Service {
	return &service{
		client:  client,
		regions: regionSvc,
		locks:   locks,
		logger:  logg,
	}
}

func (s *service) GetOrSet(ctx context.Context, cartID, countryCode, sessionKey string) (Result, error) {
	if cartID == "" {
		cart, err := s.create(ctx, countryCode, sessionKey)
		if err != nil {
			return Result{}, err
		}
		return Result{Cart: cart, Created: true}, nil
	}

	cart, err := s.client.GetCart(ctx, cartID)
	if err != nil {
		return Result{}, err
	}
	cart, err = s.syncRegion(ctx, cart, countryCode)
	if err != nil {
		return Result{}, err
	}
	return Result{Cart: cart}, nil
}

func (s *service) AddItem(ctx context.Context, cartID, variantID string, quantity int, countryCode, sessionKey string) (Result, error) {
	if strings.TrimSpace(variantID) == "" {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "variant id is required")
	}
	if quantity <= 0 {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	created := false
	if cartID == "" {
		cart, err := s.create(ctx, countryCode, sessionKey)
		if err != nil {
			return Result{}, err
		}
		cartID = cart.ID
		created = true
	}

	cart, err := s.client.AddLineItem(ctx, cartID, variantID, quantity)
	if err != nil {
		return Result{}, err
	}
	return Result{Cart: cart, Created: created}, nil
}

func (s *service) AddCheapest(ctx context.Context, cartID, productHandle, countryCode, sessionKey string) (Result, error) {
	if strings.TrimSpace(productHandle) == "" {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "product handle is required")
	}

	region, err := s.regions.Resolve(ctx, countryCode)
	if err != nil {
		return Result{}, err
	}

	product, err := s.client.GetProductByHandle(ctx, productHandle, region.ID)
	if err != nil {
		return Result{}, err
	}

	variantID := cheapestVariant(product, region.CurrencyCode)
	if variantID == "" {
		return Result{}, pkgerrors.New(pkgerrors.CodeStateConflict, "no purchasable variant for product "+productHandle)
	}
	return s.AddItem(ctx, cartID, variantID, 1, countryCode, sessionKey)
}

func (s *service) Update(ctx context.Context, cartID string, patch medusa.CartPatch) (*medusa.Cart, error) {
	if cartID == "" {
		return nil, errNoCart()
	}
	if patch.IsEmpty() {
		return s.client.GetCart(ctx, cartID)
	}
	return s.client.UpdateCart(ctx, cartID, patch)
}

func (s *service) UpdateItem(ctx context.Context, cartID, lineItemID string, quantity int) (*medusa.Cart, error) {
	if cartID == "" {
		return nil, errNoCart()
	}
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	return s.client.UpdateLineItem(ctx, cartID, lineItemID, quantity)
}

func (s *service) RemoveItem(ctx context.Context, cartID, lineItemID string) (*medusa.Cart, error) {
	if cartID == "" {
		return nil, errNoCart()
	}
	return s.client.DeleteLineItem(ctx, cartID, lineItemID)
}

func (s *service) SetCountry(ctx context.Context, cartID, countryCode string) (*medusa.Cart, error) {
	if cartID == "" {
		return nil, errNoCart()
	}
	cart, err := s.client.GetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return s.syncRegion(ctx, cart, countryCode)
}

func (s *service) ApplyPromotions(ctx context.Context, cartID string, codes []string) (*medusa.Cart, error) {
	if cartID == "" {
		return nil, errNoCart()
	}
	return s.client.UpdateCart(ctx, cartID, medusa.CartPatch{PromoCodes: codes})
}

// create builds a cart in the region resolved for countryCode. A short lock
// keyed by the browser's anonymous session id serializes concurrent first-add
// requests so they don't race a duplicate cart into existence before the
// cookie lands.
func (s *service) create(ctx context.Context, countryCode, sessionKey string) (*medusa.Cart, error) {
	region, err := s.regions.Resolve(ctx, countryCode)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "resolving region for cart")
	}

	if s.locks != nil && sessionKey != "" {
		lockKey := s.locks.CartLockKey(sessionKey)
		if s.acquireCreateLock(ctx, lockKey) {
			defer s.locks.Del(ctx, lockKey)
		}
	}

	cart, err := s.client.CreateCart(ctx, medusa.CreateCartInput{
		RegionID:    region.ID,
		CountryCode: strings.ToLower(countryCode),
	})
	if err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.Info(s.logger.WithCartID(s.logger.WithRegionID(ctx, region.ID), cart.ID), "cart created")
	}
	return cart, nil
}

// acquireCreateLock polls the per-browser creation lock for a short window.
// Contention past the window, a lock error, and a cancelled context all
// degrade to the unguarded path: a duplicate cart is recoverable, a rejected
// add to cart is not.
func (s *service) acquireCreateLock(ctx context.Context, key string) bool {
	deadline := time.Now().Add(createLockWait)
	for {
		acquired, err := s.locks.SetNX(ctx, key, "1", createLockTTL)
		if err != nil {
			return false
		}
		if acquired {
			return true
		}
		if time.Now().After(deadline) {
			if s.logger != nil {
				s.logger.Warn(ctx, "cart create lock held past wait window, creating anyway")
			}
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(createLockPoll):
		}
	}
}

// syncRegion patches the cart's region when the active country resolves
// elsewhere. This is how currency switching reaches an in-flight cart.
func (s *service) syncRegion(ctx context.Context, cart *medusa.Cart, countryCode string) (*medusa.Cart, error) {
	region, err := s.regions.Resolve(ctx, countryCode)
	if err != nil {
		// The cart is still renderable in its old region.
		if s.logger != nil {
			s.logger.Warn(s.logger.WithCartID(ctx, cart.ID), "region resolve failed during cart sync")
		}
		return cart, nil
	}
	if region.ID == cart.RegionID {
		return cart, nil
	}
	return s.client.UpdateCart(ctx, cart.ID, medusa.CartPatch{RegionID: &region.ID})
}

func cheapestVariant(product *medusa.Product, currencyCode string) string {
	var bestID string
	var best *pricing.VariantPrice
	for i := range product.Variants {
		variant := &product.Variants[i]
		if variant.ManageInventory && variant.InventoryQuantity <= 0 {
			continue
		}
		price, ok := pricing.ForVariant(variant, currencyCode)
		if !ok {
			continue
		}
		if best == nil || price.Calculated.LessThan(best.Calculated) {
			best = price
			bestID = variant.ID
		}
	}
	return bestID
}

func errNoCart() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "no active cart for session")
}
