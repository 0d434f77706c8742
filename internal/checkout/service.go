// Package checkout walks a cart through addresses, shipping selection,
// payment, and completion. The shipping-profile coverage rule is enforced
// here, right before the backend call, with the same pure check the
// pre-submit endpoint uses.
package checkout

import (
	"context"
	"strings"

	"github.com/verdantlane/storefront-gateway/internal/shipping"
	pkgerrors "github.com/verdantlane/storefront-gateway/pkg/errors"
	"github.com/verdantlane/storefront-gateway/pkg/logger"
	"github.com/verdantlane/storefront-gateway/pkg/medusa"
)

type commerceClient interface {
	GetCart(ctx context.Context, cartID string) (*medusa.Cart, error)
	UpdateCart(ctx context.Context, cartID string, patch medusa.CartPatch) (*medusa.Cart, error)
	ListShippingOptions(ctx context.Context, cartID string) ([]medusa.ShippingOption, error)
	AddShippingMethod(ctx context.Context, cartID, optionID string) (*medusa.Cart, error)
	CreatePaymentCollection(ctx context.Context, cartID string) (*medusa.PaymentCollection, error)
	InitiatePaymentSession(ctx context.Context, collectionID, providerID string) (*medusa.PaymentCollection, error)
	CompleteCart(ctx context.Context, cartID string) (*medusa.Order, error)
}

// AddressesInput sets the contact and delivery details in one call.
type AddressesInput struct {
	Email           string
	ShippingAddress medusa.Address
	BillingAddress  *medusa.Address
}

type Service interface {
	SetAddresses(ctx context.Context, cartID string, input AddressesInput) (*medusa.Cart, error)
	ShippingOptions(ctx context.Context, cartID string) ([]medusa.ShippingOption, error)
	SelectShippingMethod(ctx context.Context, cartID, optionID string) (*medusa.Cart, error)
	InitiatePayment(ctx context.Context, cartID, providerID string) (*medusa.PaymentCollection, error)
	// MissingProfiles reports which shipping profiles still need a method.
	// Used by the pre-submit check so the UI can hold the shopper back.
	MissingProfiles(ctx context.Context, cartID string) ([]string, error)
	// Complete validates shipping coverage and finalizes the order.
	Complete(ctx context.Context, cartID string) (*medusa.Order, error)
}

type service struct {
	client commerceClient
	logger *logger.Logger
}

func NewService(client commerceClient, logg *logger.Logger) Service {
	return &service{client: client, logger: logg}
}

func (s *service) SetAddresses(ctx context.Context, cartID string, input AddressesInput) (*medusa.Cart, error) {
	if cartID == "" {
		return nil, errNoCart()
	}
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	billing := input.BillingAddress
	if billing == nil {
		// Same-as-shipping is the default storefront behavior.
		shippingCopy := input.ShippingAddress
		billing = &shippingCopy
	}

	return s.client.UpdateCart(ctx, cartID, medusa.CartPatch{
		Email:           &email,
		ShippingAddress: &input.ShippingAddress,
		BillingAddress:  billing,
	})
}

func (s *service) ShippingOptions(ctx context.Context, cartID string) ([]medusa.ShippingOption, error) {
	if cartID == "" {
		return nil, errNoCart()
	}
	return s.client.ListShippingOptions(ctx, cartID)
}

func (s *service) SelectShippingMethod(ctx context.Context, cartID, optionID string) (*medusa.Cart, error) {
	if cartID == "" {
		return nil, errNoCart()
	}
	if strings.TrimSpace(optionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping option id is required")
	}
	return s.client.AddShippingMethod(ctx, cartID, optionID)
}

func (s *service) InitiatePayment(ctx context.Context, cartID, providerID string) (*medusa.PaymentCollection, error) {
	if cartID == "" {
		return nil, errNoCart()
	}
	cart, err := s.client.GetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	collection := cart.PaymentCollection
	if collection == nil {
		collection, err = s.client.CreatePaymentCollection(ctx, cartID)
		if err != nil {
			return nil, err
		}
	}
	if providerID == "" {
		providerID = "pp_system_default"
	}
	return s.client.InitiatePaymentSession(ctx, collection.ID, providerID)
}

func (s *service) MissingProfiles(ctx context.Context, cartID string) ([]string, error) {
	if cartID == "" {
		return nil, errNoCart()
	}
	cart, options, err := s.cartWithOptions(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return shipping.MissingProfiles(cart.Items, cart.ShippingMethods, options), nil
}

func (s *service) Complete(ctx context.Context, cartID string) (*medusa.Order, error) {
	if cartID == "" {
		return nil, errNoCart()
	}
	cart, options, err := s.cartWithOptions(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if err := shipping.Validate(cart.Items, cart.ShippingMethods, options); err != nil {
		return nil, err
	}

	order, err := s.client.CompleteCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if s.logger != nil {
		s.logger.Info(s.logger.WithCartID(ctx, cartID), "cart completed into order")
	}
	return order, nil
}

func (s *service) cartWithOptions(ctx context.Context, cartID string) (*medusa.Cart, []medusa.ShippingOption, error) {
	cart, err := s.client.GetCart(ctx, cartID)
	if err != nil {
		return nil, nil, err
	}
	options, err := s.client.ListShippingOptions(ctx, cartID)
	if err != nil {
		return nil, nil, err
	}
	return cart, options, nil
}

func errNoCart() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "no active cart for session")
}
