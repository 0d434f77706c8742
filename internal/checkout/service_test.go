package checkout

import (
	"context"
	"strings"
	"testing"

	pkgerrors "github.com/verdantlane/storefront-gateway/pkg/errors"
	"github.com/verdantlane/storefront-gateway/pkg/logger"
	"github.com/verdantlane/storefront-gateway/pkg/medusa"
)

type fakeCommerce struct {
	cart          *medusa.Cart
	options       []medusa.ShippingOption
	completeCalls int
	completeErr   error
	patches       []medusa.CartPatch
	methodAdds    []string
	collection    *medusa.PaymentCollection
}

func (f *fakeCommerce) GetCart(context.Context, string) (*medusa.Cart, error) {
	if f.cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	return f.cart, nil
}

func (f *fakeCommerce) UpdateCart(_ context.Context, _ string, patch medusa.CartPatch) (*medusa.Cart, error) {
	f.patches = append(f.patches, patch)
	return f.cart, nil
}

func (f *fakeCommerce) ListShippingOptions(context.Context, string) ([]medusa.ShippingOption, error) {
	return f.options, nil
}

func (f *fakeCommerce) AddShippingMethod(_ context.Context, _ string, optionID string) (*medusa.Cart, error) {
	f.methodAdds = append(f.methodAdds, optionID)
	return f.cart, nil
}

func (f *fakeCommerce) CreatePaymentCollection(context.Context, string) (*medusa.PaymentCollection, error) {
	f.collection = &medusa.PaymentCollection{ID: "paycol_1"}
	return f.collection, nil
}

func (f *fakeCommerce) InitiatePaymentSession(_ context.Context, collectionID, providerID string) (*medusa.PaymentCollection, error) {
	return &medusa.PaymentCollection{
		ID: collectionID,
		PaymentSessions: []medusa.PaymentSession{
			{ID: "ps_1", ProviderID: providerID},
		},
	}, nil
}

func (f *fakeCommerce) CompleteCart(context.Context, string) (*medusa.Order, error) {
	f.completeCalls++
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	return &medusa.Order{ID: "order_1", DisplayID: 7}, nil
}

func itemWithProfile(profileID string) medusa.LineItem {
	return medusa.LineItem{
		Variant: &medusa.Variant{Product: &medusa.Product{ShippingProfileID: profileID}},
	}
}

// twoProfileCart has "seeds" covered and "merch" uncovered, matching the
// canonical mixed-cart scenario.
func twoProfileCart() (*medusa.Cart, []medusa.ShippingOption) {
	cart := &medusa.Cart{
		ID:    "cart_1",
		Items: []medusa.LineItem{itemWithProfile("sp_seeds"), itemWithProfile("sp_merch")},
		ShippingMethods: []medusa.ShippingMethod{
			{ShippingOptionID: "so_seeds"},
		},
	}
	options := []medusa.ShippingOption{
		{ID: "so_seeds", ShippingProfileID: "sp_seeds"},
		{ID: "so_merch", ShippingProfileID: "sp_merch"},
	}
	return cart, options
}

func newTestService(commerce *fakeCommerce) Service {
	return NewService(commerce, logger.New(logger.Options{ServiceName: "test"}))
}

func TestComplete_BlockedByUncoveredProfile(t *testing.T) {
	commerce := &fakeCommerce{}
	commerce.cart, commerce.options = twoProfileCart()
	svc := newTestService(commerce)

	_, err := svc.Complete(context.Background(), "cart_1")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	details := typed.Details().(map[string]any)
	ids := details["missing_profile_ids"].([]string)
	if len(ids) != 1 || !strings.Contains(ids[0], "sp_merch") {
		t.Fatalf("expected error to name sp_merch, got %v", ids)
	}
	if commerce.completeCalls != 0 {
		t.Fatal("backend completion must not be attempted")
	}
}

func TestComplete_SucceedsWithFullCoverage(t *testing.T) {
	commerce := &fakeCommerce{}
	commerce.cart, commerce.options = twoProfileCart()
	commerce.cart.ShippingMethods = append(commerce.cart.ShippingMethods,
		medusa.ShippingMethod{ShippingOptionID: "so_merch"})
	svc := newTestService(commerce)

	order, err := svc.Complete(context.Background(), "cart_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != "order_1" {
		t.Fatalf("unexpected order: %+v", order)
	}
	if commerce.completeCalls != 1 {
		t.Fatalf("expected one completion call, got %d", commerce.completeCalls)
	}
}

func TestComplete_BackendErrorPropagates(t *testing.T) {
	commerce := &fakeCommerce{}
	commerce.cart, commerce.options = twoProfileCart()
	commerce.cart.ShippingMethods = append(commerce.cart.ShippingMethods,
		medusa.ShippingMethod{ShippingOptionID: "so_merch"})
	commerce.completeErr = pkgerrors.New(pkgerrors.CodeStateConflict, "payment not authorized")
	svc := newTestService(commerce)

	_, err := svc.Complete(context.Background(), "cart_1")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Message() != "payment not authorized" {
		t.Fatalf("expected backend message to propagate, got %v", err)
	}
}

func TestMissingProfiles_PreSubmitCheck(t *testing.T) {
	commerce := &fakeCommerce{}
	commerce.cart, commerce.options = twoProfileCart()
	svc := newTestService(commerce)

	missing, err := svc.MissingProfiles(context.Background(), "cart_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(missing) != 1 || missing[0] != "sp_merch" {
		t.Fatalf("expected [sp_merch], got %v", missing)
	}
}

func TestSetAddresses_DefaultsBillingToShipping(t *testing.T) {
	commerce := &fakeCommerce{cart: &medusa.Cart{ID: "cart_1"}}
	svc := newTestService(commerce)

	shippingAddr := medusa.Address{Address1: "1 Garden Way", CountryCode: "us"}
	_, err := svc.SetAddresses(context.Background(), "cart_1", AddressesInput{
		Email:           "basil@example.com",
		ShippingAddress: shippingAddr,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	patch := commerce.patches[0]
	if patch.BillingAddress == nil || patch.BillingAddress.Address1 != "1 Garden Way" {
		t.Fatalf("expected billing defaulted to shipping, got %+v", patch.BillingAddress)
	}
	if patch.Email == nil || *patch.Email != "basil@example.com" {
		t.Fatalf("expected email set, got %+v", patch.Email)
	}
}

func TestSetAddresses_RequiresEmail(t *testing.T) {
	svc := newTestService(&fakeCommerce{cart: &medusa.Cart{ID: "cart_1"}})

	_, err := svc.SetAddresses(context.Background(), "cart_1", AddressesInput{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestInitiatePayment_CreatesCollectionWhenAbsent(t *testing.T) {
	commerce := &fakeCommerce{cart: &medusa.Cart{ID: "cart_1"}}
	svc := newTestService(commerce)

	collection, err := svc.InitiatePayment(context.Background(), "cart_1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if collection.ID != "paycol_1" {
		t.Fatalf("expected created collection, got %+v", collection)
	}
	if collection.PaymentSessions[0].ProviderID != "pp_system_default" {
		t.Fatalf("expected default provider, got %+v", collection.PaymentSessions)
	}
}

func TestInitiatePayment_ReusesExistingCollection(t *testing.T) {
	commerce := &fakeCommerce{cart: &medusa.Cart{
		ID:                "cart_1",
		PaymentCollection: &medusa.PaymentCollection{ID: "paycol_existing"},
	}}
	svc := newTestService(commerce)

	collection, err := svc.InitiatePayment(context.Background(), "cart_1", "pp_stripe")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if collection.ID != "paycol_existing" {
		t.Fatalf("expected existing collection, got %+v", collection)
	}
}

func TestOperations_RequireCart(t *testing.T) {
	svc := newTestService(&fakeCommerce{})
	ctx := context.Background()

	if _, err := svc.SetAddresses(ctx, "", AddressesInput{Email: "a@b.c"}); err == nil {
		t.Fatal("expected error without cart")
	}
	if _, err := svc.ShippingOptions(ctx, ""); err == nil {
		t.Fatal("expected error without cart")
	}
	if _, err := svc.SelectShippingMethod(ctx, "", "so_1"); err == nil {
		t.Fatal("expected error without cart")
	}
	if _, err := svc.Complete(ctx, ""); err == nil {
		t.Fatal("expected error without cart")
	}
}
