package medusa

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// cartFields asks the backend to expand everything the gateway reconciles:
// variant products carry the shipping profile id, calculated prices carry the
// region's currency resolution.
const cartFields = "*items.variant.product,*items.variant.calculated_price,*shipping_methods,*payment_collection"

type cartResponse struct {
	Cart Cart `json:"cart"`
}

type CreateCartInput struct {
	RegionID    string `json:"region_id"`
	CountryCode string `json:"country_code,omitempty"`
	Email       string `json:"email,omitempty"`
}

func (c *Client) CreateCart(ctx context.Context, input CreateCartInput) (*Cart, error) {
	var resp cartResponse
	if err := c.do(ctx, requestOptions{
		method: http.MethodPost,
		path:   "/store/carts",
		query:  cartQuery(),
		body:   input,
	}, &resp); err != nil {
		return nil, err
	}
	return &resp.Cart, nil
}

func (c *Client) GetCart(ctx context.Context, cartID string) (*Cart, error) {
	var resp cartResponse
	if err := c.do(ctx, requestOptions{
		method: http.MethodGet,
		path:   "/store/carts/" + cartID,
		query:  cartQuery(),
	}, &resp); err != nil {
		return nil, err
	}
	return &resp.Cart, nil
}

func (c *Client) UpdateCart(ctx context.Context, cartID string, patch CartPatch) (*Cart, error) {
	var resp cartResponse
	if err := c.do(ctx, requestOptions{
		method: http.MethodPost,
		path:   "/store/carts/" + cartID,
		query:  cartQuery(),
		body:   patch,
	}, &resp); err != nil {
		return nil, err
	}
	return &resp.Cart, nil
}

type addLineItemInput struct {
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

func (c *Client) AddLineItem(ctx context.Context, cartID, variantID string, quantity int) (*Cart, error) {
	var resp cartResponse
	if err := c.do(ctx, requestOptions{
		method: http.MethodPost,
		path:   fmt.Sprintf("/store/carts/%s/line-items", cartID),
		query:  cartQuery(),
		body:   addLineItemInput{VariantID: variantID, Quantity: quantity},
	}, &resp); err != nil {
		return nil, err
	}
	return &resp.Cart, nil
}

type updateLineItemInput struct {
	Quantity int `json:"quantity"`
}

func (c *Client) UpdateLineItem(ctx context.Context, cartID, lineItemID string, quantity int) (*Cart, error) {
	var resp cartResponse
	if err := c.do(ctx, requestOptions{
		method: http.MethodPost,
		path:   fmt.Sprintf("/store/carts/%s/line-items/%s", cartID, lineItemID),
		query:  cartQuery(),
		body:   updateLineItemInput{Quantity: quantity},
	}, &resp); err != nil {
		return nil, err
	}
	return &resp.Cart, nil
}

func (c *Client) DeleteLineItem(ctx context.Context, cartID, lineItemID string) (*Cart, error) {
	if err := c.do(ctx, requestOptions{
		method: http.MethodDelete,
		path:   fmt.Sprintf("/store/carts/%s/line-items/%s", cartID, lineItemID),
	}, nil); err != nil {
		return nil, err
	}
	return c.GetCart(ctx, cartID)
}

type shippingOptionsResponse struct {
	ShippingOptions []ShippingOption `json:"shipping_options"`
}

func (c *Client) ListShippingOptions(ctx context.Context, cartID string) ([]ShippingOption, error) {
	query := url.Values{}
	query.Set("cart_id", cartID)
	var resp shippingOptionsResponse
	if err := c.do(ctx, requestOptions{
		method: http.MethodGet,
		path:   "/store/shipping-options",
		query:  query,
	}, &resp); err != nil {
		return nil, err
	}
	return resp.ShippingOptions, nil
}

type addShippingMethodInput struct {
	OptionID string `json:"option_id"`
}

func (c *Client) AddShippingMethod(ctx context.Context, cartID, optionID string) (*Cart, error) {
	var resp cartResponse
	if err := c.do(ctx, requestOptions{
		method: http.MethodPost,
		path:   fmt.Sprintf("/store/carts/%s/shipping-methods", cartID),
		query:  cartQuery(),
		body:   addShippingMethodInput{OptionID: optionID},
	}, &resp); err != nil {
		return nil, err
	}
	return &resp.Cart, nil
}

type paymentCollectionInput struct {
	CartID string `json:"cart_id"`
}

type paymentCollectionResponse struct {
	PaymentCollection PaymentCollection `json:"payment_collection"`
}

func (c *Client) CreatePaymentCollection(ctx context.Context, cartID string) (*PaymentCollection, error) {
	var resp paymentCollectionResponse
	if err := c.do(ctx, requestOptions{
		method: http.MethodPost,
		path:   "/store/payment-collections",
		body:   paymentCollectionInput{CartID: cartID},
	}, &resp); err != nil {
		return nil, err
	}
	return &resp.PaymentCollection, nil
}

type paymentSessionInput struct {
	ProviderID string `json:"provider_id"`
}

func (c *Client) InitiatePaymentSession(ctx context.Context, collectionID, providerID string) (*PaymentCollection, error) {
	var resp paymentCollectionResponse
	if err := c.do(ctx, requestOptions{
		method: http.MethodPost,
		path:   fmt.Sprintf("/store/payment-collections/%s/payment-sessions", collectionID),
		body:   paymentSessionInput{ProviderID: providerID},
	}, &resp); err != nil {
		return nil, err
	}
	return &resp.PaymentCollection, nil
}

// completeResponse distinguishes the backend's success and failure unions.
type completeResponse struct {
	Type  string `json:"type"`
	Order *Order `json:"order,omitempty"`
	Cart  *Cart  `json:"cart,omitempty"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// CompleteCart finalizes the cart into an order. The backend may answer 200
// with an embedded error union instead of a bare status code.
func (c *Client) CompleteCart(ctx context.Context, cartID string) (*Order, error) {
	var resp completeResponse
	if err := c.do(ctx, requestOptions{
		method: http.MethodPost,
		path:   fmt.Sprintf("/store/carts/%s/complete", cartID),
	}, &resp); err != nil {
		return nil, err
	}
	if resp.Order != nil {
		return resp.Order, nil
	}
	message := "cart completion failed"
	if resp.Error != nil && resp.Error.Message != "" {
		message = resp.Error.Message
	}
	return nil, newCompletionError(message)
}

func cartQuery() url.Values {
	query := url.Values{}
	query.Set("fields", cartFields)
	return query
}
