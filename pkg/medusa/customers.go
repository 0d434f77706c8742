package medusa

import (
	"context"
	"net/http"

	pkgerrors "github.com/verdantlane/storefront-gateway/pkg/errors"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Login exchanges customer credentials for a backend-issued JWT. The token is
// opaque to the gateway beyond its expiry claim.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp tokenResponse
	if err := c.do(ctx, requestOptions{
		method: http.MethodPost,
		path:   "/auth/customer/emailpass",
		body:   credentials{Email: email, Password: password},
	}, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", pkgerrors.New(pkgerrors.CodeUpstream, "backend returned empty token")
	}
	return resp.Token, nil
}

// RegisterToken obtains the registration token that authorizes customer creation.
func (c *Client) RegisterToken(ctx context.Context, email, password string) (string, error) {
	var resp tokenResponse
	if err := c.do(ctx, requestOptions{
		method: http.MethodPost,
		path:   "/auth/customer/emailpass/register",
		body:   credentials{Email: email, Password: password},
	}, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", pkgerrors.New(pkgerrors.CodeUpstream, "backend returned empty registration token")
	}
	return resp.Token, nil
}

type customerResponse struct {
	Customer Customer `json:"customer"`
}

type CreateCustomerInput struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

func (c *Client) CreateCustomer(ctx context.Context, registrationToken string, input CreateCustomerInput) (*Customer, error) {
	var resp customerResponse
	if err := c.do(ctx, requestOptions{
		method:    http.MethodPost,
		path:      "/store/customers",
		body:      input,
		authToken: registrationToken,
	}, &resp); err != nil {
		return nil, err
	}
	return &resp.Customer, nil
}

func (c *Client) GetCustomer(ctx context.Context, token string) (*Customer, error) {
	var resp customerResponse
	if err := c.do(ctx, requestOptions{
		method:    http.MethodGet,
		path:      "/store/customers/me",
		authToken: token,
	}, &resp); err != nil {
		return nil, err
	}
	return &resp.Customer, nil
}
