// Package customers handles storefront account flows against the backend's
// emailpass auth. The gateway never stores credentials; it only brokers
// tokens and keeps the issued JWT in the session cookie.
package customers

import (
	"context"
	"strings"

	pkgerrors "github.com/verdantlane/storefront-gateway/pkg/errors"
	"github.com/verdantlane/storefront-gateway/pkg/logger"
	"github.com/verdantlane/storefront-gateway/pkg/medusa"
)

type authClient interface {
	Login(ctx context.Context, email, password string) (string, error)
	RegisterToken(ctx context.Context, email, password string) (string, error)
	CreateCustomer(ctx context.Context, registrationToken string, input medusa.CreateCustomerInput) (*medusa.Customer, error)
	GetCustomer(ctx context.Context, token string) (*medusa.Customer, error)
}

// RegisterInput carries the signup form fields.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// AuthResult pairs the authenticated customer with the token the cookie
// layer should persist.
type AuthResult struct {
	Customer *medusa.Customer
	Token    string
}

type Service interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Me(ctx context.Context, token string) (*medusa.Customer, error)
}

type service struct {
	client authClient
	logger *logger.Logger
}

func NewService(client authClient, logg *logger.Logger) Service {
	return &service{client: client, logger: logg}
}

func (s *service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}
	token, err := s.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	customer, err := s.client.GetCustomer(ctx, token)
	if err != nil {
		return nil, err
	}
	s.logger.Info(s.logger.WithField(ctx, "customer_id", customer.ID), "customer logged in")
	return &AuthResult{Customer: customer, Token: token}, nil
}

// Register runs the backend's three-step flow: registration token, customer
// creation, then a fresh login so the returned token is a customer token
// rather than the registration one.
func (s *service) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	input.Email = normalizeEmail(input.Email)
	if input.Email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	registrationToken, err := s.client.RegisterToken(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}
	if _, err := s.client.CreateCustomer(ctx, registrationToken, medusa.CreateCustomerInput{
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Phone:     input.Phone,
	}); err != nil {
		return nil, err
	}

	result, err := s.Login(ctx, input.Email, input.Password)
	if err != nil {
		// Account exists but the session could not start. The shopper can
		// log in manually, so surface that instead of a raw failure.
		return nil, pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "account created, please log in")
	}
	return result, nil
}

func (s *service) Me(ctx context.Context, token string) (*medusa.Customer, error) {
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "not logged in")
	}
	return s.client.GetCustomer(ctx, token)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
