// Package newsletter upserts storefront signups into the configured email
// provider audience.
package newsletter

import (
	"context"
	"net/mail"
	"strings"

	pkgerrors "github.com/verdantlane/storefront-gateway/pkg/errors"
	"github.com/verdantlane/storefront-gateway/pkg/logger"
)

type mailerClient interface {
	Subscribe(ctx context.Context, email, firstName string) (string, error)
}

type Service interface {
	Subscribe(ctx context.Context, email, firstName string) error
}

type service struct {
	client mailerClient
	logger *logger.Logger
}

// NewService accepts a nil client when no email provider is configured;
// signups are then acknowledged but dropped.
func NewService(client mailerClient, logg *logger.Logger) Service {
	return &service{client: client, logger: logg}
}

func (s *service) Subscribe(ctx context.Context, email, firstName string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "a valid email address is required")
	}

	if s.client == nil {
		s.logger.Warn(ctx, "newsletter provider not configured, signup dropped")
		return nil
	}

	contactID, err := s.client.Subscribe(ctx, email, strings.TrimSpace(firstName))
	if err != nil {
		return err
	}
	s.logger.Info(s.logger.WithField(ctx, "contact_id", contactID), "newsletter signup stored")
	return nil
}
