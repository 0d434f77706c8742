package newsletter

import (
	"context"
	"testing"

	pkgerrors "github.com/verdantlane/storefront-gateway/pkg/errors"
	"github.com/verdantlane/storefront-gateway/pkg/logger"
)

type fakeMailer struct {
	email     string
	firstName string
	err       error
	calls     int
}

func (f *fakeMailer) Subscribe(_ context.Context, email, firstName string) (string, error) {
	f.calls++
	f.email = email
	f.firstName = firstName
	if f.err != nil {
		return "", f.err
	}
	return "contact_1", nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test"})
}

func TestSubscribe_NormalizesEmail(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewService(mailer, testLogger())

	if err := svc.Subscribe(context.Background(), "  Basil@Example.com ", " Basil "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mailer.email != "basil@example.com" || mailer.firstName != "Basil" {
		t.Fatalf("unexpected subscription: %q %q", mailer.email, mailer.firstName)
	}
}

func TestSubscribe_RejectsInvalidEmail(t *testing.T) {
	mailer := &fakeMailer{}
	svc := NewService(mailer, testLogger())

	for _, email := range []string{"", "not-an-email", "missing@domain @example.com"} {
		err := svc.Subscribe(context.Background(), email, "")
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("email %q: expected validation error, got %v", email, err)
		}
	}
	if mailer.calls != 0 {
		t.Fatalf("provider must not be called for invalid input, got %d calls", mailer.calls)
	}
}

func TestSubscribe_ProviderErrorPropagates(t *testing.T) {
	mailer := &fakeMailer{err: pkgerrors.New(pkgerrors.CodeUpstream, "provider unavailable")}
	svc := NewService(mailer, testLogger())

	err := svc.Subscribe(context.Background(), "basil@example.com", "")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUpstream {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestSubscribe_NoProviderConfigured(t *testing.T) {
	svc := NewService(nil, testLogger())

	if err := svc.Subscribe(context.Background(), "basil@example.com", ""); err != nil {
		t.Fatalf("expected signup to be acknowledged without a provider, got %v", err)
	}
}
