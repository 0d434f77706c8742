// Package mailer talks to the transactional email provider. Only the contact
// upsert used by newsletter signup is wrapped; campaign sending stays in the
// provider's dashboard.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/verdantlane/storefront-gateway/pkg/config"
	pkgerrors "github.com/verdantlane/storefront-gateway/pkg/errors"
	"github.com/verdantlane/storefront-gateway/pkg/logger"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	audienceID string
	from       string
	logger     *logger.Logger
}

func NewClient(cfg config.NewsletterConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errors.New("mailer logger is required")
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("email provider api key is required")
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     apiKey,
		audienceID: cfg.AudienceID,
		from:       cfg.FromAddress,
		logger:     logg,
	}, nil
}

type contactInput struct {
	Email        string `json:"email"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	Unsubscribed bool   `json:"unsubscribed"`
}

type contactResponse struct {
	ID string `json:"id"`
}

// Subscribe upserts the address into the configured audience. The provider
// treats a repeated email as an update, so the call is naturally idempotent.
func (c *Client) Subscribe(ctx context.Context, email, firstName string) (string, error) {
	payload, err := json.Marshal(contactInput{
		Email:     email,
		FirstName: firstName,
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding contact")
	}

	endpoint := fmt.Sprintf("%s/audiences/%s/contacts", c.baseURL, c.audienceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building contact request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "subscribing contact")
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusUnprocessableEntity || resp.StatusCode == http.StatusBadRequest {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "email address rejected by provider")
	}
	if resp.StatusCode >= 400 {
		return "", pkgerrors.New(pkgerrors.CodeUpstream,
			fmt.Sprintf("email provider returned %d", resp.StatusCode))
	}

	var decoded contactResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeUpstream, err, "decoding provider response")
	}
	return decoded.ID, nil
}
