package billing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"github.com/clickcard/clickcard/internal/pkg/entitlements"
	"github.com/clickcard/clickcard/internal/pkg/env"
)

// Config carries the Stripe credentials and product settings for one process.
// Values come from the environment; missing values surface as request-time
// errors in the handlers, not process crashes.
type Config struct {
	SecretKey       string
	WebhookSecret   string
	PriceID         string
	BusinessPriceID string
	AppURL          string
}

// ConfigFromEnv reads the Stripe configuration surface.
func ConfigFromEnv() Config {
	return Config{
		SecretKey:       strings.TrimSpace(env.GetEnv("STRIPE_SECRET_KEY", "")),
		WebhookSecret:   strings.TrimSpace(env.GetEnv("STRIPE_WEBHOOK_SECRET", "")),
		PriceID:         strings.TrimSpace(env.GetEnv("STRIPE_PRICE_ID", "")),
		BusinessPriceID: strings.TrimSpace(env.GetEnv("STRIPE_BUSINESS_PRICE_ID", "")),
		AppURL:          strings.TrimRight(env.GetEnv("APP_URL", "http://localhost:4000"), "/"),
	}
}

// PlanForPrice maps a Stripe price to the plan it entitles. The standard
// checkout price sells pro; an optional second price sells business.
func (cfg Config) PlanForPrice(priceID string) entitlements.Plan {
	if cfg.BusinessPriceID != "" && priceID == cfg.BusinessPriceID {
		return entitlements.PlanBusiness
	}
	return entitlements.PlanPro
}

// StripeClient wraps the Stripe API client for checkout-session creation and
// subscription lookup. One client per process (or per request in handlers that
// build it lazily from env).
type StripeClient struct {
	api *client.API
	cfg Config
}

// NewStripeClient builds a client with an explicit config.
func NewStripeClient(cfg Config) *StripeClient {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	return &StripeClient{api: api, cfg: cfg}
}

// NewStripeClientFromEnv builds a client from the process environment.
func NewStripeClientFromEnv() *StripeClient {
	return NewStripeClient(ConfigFromEnv())
}

// Config exposes the client's configuration (price-to-plan mapping, app URL).
func (s *StripeClient) Config() Config {
	return s.cfg
}

// CreateCheckoutSession creates a subscription-mode hosted checkout session
// scoped to the caller. No local state is written; the session only becomes
// relevant once the processor reports it completed via webhook.
func (s *StripeClient) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error) {
	if s.cfg.SecretKey == "" {
		return nil, errors.New("billing: stripe secret key is not configured")
	}
	if s.cfg.PriceID == "" {
		return nil, errors.New("billing: stripe price id is not configured")
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		ClientReferenceID: stripe.String(strconv.FormatUint(uint64(p.UserID), 10)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.cfg.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.cfg.AppURL + "/success"),
		CancelURL:  stripe.String(s.cfg.AppURL + "/cancel"),
	}
	params.Context = ctx
	if p.Email != "" {
		params.CustomerEmail = stripe.String(p.Email)
	}

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("billing: create stripe checkout session: %w", err)
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// FetchSubscription retrieves the authoritative subscription state. The
// webhook payload only carries identifiers, so status and period end come
// from this lookup. In the current Stripe API the period end lives on the
// subscription items; the latest one wins.
func (s *StripeClient) FetchSubscription(ctx context.Context, id string) (*SubscriptionState, error) {
	if s.cfg.SecretKey == "" {
		return nil, errors.New("billing: stripe secret key is not configured")
	}

	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	sub, err := s.api.Subscriptions.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("billing: fetch stripe subscription %s: %w", id, err)
	}

	state := &SubscriptionState{
		ID:     sub.ID,
		Status: string(sub.Status),
	}
	if sub.Customer != nil {
		state.CustomerID = sub.Customer.ID
	}
	if sub.Items != nil {
		for _, item := range sub.Items.Data {
			if item == nil {
				continue
			}
			if item.CurrentPeriodEnd > state.CurrentPeriodEnd {
				state.CurrentPeriodEnd = item.CurrentPeriodEnd
			}
			if state.PriceID == "" && item.Price != nil {
				state.PriceID = item.Price.ID
			}
		}
	}
	return state, nil
}
