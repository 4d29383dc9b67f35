package billing

import (
	"context"
	"time"
)

// SubscriptionUpdate is the normalized input for the subscription upsert after
// a completed checkout has been enriched with remote subscription state.
type SubscriptionUpdate struct {
	UserID         uint
	CustomerID     string
	SubscriptionID string
	Status         string
	Plan           string
	PeriodEndUnix  int64
}

// SubscriptionState is the authoritative remote subscription state fetched
// from the payment processor during webhook enrichment.
type SubscriptionState struct {
	ID               string
	CustomerID       string
	Status           string
	PriceID          string
	CurrentPeriodEnd int64
}

// CheckoutParams identifies the caller a hosted checkout session is created for.
type CheckoutParams struct {
	UserID uint
	Email  string
}

// CheckoutSession is the processor-side session a caller gets redirected to.
type CheckoutSession struct {
	ID  string
	URL string
}

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
}

// SubscriptionFetcher retrieves remote subscription state by id.
type SubscriptionFetcher interface {
	FetchSubscription(ctx context.Context, id string) (*SubscriptionState, error)
}

// CheckoutCreator creates remote hosted-checkout sessions.
type CheckoutCreator interface {
	CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error)
}

// TimeFromUnix converts unix seconds into a timestamp pointer. Zero or
// negative input means "unset" and maps to nil, never to the epoch.
func TimeFromUnix(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}
