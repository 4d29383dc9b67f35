package controllers

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/clickcard/clickcard/app/models"
	"github.com/clickcard/clickcard/internal/pkg/billing"
	"github.com/clickcard/clickcard/internal/pkg/database"
	"github.com/clickcard/clickcard/internal/pkg/entitlements"
)

// billingService is the slice of billing.Service the controllers need,
// kept as an interface so tests can swap in fakes.
type billingService interface {
	ApplyCheckoutCompleted(ctx context.Context, in billing.SubscriptionUpdate) (*models.Subscription, error)
	PlanForUser(ctx context.Context, userID uint) entitlements.Plan
	RecordWebhookEvent(ctx context.Context, in billing.WebhookEventInput) (bool, *models.BillingWebhookEvent, error)
	MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error
}

// Overridable in tests
var (
	newBillingService = func() billingService {
		return billing.NewServiceFromDB(database.GetDB())
	}
	newSubscriptionFetcher = func() billing.SubscriptionFetcher {
		return billing.NewStripeClientFromEnv()
	}
	newCheckoutCreator = func() billing.CheckoutCreator {
		return billing.NewStripeClientFromEnv()
	}
)

// HandleCreateCheckoutSession starts a hosted checkout for the authenticated
// user and returns the redirect URL.
func HandleCreateCheckoutSession(c *fiber.Ctx) error {
	userCtx := currentUser(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	sess, err := newCheckoutCreator().CreateCheckoutSession(ctx, billing.CheckoutParams{
		UserID: userCtx.UserID,
		Email:  userCtx.Email,
	})
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "checkout_failed", "could not create checkout session")
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"url": sess.URL})
}

// HandleStripeWebhook receives billing events from Stripe. The signature over
// the raw body is the authentication mechanism for this endpoint. Any 2xx
// tells Stripe the event is done, any 5xx makes Stripe redeliver, so the
// status code doubles as the retry protocol.
func HandleStripeWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)

	signature := strings.TrimSpace(c.Get("Stripe-Signature"))
	if signature == "" {
		return c.Status(fiber.StatusBadRequest).SendString("Missing stripe-signature")
	}

	cfg := billing.ConfigFromEnv()
	if cfg.WebhookSecret == "" {
		return c.Status(fiber.StatusBadRequest).SendString("Webhook Error: missing signing secret")
	}

	event, err := webhook.ConstructEventWithOptions(rawBody, signature, cfg.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Webhook Error: " + err.Error())
	}

	if database.GetDB() == nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Server Error: datastore unavailable")
	}

	svc := newBillingService()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	created, stored, err := svc.RecordWebhookEvent(ctx, billing.WebhookEventInput{
		Provider:        models.BillingProviderStripe,
		ProviderEventID: event.ID,
		EventType:       string(event.Type),
		PayloadJSON:     string(rawBody),
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Server Error: " + err.Error())
	}
	// Only short-circuit redeliveries that already succeeded. A stored event
	// whose previous attempt failed must run again so a 500 stays retryable.
	if !created && stored.Processed() {
		return c.Status(fiber.StatusOK).SendString("ok")
	}

	if string(event.Type) != billing.EventCheckoutSessionCompleted {
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, nil)
		return c.Status(fiber.StatusOK).SendString("ok")
	}

	completed, ok := billing.ParseCheckoutCompleted(event.Data.Raw)
	if !ok {
		// Malformed or foreign sessions are absorbed, Stripe must not retry them.
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, nil)
		return c.Status(fiber.StatusOK).SendString("ok")
	}

	state, err := newSubscriptionFetcher().FetchSubscription(ctx, completed.SubscriptionID)
	if err != nil {
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, err)
		return c.Status(fiber.StatusInternalServerError).SendString("Server Error: " + err.Error())
	}

	customerID := completed.CustomerID
	if state.CustomerID != "" {
		customerID = state.CustomerID
	}

	_, applyErr := svc.ApplyCheckoutCompleted(ctx, billing.SubscriptionUpdate{
		UserID:         completed.UserID,
		CustomerID:     customerID,
		SubscriptionID: completed.SubscriptionID,
		Status:         state.Status,
		Plan:           string(cfg.PlanForPrice(state.PriceID)),
		PeriodEndUnix:  state.CurrentPeriodEnd,
	})
	_ = svc.MarkWebhookProcessed(ctx, stored.ID, applyErr)
	if applyErr != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Server Error: " + applyErr.Error())
	}

	return c.Status(fiber.StatusOK).SendString("ok")
}

// HandleBillingStatus returns the authenticated user's effective plan.
func HandleBillingStatus(c *fiber.Ctx) error {
	userCtx := currentUser(c)
	if !userCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	plan := newBillingService().PlanForUser(ctx, userCtx.UserID)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"plan":      string(plan),
		"max_cards": entitlements.MaxCards(plan),
	})
}
