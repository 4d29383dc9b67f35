package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/clickcard/clickcard/app/models"
	"github.com/clickcard/clickcard/internal/pkg/entitlements"
	"gorm.io/gorm"
)

// Service provides subscription reconciliation and webhook bookkeeping.
type Service struct {
	repo Repository
}

// NewService creates a billing service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// ApplyCheckoutCompleted upserts the caller's subscription row from an
// enriched completed-checkout event. The write is idempotent: redelivering
// the same event produces the same final record.
func (s *Service) ApplyCheckoutCompleted(ctx context.Context, in SubscriptionUpdate) (*models.Subscription, error) {
	_ = ctx
	if in.UserID == 0 || strings.TrimSpace(in.CustomerID) == "" || strings.TrimSpace(in.SubscriptionID) == "" {
		return nil, errors.New("user_id, customer_id and subscription_id are required")
	}

	status := strings.ToLower(strings.TrimSpace(in.Status))
	if status == "" {
		status = models.BillingStatusActive
	}
	plan := entitlements.ParsePlan(in.Plan)

	sub := &models.Subscription{
		UserID:               in.UserID,
		StripeCustomerID:     strings.TrimSpace(in.CustomerID),
		StripeSubscriptionID: strings.TrimSpace(in.SubscriptionID),
		Status:               status,
		Plan:                 string(plan),
		CurrentPeriodEnd:     TimeFromUnix(in.PeriodEndUnix),
	}
	if err := s.repo.UpsertSubscription(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// PlanForUser resolves the user's effective plan from the subscription table.
// Missing rows and lookup failures degrade to the free plan.
func (s *Service) PlanForUser(ctx context.Context, userID uint) entitlements.Plan {
	_ = ctx
	if userID == 0 {
		return entitlements.PlanFree
	}
	sub, err := s.repo.GetSubscriptionByUserID(userID)
	if err != nil {
		return entitlements.PlanFree
	}
	return EffectivePlan(sub.Status, entitlements.ParsePlan(sub.Plan))
}

// RecordWebhookEvent persists webhook payloads idempotently. Events without a
// provider event id are keyed by a payload hash.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.BillingWebhookEvent, error) {
	_ = ctx
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return false, nil, errors.New("provider is required")
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.BillingWebhookEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		PayloadJSON:     in.PayloadJSON,
	}
	return s.repo.CreateWebhookEventIfNotExists(event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(webhookEventID, errMsg)
}
