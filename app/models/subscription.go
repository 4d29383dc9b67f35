package models

import "time"

// Subscription status values mirrored from the payment processor.
const (
	BillingStatusActive     = "active"
	BillingStatusTrialing   = "trialing"
	BillingStatusPastDue    = "past_due"
	BillingStatusCanceled   = "canceled"
	BillingStatusIncomplete = "incomplete"
	BillingStatusUnpaid     = "unpaid"
	BillingStatusPaused     = "paused"
)

const BillingProviderStripe = "stripe"

// Subscription mirrors a user's Stripe subscription state. There is at most
// one row per user; writes are upserts keyed on the user_id unique index and
// cancellation is a status transition, never a row delete.
type Subscription struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	UserID               uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	StripeCustomerID     string     `gorm:"type:varchar(191);not null;index" json:"stripe_customer_id"`
	StripeSubscriptionID string     `gorm:"type:varchar(191);not null;index" json:"stripe_subscription_id"`
	Status               string     `gorm:"type:varchar(32);not null;default:'active'" json:"status"`
	Plan                 string     `gorm:"type:varchar(50);not null;default:'free'" json:"plan"`
	CurrentPeriodEnd     *time.Time `gorm:"type:timestamp;default:null" json:"current_period_end,omitempty"`
	CreatedAt            time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
