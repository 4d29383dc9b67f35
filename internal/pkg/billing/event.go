package billing

import (
	"encoding/json"
	"strconv"
)

// EventCheckoutSessionCompleted is the only Stripe event type this system
// acts on; everything else is acknowledged and ignored.
const EventCheckoutSessionCompleted = "checkout.session.completed"

// CheckoutCompleted carries the three identifiers extracted from a completed
// checkout session payload.
type CheckoutCompleted struct {
	UserID         uint
	CustomerID     string
	SubscriptionID string
}

// ParseCheckoutCompleted decodes the data.object of a checkout.session.completed
// event. It returns ok=false whenever the payload is not actionable: missing
// client_reference_id, a customer/subscription that is not a plain string id
// (e.g. an expanded object), or a reference id that is not one of our user ids.
// Callers acknowledge such deliveries without a write; they are data-shape
// conditions the processor would otherwise retry forever.
func ParseCheckoutCompleted(raw []byte) (CheckoutCompleted, bool) {
	var payload struct {
		ClientReferenceID string          `json:"client_reference_id"`
		Customer          json.RawMessage `json:"customer"`
		Subscription      json.RawMessage `json:"subscription"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return CheckoutCompleted{}, false
	}

	userID, err := strconv.ParseUint(payload.ClientReferenceID, 10, 32)
	if err != nil || userID == 0 {
		return CheckoutCompleted{}, false
	}

	customerID, ok := scalarID(payload.Customer)
	if !ok {
		return CheckoutCompleted{}, false
	}
	subscriptionID, ok := scalarID(payload.Subscription)
	if !ok {
		return CheckoutCompleted{}, false
	}

	return CheckoutCompleted{
		UserID:         uint(userID),
		CustomerID:     customerID,
		SubscriptionID: subscriptionID,
	}, true
}

// scalarID accepts only a non-empty JSON string. Expanded objects, null and
// absent fields all fail.
func scalarID(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	if s == "" {
		return "", false
	}
	return s, true
}
