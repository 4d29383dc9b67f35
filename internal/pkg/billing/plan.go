package billing

import (
	"strings"

	"github.com/clickcard/clickcard/internal/pkg/entitlements"
)

// IsEntitlingStatus reports whether a subscription status grants the paid plan.
// past_due keeps access during the grace period, matching the processor's own
// dunning behavior.
func IsEntitlingStatus(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "active", "trialing", "past_due":
		return true
	default:
		return false
	}
}

// EffectivePlan gates a stored plan by subscription status: a non-entitling
// status always downgrades to free.
func EffectivePlan(status string, plan entitlements.Plan) entitlements.Plan {
	if !IsEntitlingStatus(status) {
		return entitlements.PlanFree
	}
	return entitlements.ParsePlan(string(plan))
}
