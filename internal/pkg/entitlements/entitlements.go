package entitlements

import "strings"

type Plan string

const (
	PlanFree     Plan = "free"
	PlanPro      Plan = "pro"
	PlanBusiness Plan = "business"
)

// Unlimited is the MaxCards sentinel for plans without a card cap.
const Unlimited = -1

// ParsePlan maps arbitrary plan strings to a known plan, defaulting to free.
func ParsePlan(plan string) Plan {
	switch strings.ToLower(strings.TrimSpace(plan)) {
	case string(PlanPro):
		return PlanPro
	case string(PlanBusiness):
		return PlanBusiness
	default:
		return PlanFree
	}
}

// MaxCards returns how many cards a plan may own, or Unlimited.
func MaxCards(plan Plan) int {
	switch plan {
	case PlanBusiness:
		return Unlimited
	case PlanPro:
		return 5
	default:
		return 1
	}
}

// CanCreateCard reports whether a user on the given plan may create another
// card when they already own `current` cards.
func CanCreateCard(plan Plan, current int) bool {
	limit := MaxCards(plan)
	if limit == Unlimited {
		return true
	}
	return current < limit
}
