package entitlements

import "testing"

func TestParsePlan(t *testing.T) {
	tests := []struct {
		in   string
		want Plan
	}{
		{in: "free", want: PlanFree},
		{in: "pro", want: PlanPro},
		{in: "business", want: PlanBusiness},
		{in: "PRO", want: PlanPro},
		{in: "  business ", want: PlanBusiness},
		{in: "enterprise", want: PlanFree},
		{in: "", want: PlanFree},
	}

	for _, tt := range tests {
		if got := ParsePlan(tt.in); got != tt.want {
			t.Fatalf("ParsePlan(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMaxCards(t *testing.T) {
	if got := MaxCards(PlanFree); got != 1 {
		t.Fatalf("free plan limit = %d, want 1", got)
	}
	if got := MaxCards(PlanPro); got != 5 {
		t.Fatalf("pro plan limit = %d, want 5", got)
	}
	if got := MaxCards(PlanBusiness); got != Unlimited {
		t.Fatalf("business plan limit = %d, want unlimited", got)
	}
}

func TestCanCreateCard(t *testing.T) {
	if !CanCreateCard(PlanFree, 0) {
		t.Fatalf("free plan with no cards should be allowed to create")
	}
	if CanCreateCard(PlanFree, 1) {
		t.Fatalf("free plan at limit should be blocked")
	}
	if CanCreateCard(PlanPro, 5) {
		t.Fatalf("pro plan at limit should be blocked")
	}
	if !CanCreateCard(PlanBusiness, 10000) {
		t.Fatalf("business plan should never be blocked")
	}
}
