package plans

// Plan constants (single source of truth)
const (
	PlanFree  = "free"
	PlanPro   = "pro"
	PlanUltra = "ultra"
)

// Interval constants
const (
	IntervalMonthly = "monthly"
	IntervalYearly  = "yearly"
)

// Subscription status values stored on the user record
const (
	StatusNone     = "none"
	StatusActive   = "active"
	StatusPastDue  = "past_due"
	StatusCanceled = "canceled"
)

func IsValidPaidPlan(plan string) bool {
	return plan == PlanPro || plan == PlanUltra
}

func IsValidInterval(interval string) bool {
	return interval == IntervalMonthly || interval == IntervalYearly
}
