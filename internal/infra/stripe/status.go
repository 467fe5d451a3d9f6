package stripe

import (
	"saas-starter/internal/domain/plans"

	"github.com/stripe/stripe-go/v75"
)

// NormalizeStatus folds Stripe's subscription status into the app's enum.
func NormalizeStatus(s stripe.SubscriptionStatus) string {
	switch s {
	case "":
		return plans.StatusNone
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		return plans.StatusActive
	case stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusUnpaid:
		return plans.StatusPastDue
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusIncompleteExpired:
		return plans.StatusCanceled
	default:
		return string(s)
	}
}
