package stripe

import (
	"saas-starter/internal/domain/plans"

	"github.com/stripe/stripe-go/v75"
)

// MapInterval converts Stripe's recurrence interval to the app's.
// Unknown intervals (week, day) map to empty.
func MapInterval(i stripe.PriceRecurringInterval) string {
	switch i {
	case stripe.PriceRecurringIntervalMonth:
		return plans.IntervalMonthly
	case stripe.PriceRecurringIntervalYear:
		return plans.IntervalYearly
	default:
		return ""
	}
}

// IntervalFromSubscription derives the interval from the first billed item's
// recurrence, empty when the subscription carries no priced item.
func IntervalFromSubscription(sub *stripe.Subscription) string {
	if sub == nil || sub.Items == nil || len(sub.Items.Data) == 0 {
		return ""
	}
	price := sub.Items.Data[0].Price
	if price == nil || price.Recurring == nil {
		return ""
	}
	return MapInterval(price.Recurring.Interval)
}
