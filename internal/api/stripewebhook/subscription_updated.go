package stripewebhooks

import (
	"fmt"
	"time"

	stripeinfra "saas-starter/internal/infra/stripe"

	"github.com/stripe/stripe-go/v75"
)

// handleSubscriptionUpdated refreshes status, period end and interval on every
// record holding the subscription id. Joining on the external id is
// deliberate: updates fired by Stripe's own billing cycle never carry the
// internal user id.
func (h *Handler) handleSubscriptionUpdated(sub *stripe.Subscription) error {
	if sub.ID == "" {
		return nil
	}

	updates := map[string]interface{}{
		"subscription_status": stripeinfra.NormalizeStatus(sub.Status),
	}
	if sub.Customer != nil && sub.Customer.ID != "" {
		updates["stripe_customer_id"] = sub.Customer.ID
	}
	if sub.CurrentPeriodEnd > 0 {
		updates["subscription_current_period_end"] = time.Unix(sub.CurrentPeriodEnd, 0)
	}
	if interval := stripeinfra.IntervalFromSubscription(sub); interval != "" {
		updates["subscription_interval"] = interval
	}

	if err := h.Store.UpdateByStripeSubscriptionID(sub.ID, updates); err != nil {
		return fmt.Errorf("failed to apply subscription update %s: %w", sub.ID, err)
	}
	return nil
}
