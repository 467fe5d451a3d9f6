package stripewebhooks

import (
	"fmt"

	"saas-starter/internal/domain/plans"

	"github.com/stripe/stripe-go/v75"
)

// handleSubscriptionDeleted drops every matching record back to the free
// tier. The subscription id is cleared so a late event for the old id can no
// longer touch this user; the customer id is kept for future checkouts.
func (h *Handler) handleSubscriptionDeleted(sub *stripe.Subscription) error {
	if sub.ID == "" {
		return nil
	}

	updates := map[string]interface{}{
		"subscription_status":    plans.StatusCanceled,
		"subscription_plan":      plans.PlanFree,
		"subscription_interval":  nil,
		"stripe_subscription_id": nil,
	}

	if err := h.Store.UpdateByStripeSubscriptionID(sub.ID, updates); err != nil {
		return fmt.Errorf("failed to apply subscription deletion %s: %w", sub.ID, err)
	}
	return nil
}
