package stripewebhooks

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"saas-starter/internal/domain/plans"
	stripeinfra "saas-starter/internal/infra/stripe"

	"github.com/stripe/stripe-go/v75"
)

// handleCheckoutCompleted activates a fresh subscription on the user named in
// the session metadata. Plan and interval come from the metadata written at
// session creation; status and period end come from a live fetch of the
// subscription so a stale nested object in the event cannot win.
func (h *Handler) handleCheckoutCompleted(session *stripe.CheckoutSession) error {
	userID, err := userIDFromSessionOrRef(session)
	if err != nil {
		// No user reference at all: nothing to reconcile, ack so Stripe
		// does not retry forever.
		return nil
	}

	user, err := h.Store.FindByID(userID)
	if err != nil {
		return fmt.Errorf("user not found for checkout session %s: %w", session.ID, err)
	}

	updates := map[string]interface{}{}

	if session.Customer != nil && session.Customer.ID != "" {
		updates["stripe_customer_id"] = session.Customer.ID
	}

	subscriptionID := ""
	if session.Subscription != nil {
		subscriptionID = session.Subscription.ID
	}

	plan := session.Metadata["plan"]
	interval := session.Metadata["interval"]

	status := plans.StatusActive
	if subscriptionID != "" {
		updates["stripe_subscription_id"] = subscriptionID

		sub, err := h.Billing.RetrieveSubscription(subscriptionID)
		if err == nil && sub != nil {
			status = stripeinfra.NormalizeStatus(sub.Status)
			if sub.CurrentPeriodEnd > 0 {
				updates["subscription_current_period_end"] = time.Unix(sub.CurrentPeriodEnd, 0)
			}
			// Live recurrence beats the metadata copy when present.
			if live := stripeinfra.IntervalFromSubscription(sub); live != "" {
				interval = live
			}
		}
	}
	updates["subscription_status"] = status

	if plans.IsValidPaidPlan(plan) {
		updates["subscription_plan"] = plan
		if plans.IsValidInterval(interval) {
			updates["subscription_interval"] = interval
		}
	}

	if err := h.Store.Update(user.ID, updates); err != nil {
		return fmt.Errorf("failed to update user after checkout: %w", err)
	}
	return nil
}

// userIDFromSessionOrRef prefers metadata.userId, falling back to the
// client reference id set at session creation.
func userIDFromSessionOrRef(session *stripe.CheckoutSession) (uint, error) {
	idStr := session.Metadata["userId"]
	if idStr == "" {
		idStr = session.ClientReferenceID
	}
	if idStr == "" {
		return 0, errors.New("missing userId (metadata.userId or client_reference_id)")
	}

	id64, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid userId %q: %w", idStr, err)
	}
	return uint(id64), nil
}
