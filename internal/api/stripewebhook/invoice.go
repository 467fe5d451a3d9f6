package stripewebhooks

import (
	"fmt"
	"time"

	"saas-starter/internal/domain/plans"
	stripeinfra "saas-starter/internal/infra/stripe"

	"github.com/stripe/stripe-go/v75"
)

// handleInvoicePaid refreshes status and period end after a successful
// payment. Status comes from a live fetch, defaulting to active when the
// invoice carries no fetchable subscription.
func (h *Handler) handleInvoicePaid(invoice *stripe.Invoice) error {
	subscriptionID := invoiceSubscriptionID(invoice)
	if subscriptionID == "" {
		return nil
	}

	updates := map[string]interface{}{}
	if invoice.Customer != nil && invoice.Customer.ID != "" {
		updates["stripe_customer_id"] = invoice.Customer.ID
	}

	status := plans.StatusActive
	sub, err := h.Billing.RetrieveSubscription(subscriptionID)
	if err == nil && sub != nil {
		status = stripeinfra.NormalizeStatus(sub.Status)
		if sub.CurrentPeriodEnd > 0 {
			updates["subscription_current_period_end"] = time.Unix(sub.CurrentPeriodEnd, 0)
		}
	}
	updates["subscription_status"] = status

	if err := h.Store.UpdateByStripeSubscriptionID(subscriptionID, updates); err != nil {
		return fmt.Errorf("failed to apply paid invoice for %s: %w", subscriptionID, err)
	}
	return nil
}

// handleInvoicePaymentFailed marks the subscription past due. Plan and
// interval stay untouched: access decisions belong to the guard, not here.
func (h *Handler) handleInvoicePaymentFailed(invoice *stripe.Invoice) error {
	subscriptionID := invoiceSubscriptionID(invoice)
	if subscriptionID == "" {
		return nil
	}

	updates := map[string]interface{}{
		"subscription_status": plans.StatusPastDue,
	}
	if invoice.Customer != nil && invoice.Customer.ID != "" {
		updates["stripe_customer_id"] = invoice.Customer.ID
	}

	if err := h.Store.UpdateByStripeSubscriptionID(subscriptionID, updates); err != nil {
		return fmt.Errorf("failed to apply failed invoice for %s: %w", subscriptionID, err)
	}
	return nil
}

func invoiceSubscriptionID(invoice *stripe.Invoice) string {
	if invoice == nil || invoice.Subscription == nil {
		return ""
	}
	return invoice.Subscription.ID
}
