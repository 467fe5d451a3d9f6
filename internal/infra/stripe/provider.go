package stripe

import (
	"github.com/stripe/stripe-go/v75"
)

// Provider is the slice of the Stripe API the billing handlers and the
// webhook reconciler depend on. It is injected as an explicit handle so the
// core stays testable against a fake.
type Provider interface {
	// VerifyNotification checks the webhook signature over the exact raw
	// payload bytes and returns the parsed event.
	VerifyNotification(payload []byte, signatureHeader string) (stripe.Event, error)
	RetrieveSubscription(id string) (*stripe.Subscription, error)
	// UpdateSubscriptionItemPrice swaps the subscription's billed item to a
	// new price with prorations.
	UpdateSubscriptionItemPrice(subscriptionID, itemID, priceID string) (*stripe.Subscription, error)
	// CancelAtPeriodEnd flags the subscription to end at the current period
	// boundary instead of immediately.
	CancelAtPeriodEnd(subscriptionID string) (*stripe.Subscription, error)
	CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}
