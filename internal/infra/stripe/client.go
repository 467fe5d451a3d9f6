package stripe

import (
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/client"
	"github.com/stripe/stripe-go/v75/webhook"
)

// Client implements Provider over the real Stripe API.
type Client struct {
	api           *client.API
	webhookSecret string
}

func NewClient(secretKey, webhookSecret string) *Client {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Client{api: api, webhookSecret: webhookSecret}
}

func (c *Client) VerifyNotification(payload []byte, signatureHeader string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(
		payload,
		signatureHeader,
		c.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
}

func (c *Client) RetrieveSubscription(id string) (*stripe.Subscription, error) {
	return c.api.Subscriptions.Get(id, nil)
}

func (c *Client) UpdateSubscriptionItemPrice(subscriptionID, itemID, priceID string) (*stripe.Subscription, error) {
	return c.api.Subscriptions.Update(subscriptionID, &stripe.SubscriptionParams{
		Items: []*stripe.SubscriptionItemsParams{
			{
				ID:    stripe.String(itemID),
				Price: stripe.String(priceID),
			},
		},
		ProrationBehavior: stripe.String("create_prorations"),
	})
}

func (c *Client) CancelAtPeriodEnd(subscriptionID string) (*stripe.Subscription, error) {
	return c.api.Subscriptions.Update(subscriptionID, &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	})
}

func (c *Client) CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return c.api.CheckoutSessions.New(params)
}
