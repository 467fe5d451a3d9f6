package billing

import (
	"fmt"
	"net/http"

	"saas-starter/internal/domain/plans"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
)

// CreateCheckoutSession starts a Stripe Checkout flow for a paid plan. The
// user id is carried in both the session metadata and the client reference id
// so the checkout.session.completed webhook can join back to the user.
func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}

	var body struct {
		Plan     string `json:"plan" binding:"required"`
		Interval string `json:"interval" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid plan/interval"})
		return
	}
	if !plans.IsValidPaidPlan(body.Plan) || !plans.IsValidInterval(body.Interval) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid plan/interval"})
		return
	}

	user, err := h.Store.FindByID(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	priceID, err := h.Prices.Resolve(body.Plan, body.Interval)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Price configuration missing"})
		return
	}

	successURL := fmt.Sprintf("%s/pricing?success=1&plan=%s", h.AppURL, body.Plan)
	cancelURL := h.AppURL + "/pricing?canceled=1"

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		CustomerEmail: stripe.String(user.Email),
		SuccessURL:    stripe.String(successURL),
		CancelURL:     stripe.String(cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
		AllowPromotionCodes: stripe.Bool(true),
		ClientReferenceID:   stripe.String(fmt.Sprint(user.ID)),
		Metadata: map[string]string{
			"userId":   fmt.Sprint(user.ID),
			"plan":     body.Plan,
			"interval": body.Interval,
		},
	}

	session, err := h.Billing.CreateCheckoutSession(params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to create checkout session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": session.URL})
}
