package billing

import (
	"fmt"
	"net/http"
	"time"

	"saas-starter/internal/domain/plans"
	stripeinfra "saas-starter/internal/infra/stripe"

	"github.com/gin-gonic/gin"
)

// ChangePlan moves an existing subscriber to another paid plan or interval
// by swapping the subscription's single billed item, prorated by Stripe.
// This is a synchronous read-modify-write against Stripe; a concurrent
// webhook for the same user can race it and the later persisted write wins.
func (h *Handler) ChangePlan(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}

	var body struct {
		NewPlan     string `json:"newPlan" binding:"required"`
		NewInterval string `json:"newInterval" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid newPlan/newInterval"})
		return
	}
	if !plans.IsValidPaidPlan(body.NewPlan) || !plans.IsValidInterval(body.NewInterval) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid newPlan/newInterval"})
		return
	}

	user, err := h.Store.FindByID(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}

	if user.StripeSubscriptionID == nil || *user.StripeSubscriptionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No active subscription found"})
		return
	}
	if user.SubscriptionPlan == plans.PlanFree {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot change plan from free tier. Please subscribe first."})
		return
	}
	if user.SubscriptionPlan == body.NewPlan &&
		user.SubscriptionInterval != nil && *user.SubscriptionInterval == body.NewInterval {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You are already on this plan"})
		return
	}

	newPriceID, err := h.Prices.Resolve(body.NewPlan, body.NewInterval)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Price configuration missing"})
		return
	}

	sub, err := h.Billing.RetrieveSubscription(*user.StripeSubscriptionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch Stripe subscription"})
		return
	}
	if sub.Items == nil || len(sub.Items.Data) == 0 {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Subscription has no price item"})
		return
	}

	updatedSub, err := h.Billing.UpdateSubscriptionItemPrice(sub.ID, sub.Items.Data[0].ID, newPriceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change subscription plan"})
		return
	}

	status := stripeinfra.NormalizeStatus(updatedSub.Status)
	periodEnd := time.Unix(updatedSub.CurrentPeriodEnd, 0)

	if err := h.Store.Update(user.ID, map[string]interface{}{
		"subscription_plan":               body.NewPlan,
		"subscription_interval":           body.NewInterval,
		"subscription_status":             status,
		"subscription_current_period_end": periodEnd,
	}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user in DB"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Successfully changed plan to %s (%s)", body.NewPlan, body.NewInterval),
		"subscription": gin.H{
			"plan":             body.NewPlan,
			"interval":         body.NewInterval,
			"status":           status,
			"currentPeriodEnd": periodEnd,
		},
	})
}
