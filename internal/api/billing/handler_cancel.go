package billing

import (
	"net/http"

	"saas-starter/internal/domain/plans"

	"github.com/gin-gonic/gin"
)

// CancelSubscription schedules cancellation at period end. The local status
// flips to canceled immediately even though Stripe keeps the subscription
// active until the period boundary; the user keeps access until then.
func (h *Handler) CancelSubscription(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}

	var body struct {
		Action string `json:"action" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Action != "cancel" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action"})
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
		c.JSON(http.StatusBadRequest, gin.H{"error": "Already on free plan"})
		return
	}

	if _, err := h.Billing.CancelAtPeriodEnd(*user.StripeSubscriptionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel subscription"})
		return
	}

	if err := h.Store.Update(user.ID, map[string]interface{}{
		"subscription_status": plans.StatusCanceled,
	}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user in DB"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Subscription will be canceled at the end of the current billing period",
	})
}
