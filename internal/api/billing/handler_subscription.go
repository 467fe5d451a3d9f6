package billing

import (
	"net/http"

	"saas-starter/internal/domain/plans"

	"github.com/gin-gonic/gin"
)

// GetSubscription returns the caller's billing projection. Plan reads as
// "free" when nothing was ever set.
func (h *Handler) GetSubscription(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}

	user, err := h.Store.FindByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	plan := user.SubscriptionPlan
	if plan == "" {
		plan = plans.PlanFree
	}

	c.JSON(http.StatusOK, gin.H{
		"plan":                 plan,
		"status":               user.SubscriptionStatus,
		"interval":             user.SubscriptionInterval,
		"currentPeriodEnd":     user.SubscriptionCurrentPeriodEnd,
		"stripeCustomerId":     user.StripeCustomerID,
		"stripeSubscriptionId": user.StripeSubscriptionID,
	})
}
