package users

import (
	"net/http"

	"saas-starter/config"
	"saas-starter/database"
	"saas-starter/internal/domain/plans"
	"saas-starter/internal/domain/users"

	"github.com/gin-gonic/gin"
)

func GetCurrentUser(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user users.User
	if err := database.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	plan := user.SubscriptionPlan
	if plan == "" {
		plan = plans.PlanFree
	}

	resp := MeResponse{
		User: UserDTO{
			ID:         user.ID,
			Email:      user.Email,
			Name:       user.Name,
			Role:       user.Role,
			IsVerified: user.IsVerified,
		},
		Billing: BillingDTO{
			Plan:             plan,
			Interval:         user.SubscriptionInterval,
			Status:           user.SubscriptionStatus,
			CurrentPeriodEnd: user.SubscriptionCurrentPeriodEnd,
		},
	}

	c.JSON(http.StatusOK, resp)
}

func UpdateProfile(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var body struct {
		Name  string `json:"name" binding:"required,max=100"`
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid name or email"})
		return
	}

	// Reject emails already held by a different account.
	var existing users.User
	if err := database.DB.Where("email = ?", body.Email).First(&existing).Error; err == nil && existing.ID != userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is already taken by another account"})
		return
	}

	if err := database.DB.Model(&users.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"name":  body.Name,
			"email": body.Email,
		}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}

func VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing token"})
		return
	}

	var t users.VerificationToken
	if err := database.DB.Where("token = ? AND type = ?", token, users.TokenTypeEmailVerification).First(&t).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired token"})
		return
	}

	if err := database.DB.Model(&users.User{}).
		Where("id = ?", t.UserID).
		Update("is_verified", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify account"})
		return
	}

	database.DB.Delete(&t)

	c.Redirect(http.StatusTemporaryRedirect, config.APP_URL+"/login")
}
