package routes

import (
	authapi "saas-starter/internal/api/auth"
	"saas-starter/internal/api/billing"
	stripewebhooks "saas-starter/internal/api/stripewebhook"
	"saas-starter/internal/api/users"
	"saas-starter/internal/app/http/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, billingHandler *billing.Handler, webhook *stripewebhooks.Handler) {
	// Webhook stays outside the sanitizer: signature verification needs
	// the raw, untouched body bytes.
	r.POST("/webhook", webhook.HandleWebhook)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/prices", billing.ListPrices)

	public := r.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())

	public.POST("/register", authapi.Register)
	public.POST("/login", authapi.Login)
	public.GET("/verify", users.VerifyEmail)
	public.POST("/resend-verification", authapi.ResendVerification)
	public.POST("/request-password-reset", authapi.RequestPasswordReset)
	public.POST("/reset-password", authapi.ResetPassword)

	public.GET("/auth/google", authapi.GoogleStart)
	public.GET("/auth/google/callback", authapi.GoogleCallback)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware())
	auth.GET("/me", users.GetCurrentUser)
	auth.PUT("/profile", users.UpdateProfile)
	auth.POST("/change-password", authapi.ChangePassword)

	auth.GET("/subscription", billingHandler.GetSubscription)
	auth.POST("/subscription", billingHandler.CancelSubscription)
	auth.POST("/subscription/change-plan", billingHandler.ChangePlan)
	auth.POST("/create-checkout-session", billingHandler.CreateCheckoutSession)
}
