package main

import (
	"os"
	"time"

	"saas-starter/config"
	"saas-starter/database"
	"saas-starter/internal/api/billing"
	stripewebhooks "saas-starter/internal/api/stripewebhook"
	routes "saas-starter/internal/app/http"
	"saas-starter/internal/domain/plans"
	"saas-starter/internal/domain/users"
	stripeinfra "saas-starter/internal/infra/stripe"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// gin.SetMode(gin.ReleaseMode) uncomment only in production
	config.LoadEnv()
	database.InitDB()

	store := users.NewStore(database.DB)
	stripeClient := stripeinfra.NewClient(config.STRIPE_SECRET_KEY, config.STRIPE_WEBHOOK_SECRET)
	priceTable := plans.NewPriceTable(
		config.STRIPE_PRICE_PRO_MONTHLY,
		config.STRIPE_PRICE_PRO_YEARLY,
		config.STRIPE_PRICE_ULTRA_MONTHLY,
		config.STRIPE_PRICE_ULTRA_YEARLY,
	)

	billingHandler := billing.NewHandler(store, stripeClient, priceTable, config.APP_URL)
	webhookHandler := stripewebhooks.NewHandler(store, stripeClient)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{os.Getenv("CORS_ORIGIN")},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, billingHandler, webhookHandler)

	r.Run(":" + config.PORT)
}
