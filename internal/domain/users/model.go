package users

import (
	"time"
)

type User struct {
	ID           uint `gorm:"primaryKey"`
	Name         string
	Email        string  `gorm:"not null;uniqueIndex:idx_users_email"`
	Password     *string `gorm:""`
	AuthProvider string  `gorm:"type:varchar(20);not null;default:'local'"`
	GoogleSub    *string `gorm:"uniqueIndex:idx_users_google_sub"`
	Role         string
	IsVerified   bool

	// Billing projection, written by the Stripe webhook reconciler and the
	// plan-change/cancel commands. Interval is set iff the plan is paid.
	SubscriptionPlan             string     `gorm:"column:subscription_plan;not null;default:'free'"`
	SubscriptionInterval         *string    `gorm:"column:subscription_interval"`
	SubscriptionStatus           *string    `gorm:"column:subscription_status"`
	SubscriptionCurrentPeriodEnd *time.Time `gorm:"column:subscription_current_period_end"`
	StripeCustomerID             *string    `gorm:"column:stripe_customer_id;uniqueIndex:idx_users_stripe_customer_id"`
	StripeSubscriptionID         *string    `gorm:"column:stripe_subscription_id;uniqueIndex:idx_users_stripe_subscription_id"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
