package users

import "time"

type MeResponse struct {
	User    UserDTO    `json:"user"`
	Billing BillingDTO `json:"billing"`
}

type UserDTO struct {
	ID         uint   `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	IsVerified bool   `json:"is_verified"`
}

type BillingDTO struct {
	Plan             string     `json:"plan"`
	Interval         *string    `json:"interval"`
	Status           *string    `json:"status"`
	CurrentPeriodEnd *time.Time `json:"current_period_end"`
}
