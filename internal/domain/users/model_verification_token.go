package users

import "time"

// Token types stored in VerificationToken.Type.
const (
	TokenTypeEmailVerification = "email_verification"
	TokenTypePasswordReset     = "password_reset"
)

// VerificationToken backs both email verification and password reset
// links. A user holds at most one token per type at a time.
type VerificationToken struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"uniqueIndex:idx_token_user_type"`
	User      User   `gorm:"constraint:OnDelete:CASCADE"`
	Token     string `gorm:"uniqueIndex"`
	Type      string `gorm:"uniqueIndex:idx_token_user_type"`
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (t VerificationToken) Expired() bool {
	return !t.ExpiresAt.IsZero() && t.ExpiresAt.Before(time.Now())
}
