package users

import (
	"gorm.io/gorm"
)

// Store is the persistence capability handed to the billing handlers and the
// Stripe webhook reconciler. Updates are absolute-state patches (column ->
// value), never increments, so replaying the same event is safe.
type Store interface {
	FindByID(id uint) (*User, error)
	FindByStripeSubscriptionID(subscriptionID string) (*User, error)
	// Update patches a single user by id.
	Update(id uint, patch map[string]interface{}) error
	// UpdateByStripeSubscriptionID patches every user holding the given
	// subscription id (normally exactly one, enforced by a unique index).
	UpdateByStripeSubscriptionID(subscriptionID string, patch map[string]interface{}) error
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) FindByID(id uint) (*User, error) {
	var user User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *gormStore) FindByStripeSubscriptionID(subscriptionID string) (*User, error) {
	var user User
	if err := s.db.Where("stripe_subscription_id = ?", subscriptionID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *gormStore) Update(id uint, patch map[string]interface{}) error {
	return s.db.Model(&User{}).Where("id = ?", id).Updates(patch).Error
}

func (s *gormStore) UpdateByStripeSubscriptionID(subscriptionID string, patch map[string]interface{}) error {
	return s.db.Model(&User{}).
		Where("stripe_subscription_id = ?", subscriptionID).
		Updates(patch).Error
}
