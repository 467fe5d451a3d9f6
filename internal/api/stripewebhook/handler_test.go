package stripewebhooks

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"saas-starter/internal/domain/plans"
	"saas-starter/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v75"
	"gorm.io/gorm"
)

// =============================================================================
// FAKES
// =============================================================================

type memStore struct {
	users     map[uint]*users.User
	updateErr error
}

func newMemStore(us ...*users.User) *memStore {
	s := &memStore{users: map[uint]*users.User{}}
	for _, u := range us {
		s.users[u.ID] = u
	}
	return s
}

func (s *memStore) FindByID(id uint) (*users.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *memStore) FindByStripeSubscriptionID(subscriptionID string) (*users.User, error) {
	for _, u := range s.users {
		if u.StripeSubscriptionID != nil && *u.StripeSubscriptionID == subscriptionID {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memStore) Update(id uint, patch map[string]interface{}) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	if u, ok := s.users[id]; ok {
		applyUserPatch(u, patch)
	}
	return nil
}

func (s *memStore) UpdateByStripeSubscriptionID(subscriptionID string, patch map[string]interface{}) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	for _, u := range s.users {
		if u.StripeSubscriptionID != nil && *u.StripeSubscriptionID == subscriptionID {
			applyUserPatch(u, patch)
		}
	}
	return nil
}

func applyUserPatch(u *users.User, patch map[string]interface{}) {
	setString := func(dst **string, val interface{}) {
		if val == nil {
			*dst = nil
			return
		}
		s := val.(string)
		*dst = &s
	}
	for col, val := range patch {
		switch col {
		case "subscription_plan":
			u.SubscriptionPlan = val.(string)
		case "subscription_interval":
			setString(&u.SubscriptionInterval, val)
		case "subscription_status":
			setString(&u.SubscriptionStatus, val)
		case "subscription_current_period_end":
			t := val.(time.Time)
			u.SubscriptionCurrentPeriodEnd = &t
		case "stripe_customer_id":
			setString(&u.StripeCustomerID, val)
		case "stripe_subscription_id":
			setString(&u.StripeSubscriptionID, val)
		}
	}
}

// fakeProvider verifies notifications with a real HMAC over the payload, so
// a tampered body with an unchanged signature genuinely fails verification.
type fakeProvider struct {
	secret string

	sub    *stripe.Subscription
	subErr error

	retrieveCalls []string
}

func (f *fakeProvider) sign(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(f.secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func (f *fakeProvider) VerifyNotification(payload []byte, signatureHeader string) (stripe.Event, error) {
	if signatureHeader == "" || !hmac.Equal([]byte(signatureHeader), []byte(f.sign(payload))) {
		return stripe.Event{}, errors.New("signature verification failed")
	}
	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return stripe.Event{}, err
	}
	return event, nil
}

func (f *fakeProvider) RetrieveSubscription(id string) (*stripe.Subscription, error) {
	f.retrieveCalls = append(f.retrieveCalls, id)
	if f.subErr != nil {
		return nil, f.subErr
	}
	return f.sub, nil
}

func (f *fakeProvider) UpdateSubscriptionItemPrice(subscriptionID, itemID, priceID string) (*stripe.Subscription, error) {
	return nil, errors.New("not supported in webhook tests")
}

func (f *fakeProvider) CancelAtPeriodEnd(subscriptionID string) (*stripe.Subscription, error) {
	return nil, errors.New("not supported in webhook tests")
}

func (f *fakeProvider) CreateCheckoutSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return nil, errors.New("not supported in webhook tests")
}

// =============================================================================
// HELPERS
// =============================================================================

func newWebhookRouter(store users.Store, provider *fakeProvider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/webhook", NewHandler(store, provider).HandleWebhook)
	return r
}

func postWebhook(r *gin.Engine, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signature)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func eventPayload(eventType string, object string) []byte {
	return []byte(fmt.Sprintf(`{"id":"evt_1","type":%q,"data":{"object":%s}}`, eventType, object))
}

func strPtr(s string) *string { return &s }

func proUser(id uint, subscriptionID string) *users.User {
	return &users.User{
		ID:                   id,
		Email:                fmt.Sprintf("user%d@example.com", id),
		SubscriptionPlan:     plans.PlanPro,
		SubscriptionInterval: strPtr(plans.IntervalMonthly),
		SubscriptionStatus:   strPtr(plans.StatusActive),
		StripeCustomerID:     strPtr(fmt.Sprintf("cus_%d", id)),
		StripeSubscriptionID: strPtr(subscriptionID),
	}
}

// =============================================================================
// SIGNATURE & DISPATCH
// =============================================================================

func TestWebhookRejectsTamperedBody(t *testing.T) {
	store := newMemStore(proUser(1, "sub_1"))
	provider := &fakeProvider{secret: "whsec_test"}

	payload := eventPayload("customer.subscription.deleted", `{"id":"sub_1","status":"canceled"}`)
	signature := provider.sign(payload)

	tampered := bytes.Replace(payload, []byte("sub_1"), []byte("sub_2"), 1)
	w := postWebhook(newWebhookRouter(store, provider), tampered, signature)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	// no state mutation
	assert.Equal(t, plans.PlanPro, store.users[1].SubscriptionPlan)
	require.NotNil(t, store.users[1].StripeSubscriptionID)
	assert.Equal(t, "sub_1", *store.users[1].StripeSubscriptionID)
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	store := newMemStore(proUser(1, "sub_1"))
	provider := &fakeProvider{secret: "whsec_test"}

	payload := eventPayload("customer.subscription.deleted", `{"id":"sub_1"}`)
	w := postWebhook(newWebhookRouter(store, provider), payload, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, plans.PlanPro, store.users[1].SubscriptionPlan)
}

func TestWebhookAcksUnknownEventWithoutMutation(t *testing.T) {
	user := proUser(1, "sub_1")
	before := *user
	store := newMemStore(user)
	provider := &fakeProvider{secret: "whsec_test"}

	payload := eventPayload("customer.tax_id.created", `{"id":"txi_1"}`)
	w := postWebhook(newWebhookRouter(store, provider), payload, provider.sign(payload))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received":true}`, w.Body.String())
	assert.Equal(t, before, *store.users[1])
}

func TestWebhookPersistenceFailureReturns500(t *testing.T) {
	store := newMemStore(proUser(1, "sub_1"))
	store.updateErr = errors.New("connection reset")
	provider := &fakeProvider{secret: "whsec_test"}

	payload := eventPayload("customer.subscription.deleted", `{"id":"sub_1","status":"canceled"}`)
	w := postWebhook(newWebhookRouter(store, provider), payload, provider.sign(payload))

	// 500 so Stripe redelivers; replays are safe because writes are absolute.
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// =============================================================================
// CHECKOUT COMPLETED
// =============================================================================

func TestCheckoutCompletedActivatesSubscription(t *testing.T) {
	periodEnd := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	store := newMemStore(&users.User{ID: 1, Email: "u@example.com", SubscriptionPlan: plans.PlanFree})
	provider := &fakeProvider{
		secret: "whsec_test",
		sub: &stripe.Subscription{
			ID:               "sub_new",
			Status:           stripe.SubscriptionStatusActive,
			CurrentPeriodEnd: periodEnd.Unix(),
		},
	}

	payload := eventPayload("checkout.session.completed", `{
		"id": "cs_1",
		"customer": {"id": "cus_1"},
		"subscription": {"id": "sub_new"},
		"metadata": {"userId": "1", "plan": "pro", "interval": "monthly"}
	}`)
	w := postWebhook(newWebhookRouter(store, provider), payload, provider.sign(payload))

	require.Equal(t, http.StatusOK, w.Code)
	u := store.users[1]
	assert.Equal(t, plans.PlanPro, u.SubscriptionPlan)
	require.NotNil(t, u.SubscriptionInterval)
	assert.Equal(t, plans.IntervalMonthly, *u.SubscriptionInterval)
	require.NotNil(t, u.SubscriptionStatus)
	assert.Equal(t, plans.StatusActive, *u.SubscriptionStatus)
	require.NotNil(t, u.SubscriptionCurrentPeriodEnd)
	assert.True(t, u.SubscriptionCurrentPeriodEnd.Equal(periodEnd))
	require.NotNil(t, u.StripeSubscriptionID)
	assert.Equal(t, "sub_new", *u.StripeSubscriptionID)
	require.NotNil(t, u.StripeCustomerID)
	assert.Equal(t, "cus_1", *u.StripeCustomerID)
	assert.Equal(t, []string{"sub_new"}, provider.retrieveCalls)
}

func TestCheckoutCompletedDefaultsActiveWhenFetchFails(t *testing.T) {
	store := newMemStore(&users.User{ID: 1, SubscriptionPlan: plans.PlanFree})
	provider := &fakeProvider{secret: "whsec_test", subErr: errors.New("api down")}

	payload := eventPayload("checkout.session.completed", `{
		"id": "cs_1",
		"subscription": {"id": "sub_new"},
		"metadata": {"userId": "1", "plan": "ultra", "interval": "yearly"}
	}`)
	w := postWebhook(newWebhookRouter(store, provider), payload, provider.sign(payload))

	require.Equal(t, http.StatusOK, w.Code)
	u := store.users[1]
	assert.Equal(t, plans.PlanUltra, u.SubscriptionPlan)
	require.NotNil(t, u.SubscriptionInterval)
	assert.Equal(t, plans.IntervalYearly, *u.SubscriptionInterval)
	require.NotNil(t, u.SubscriptionStatus)
	assert.Equal(t, plans.StatusActive, *u.SubscriptionStatus)
	assert.Nil(t, u.SubscriptionCurrentPeriodEnd)
}

func TestCheckoutCompletedWithoutUserReferenceIsNoOp(t *testing.T) {
	user := proUser(1, "sub_1")
	before := *user
	store := newMemStore(user)
	provider := &fakeProvider{secret: "whsec_test"}

	payload := eventPayload("checkout.session.completed", `{"id": "cs_1", "metadata": {}}`)
	w := postWebhook(newWebhookRouter(store, provider), payload, provider.sign(payload))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, before, *store.users[1])
}

// =============================================================================
// SUBSCRIPTION UPDATED / DELETED
// =============================================================================

func TestSubscriptionUpdatedIsIdempotent(t *testing.T) {
	store := newMemStore(proUser(1, "sub_1"))
	provider := &fakeProvider{secret: "whsec_test"}
	router := newWebhookRouter(store, provider)

	payload := eventPayload("customer.subscription.updated", `{
		"id": "sub_1",
		"status": "past_due",
		"current_period_end": 1767225600,
		"customer": {"id": "cus_9"},
		"items": {"data": [{"id": "si_1", "price": {"id": "price_pro_y", "recurring": {"interval": "year"}}}]}
	}`)
	signature := provider.sign(payload)

	w := postWebhook(router, payload, signature)
	require.Equal(t, http.StatusOK, w.Code)
	after := *store.users[1]

	w = postWebhook(router, payload, signature)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, after, *store.users[1])
	require.NotNil(t, store.users[1].SubscriptionStatus)
	assert.Equal(t, plans.StatusPastDue, *store.users[1].SubscriptionStatus)
	require.NotNil(t, store.users[1].SubscriptionInterval)
	assert.Equal(t, plans.IntervalYearly, *store.users[1].SubscriptionInterval)
	require.NotNil(t, store.users[1].StripeCustomerID)
	assert.Equal(t, "cus_9", *store.users[1].StripeCustomerID)
}

func TestSubscriptionDeletedUpdatesOnlyMatchingRecord(t *testing.T) {
	victim := proUser(1, "sub_1")
	bystander := proUser(2, "sub_2")
	store := newMemStore(victim, bystander)
	provider := &fakeProvider{secret: "whsec_test"}

	payload := eventPayload("customer.subscription.deleted", `{"id":"sub_1","status":"canceled"}`)
	w := postWebhook(newWebhookRouter(store, provider), payload, provider.sign(payload))

	require.Equal(t, http.StatusOK, w.Code)

	u := store.users[1]
	assert.Equal(t, plans.PlanFree, u.SubscriptionPlan)
	require.NotNil(t, u.SubscriptionStatus)
	assert.Equal(t, plans.StatusCanceled, *u.SubscriptionStatus)
	// interval iff paid plan; subscription id cleared, customer id kept
	assert.Nil(t, u.SubscriptionInterval)
	assert.Nil(t, u.StripeSubscriptionID)
	assert.NotNil(t, u.StripeCustomerID)

	other := store.users[2]
	assert.Equal(t, plans.PlanPro, other.SubscriptionPlan)
	require.NotNil(t, other.StripeSubscriptionID)
	assert.Equal(t, "sub_2", *other.StripeSubscriptionID)
}

func TestStaleSubscriptionDeletedHasNoEffect(t *testing.T) {
	// The user already migrated to sub_2; a late delete for sub_1 must not
	// touch them because the old id no longer matches any record.
	user := proUser(1, "sub_2")
	before := *user
	store := newMemStore(user)
	provider := &fakeProvider{secret: "whsec_test"}

	payload := eventPayload("customer.subscription.deleted", `{"id":"sub_1","status":"canceled"}`)
	w := postWebhook(newWebhookRouter(store, provider), payload, provider.sign(payload))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, before, *store.users[1])
}

// =============================================================================
// INVOICES
// =============================================================================

func TestInvoicePaidRefreshesStatusAndPeriodEnd(t *testing.T) {
	periodEnd := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	user := proUser(1, "sub_1")
	user.SubscriptionStatus = strPtr(plans.StatusPastDue)
	store := newMemStore(user)
	provider := &fakeProvider{
		secret: "whsec_test",
		sub: &stripe.Subscription{
			ID:               "sub_1",
			Status:           stripe.SubscriptionStatusActive,
			CurrentPeriodEnd: periodEnd.Unix(),
		},
	}

	payload := eventPayload("invoice.paid", `{"id":"in_1","customer":{"id":"cus_1"},"subscription":{"id":"sub_1"}}`)
	w := postWebhook(newWebhookRouter(store, provider), payload, provider.sign(payload))

	require.Equal(t, http.StatusOK, w.Code)
	u := store.users[1]
	require.NotNil(t, u.SubscriptionStatus)
	assert.Equal(t, plans.StatusActive, *u.SubscriptionStatus)
	require.NotNil(t, u.SubscriptionCurrentPeriodEnd)
	assert.True(t, u.SubscriptionCurrentPeriodEnd.Equal(periodEnd))
}

func TestInvoicePaymentFailedSetsPastDueOnly(t *testing.T) {
	store := newMemStore(proUser(1, "sub_1"))
	provider := &fakeProvider{secret: "whsec_test"}

	payload := eventPayload("invoice.payment_failed", `{"id":"in_1","subscription":{"id":"sub_1"}}`)
	w := postWebhook(newWebhookRouter(store, provider), payload, provider.sign(payload))

	require.Equal(t, http.StatusOK, w.Code)
	u := store.users[1]
	require.NotNil(t, u.SubscriptionStatus)
	assert.Equal(t, plans.StatusPastDue, *u.SubscriptionStatus)
	// plan and interval untouched
	assert.Equal(t, plans.PlanPro, u.SubscriptionPlan)
	require.NotNil(t, u.SubscriptionInterval)
	assert.Equal(t, plans.IntervalMonthly, *u.SubscriptionInterval)
}

func TestInvoiceWithoutSubscriptionIsNoOp(t *testing.T) {
	user := proUser(1, "sub_1")
	before := *user
	store := newMemStore(user)
	provider := &fakeProvider{secret: "whsec_test"}

	payload := eventPayload("invoice.paid", `{"id":"in_1","customer":{"id":"cus_1"}}`)
	w := postWebhook(newWebhookRouter(store, provider), payload, provider.sign(payload))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, before, *store.users[1])
}
