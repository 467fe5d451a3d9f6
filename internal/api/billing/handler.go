package billing

import (
	"saas-starter/internal/domain/plans"
	"saas-starter/internal/domain/users"
	stripeinfra "saas-starter/internal/infra/stripe"
)

// Handler carries the billing dependencies as explicit handles rather than
// package globals so the commands run against fakes in tests.
type Handler struct {
	Store   users.Store
	Billing stripeinfra.Provider
	Prices  plans.PriceTable
	AppURL  string
}

func NewHandler(store users.Store, billing stripeinfra.Provider, prices plans.PriceTable, appURL string) *Handler {
	return &Handler{Store: store, Billing: billing, Prices: prices, AppURL: appURL}
}
