package plans

import "fmt"

// ErrPriceNotConfigured means the Stripe price id for a plan/interval pair is
// missing from the environment. Operational misconfiguration, not user error.
type ErrPriceNotConfigured struct {
	Plan     string
	Interval string
}

func (e *ErrPriceNotConfigured) Error() string {
	return fmt.Sprintf("missing Stripe price id for %s.%s", e.Plan, e.Interval)
}

// PriceTable maps the four paid (plan, interval) pairs to Stripe price ids.
// It is a closed enumeration loaded once from config at startup.
type PriceTable struct {
	ids map[string]map[string]string
}

func NewPriceTable(proMonthly, proYearly, ultraMonthly, ultraYearly string) PriceTable {
	return PriceTable{ids: map[string]map[string]string{
		PlanPro:   {IntervalMonthly: proMonthly, IntervalYearly: proYearly},
		PlanUltra: {IntervalMonthly: ultraMonthly, IntervalYearly: ultraYearly},
	}}
}

// Resolve returns the Stripe price id for a paid plan/interval pair.
func (t PriceTable) Resolve(plan, interval string) (string, error) {
	id := t.ids[plan][interval]
	if id == "" {
		return "", &ErrPriceNotConfigured{Plan: plan, Interval: interval}
	}
	return id, nil
}
