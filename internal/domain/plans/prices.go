package plans

import "math"

// Prices are in USD.
//
// Free plan is free forever.
// Pro plan is $7/month or $60/year.
// Ultra plan is $10/month or $100/year.
var prices = map[string]map[string]float64{
	PlanFree:  {IntervalMonthly: 0, IntervalYearly: 0},
	PlanPro:   {IntervalMonthly: 7, IntervalYearly: 60},
	PlanUltra: {IntervalMonthly: 10, IntervalYearly: 100},
}

// Price returns the USD price for a plan/interval pair (0 for unknown pairs).
func Price(plan, interval string) float64 {
	return prices[plan][interval]
}

// YearlySavings returns the percentage saved by paying yearly instead of
// monthly, rounded to the nearest whole percent.
func YearlySavings(plan string) int {
	monthly := Price(plan, IntervalMonthly)
	if monthly == 0 {
		return 0
	}
	yearlyPerMonth := Price(plan, IntervalYearly) / 12
	yearlyPerMonth = math.Round(yearlyPerMonth*100) / 100
	return int(math.Round((monthly - yearlyPerMonth) / monthly * 100))
}

func Plans() []string {
	return []string{PlanFree, PlanPro, PlanUltra}
}
