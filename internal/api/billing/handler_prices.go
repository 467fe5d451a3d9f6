package billing

import (
	"net/http"

	"saas-starter/internal/domain/plans"

	"github.com/gin-gonic/gin"
)

type PriceDTO struct {
	Plan          string  `json:"plan"`
	Monthly       float64 `json:"monthly"`
	Yearly        float64 `json:"yearly"`
	YearlySavings int     `json:"yearly_savings_percent"`
}

// ListPrices is the public USD price list backing the pricing page.
func ListPrices(c *gin.Context) {
	out := make([]PriceDTO, 0, 3)
	for _, plan := range plans.Plans() {
		out = append(out, PriceDTO{
			Plan:          plan,
			Monthly:       plans.Price(plan, plans.IntervalMonthly),
			Yearly:        plans.Price(plan, plans.IntervalYearly),
			YearlySavings: plans.YearlySavings(plan),
		})
	}
	c.JSON(http.StatusOK, out)
}
