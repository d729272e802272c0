package service

import (
	"math"

	"dealflow-analyst/internal/entity"
)

// Derive recomputes the metrics that follow mechanically from extracted
// fields and returns the names of the ones that changed. Derived values are
// recomputed on every reconciliation; they clear when their inputs become
// invalid. ARR/MRR completion only fills the missing side, it never overrides
// an extracted value.
func Derive(c *entity.Company) []string {
	var changed []string

	if c.RevenueARRUSD == nil && c.RevenueMRRUSD != nil {
		arr := *c.RevenueMRRUSD * 12
		c.RevenueARRUSD = &arr
		changed = append(changed, entity.FieldRevenueARRUSD)
	} else if c.RevenueMRRUSD == nil && c.RevenueARRUSD != nil {
		mrr := *c.RevenueARRUSD / 12
		c.RevenueMRRUSD = &mrr
		changed = append(changed, entity.FieldRevenueMRRUSD)
	}

	if deriveRunway(c) {
		changed = append(changed, entity.FieldRunwayMonths)
	}
	if deriveLTVCAC(c) {
		changed = append(changed, entity.FieldLTVCACRatio)
	}

	return changed
}

// deriveRunway sets runway_months = floor(cash / burn). Runway is unset when
// cash is unknown or burn is not a positive number.
func deriveRunway(c *entity.Company) bool {
	if c.CashOnHandUSD == nil || c.BurnRateMonthlyUSD == nil || *c.BurnRateMonthlyUSD <= 0 {
		changed := c.RunwayMonths != nil
		c.RunwayMonths = nil
		return changed
	}

	months := int(math.Floor(*c.CashOnHandUSD / float64(*c.BurnRateMonthlyUSD)))
	changed := c.RunwayMonths == nil || *c.RunwayMonths != months
	c.RunwayMonths = &months
	return changed
}

func deriveLTVCAC(c *entity.Company) bool {
	if c.LTVUSD == nil || c.CACUSD == nil || *c.CACUSD <= 0 {
		changed := c.LTVCACRatio != nil
		c.LTVCACRatio = nil
		return changed
	}

	ratio := *c.LTVUSD / *c.CACUSD
	changed := c.LTVCACRatio == nil || *c.LTVCACRatio != ratio
	c.LTVCACRatio = &ratio
	return changed
}
