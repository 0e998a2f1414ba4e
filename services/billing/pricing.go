package billing

import (
	"time"

	"insurepay/models"

	"github.com/shopspring/decimal"
)

const defaultAutoPayTaxRate = 0.18

// priceLine computes base = premium*months, tax = base*gst, total = base+tax.
func priceLine(policy models.Policy, months int, gstRate float64) models.TaxBreakdown {
	base := decimal.NewFromFloat(policy.MonthlyPremium).Mul(decimal.NewFromInt(int64(months)))
	tax := base.Mul(decimal.NewFromFloat(gstRate))
	return models.TaxBreakdown{
		PolicyID:   policy.ID,
		PolicyType: policy.Type,
		BaseAmount: money(base),
		GSTRate:    gstRate,
		TaxAmount:  money(tax),
		Total:      money(base.Add(tax)),
	}
}

func sumTotals(lines []models.TaxBreakdown) float64 {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(decimal.NewFromFloat(l.Total))
	}
	return money(total)
}

// autoPayCharge is the amount and tax of one recurring cycle.
func autoPayCharge(policies []models.Policy, rate float64) (amount, tax float64) {
	sum := decimal.Zero
	for _, p := range policies {
		sum = sum.Add(decimal.NewFromFloat(p.MonthlyPremium))
	}
	return money(sum), money(sum.Mul(decimal.NewFromFloat(rate)))
}

// toMinor converts an amount to the gateway's minor currency units.
func toMinor(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// extendFrom returns max(current, now) + months. A nil current counts as now.
func extendFrom(current *time.Time, now time.Time, months int) time.Time {
	base := now
	if current != nil && current.After(now) {
		base = *current
	}
	return base.AddDate(0, months, 0)
}
