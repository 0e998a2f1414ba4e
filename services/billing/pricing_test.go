package billing

import (
	"testing"
	"time"

	"insurepay/models"

	"github.com/stretchr/testify/assert"
)

func TestPriceLine(t *testing.T) {
	line := priceLine(models.Policy{ID: "p1", Type: "health", MonthlyPremium: 100}, 3, 0.18)
	assert.Equal(t, 300.0, line.BaseAmount)
	assert.Equal(t, 54.0, line.TaxAmount)
	assert.Equal(t, 354.0, line.Total)
	assert.Equal(t, "health", line.PolicyType)

	line = priceLine(models.Policy{ID: "p2", MonthlyPremium: 50}, 1, 0.10)
	assert.Equal(t, 55.0, line.Total)
}

func TestSumTotalsRounds(t *testing.T) {
	total := sumTotals([]models.TaxBreakdown{{Total: 0.1}, {Total: 0.2}})
	assert.Equal(t, 0.3, total)
}

func TestAutoPayCharge(t *testing.T) {
	amount, tax := autoPayCharge([]models.Policy{{MonthlyPremium: 100}, {MonthlyPremium: 250.5}}, 0.18)
	assert.Equal(t, 350.5, amount)
	assert.Equal(t, 63.09, tax)
}

func TestToMinor(t *testing.T) {
	assert.Equal(t, int64(35400), toMinor(354))
	assert.Equal(t, int64(1999), toMinor(19.99))
}

func TestExtendFrom(t *testing.T) {
	now := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	later := now.AddDate(0, 2, 0)
	earlier := now.AddDate(0, -2, 0)

	assert.Equal(t, now.AddDate(0, 1, 0), extendFrom(nil, now, 1))
	assert.Equal(t, now.AddDate(0, 1, 0), extendFrom(&earlier, now, 1))
	assert.Equal(t, later.AddDate(0, 1, 0), extendFrom(&later, now, 1))
}
