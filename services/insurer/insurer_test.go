package insurer_test

import (
	"context"
	"testing"

	ierr "insurepay/errors"
	"insurepay/models"
	"insurepay/services/insurer"
	"insurepay/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	svc       *insurer.DefaultInsurerService
	policies  *testutil.InMemoryPolicyStore
	customers *testutil.InMemoryCustomerStore
}

func newFixture() fixture {
	f := fixture{
		policies:  testutil.NewInMemoryPolicyStore(),
		customers: testutil.NewInMemoryCustomerStore(),
	}
	f.svc = insurer.NewDefaultInsurerService(testutil.NewInMemoryInsurerStore(), f.policies, f.customers, zap.NewNop())
	return f
}

func TestCreatePolicyAndListCustomers(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	ins, err := f.svc.Register(ctx, models.InsurerRegistration{Name: "Acme", Email: "OPS@acme.example", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "ops@acme.example", ins.Email)

	p, err := f.svc.CreatePolicy(ctx, ins.ID, models.CreatePolicyRequest{
		Name: "Health Plus", Type: "Health", CoverageAmount: 500000, MonthlyPremium: 100, DurationMonths: 12,
	})
	require.NoError(t, err)
	assert.True(t, p.Active)
	assert.Equal(t, "health", p.Type)
	assert.Equal(t, ins.ID, p.InsurerID)

	_, err = f.svc.CreatePolicy(ctx, "ins_missing", models.CreatePolicyRequest{Name: "x", Type: "x", MonthlyPremium: 1, DurationMonths: 1})
	assert.True(t, ierr.IsNotFound(err))

	require.NoError(t, f.customers.Create(ctx, &models.Customer{ID: "c1", Email: "c1@example.com", PolicyIDs: []string{p.ID}}))
	require.NoError(t, f.customers.Create(ctx, &models.Customer{ID: "c2", Email: "c2@example.com", PolicyIDs: []string{"other"}}))

	holders, err := f.svc.ListCustomers(ctx, ins.ID)
	require.NoError(t, err)
	require.Len(t, holders, 1)
	assert.Equal(t, "c1", holders[0].ID)

	none, err := f.svc.ListCustomers(ctx, "ins_without_policies")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSetTaxRate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	rate, err := f.svc.SetTaxRate(ctx, models.SetTaxRateRequest{PolicyType: " Motor ", GSTRate: 0.18})
	require.NoError(t, err)
	assert.Equal(t, "motor", rate.PolicyType)

	_, err = f.svc.SetTaxRate(ctx, models.SetTaxRateRequest{PolicyType: "motor", GSTRate: 0.12})
	require.NoError(t, err)

	stored, err := f.policies.GetTaxRate(ctx, "motor")
	require.NoError(t, err)
	assert.Equal(t, 0.12, stored.GSTRate)

	_, err = f.svc.SetTaxRate(ctx, models.SetTaxRateRequest{PolicyType: "motor", GSTRate: 18})
	assert.True(t, ierr.IsValidation(err))

	rates, err := f.svc.ListTaxRates(ctx)
	require.NoError(t, err)
	assert.Len(t, rates, 1)
}
