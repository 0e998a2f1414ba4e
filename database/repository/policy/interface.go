package policyRepo

import (
	"context"

	"insurepay/models"
)

// PolicyRepository defines methods for policy and tax-rate data access.
type PolicyRepository interface {
	GetByID(ctx context.Context, id string) (*models.Policy, error)
	// GetByIDs returns the policies found among ids; missing ids are omitted.
	GetByIDs(ctx context.Context, ids []string) ([]models.Policy, error)
	ListByInsurer(ctx context.Context, insurerID string) ([]models.Policy, error)
	ListActive(ctx context.Context) ([]models.Policy, error)
	Create(ctx context.Context, policy *models.Policy) error

	// GetTaxRate returns the GST rate configured for a policy type.
	GetTaxRate(ctx context.Context, policyType string) (*models.TaxRate, error)
	UpsertTaxRate(ctx context.Context, rate *models.TaxRate) error
	ListTaxRates(ctx context.Context) ([]models.TaxRate, error)
}
