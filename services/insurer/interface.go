package insurer

import (
	"context"

	customerRepo "insurepay/database/repository/customer"
	insurerRepo "insurepay/database/repository/insurer"
	policyRepo "insurepay/database/repository/policy"
	"insurepay/models"

	"go.uber.org/zap"
)

type InsurerService interface {
	Register(ctx context.Context, req models.InsurerRegistration) (*models.Insurer, error)
	GetInsurer(ctx context.Context, id string) (*models.Insurer, error)
	ListInsurers(ctx context.Context) ([]models.Insurer, error)
	CreatePolicy(ctx context.Context, insurerID string, req models.CreatePolicyRequest) (*models.Policy, error)
	ListPolicies(ctx context.Context, insurerID string) ([]models.Policy, error)
	SetTaxRate(ctx context.Context, req models.SetTaxRateRequest) (*models.TaxRate, error)
	ListTaxRates(ctx context.Context) ([]models.TaxRate, error)
	// ListCustomers returns customers holding any of the insurer's policies.
	ListCustomers(ctx context.Context, insurerID string) ([]models.Customer, error)
}

// DefaultInsurerService is the production implementation.
type DefaultInsurerService struct {
	Repo      insurerRepo.InsurerRepository
	Policies  policyRepo.PolicyRepository
	Customers customerRepo.CustomerRepository
	Logger    *zap.Logger
}

func NewDefaultInsurerService(
	repo insurerRepo.InsurerRepository,
	policies policyRepo.PolicyRepository,
	customers customerRepo.CustomerRepository,
	logger *zap.Logger,
) *DefaultInsurerService {
	return &DefaultInsurerService{Repo: repo, Policies: policies, Customers: customers, Logger: logger}
}
