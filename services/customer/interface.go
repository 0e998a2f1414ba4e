package customer

import (
	"context"

	customerRepo "insurepay/database/repository/customer"
	policyRepo "insurepay/database/repository/policy"
	"insurepay/models"

	"go.uber.org/zap"
)

type CustomerService interface {
	Register(ctx context.Context, req models.CustomerRegistration) (*models.Customer, error)
	GetCustomer(ctx context.Context, id string) (*models.Customer, error)
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	SearchCustomers(ctx context.Context, name string) ([]models.Customer, error)
	AddPolicies(ctx context.Context, customerID string, policyIDs []string) (*models.Customer, error)
	PaymentHistory(ctx context.Context, customerID string) ([]models.PaymentHistory, error)
	ListAvailablePolicies(ctx context.Context) ([]models.Policy, error)
}

// DefaultCustomerService is the production implementation.
type DefaultCustomerService struct {
	Repo     customerRepo.CustomerRepository
	Policies policyRepo.PolicyRepository
	Logger   *zap.Logger
}

func NewDefaultCustomerService(repo customerRepo.CustomerRepository, policies policyRepo.PolicyRepository, logger *zap.Logger) *DefaultCustomerService {
	return &DefaultCustomerService{Repo: repo, Policies: policies, Logger: logger}
}
