package customerRepo

import (
	"context"

	"insurepay/models"
)

// CustomerRepository defines methods for customer data access.
type CustomerRepository interface {
	// GetByID retrieves a customer by its unique ID.
	GetByID(ctx context.Context, id string) (*models.Customer, error)
	// GetByEmail retrieves a customer by email address.
	GetByEmail(ctx context.Context, email string) (*models.Customer, error)
	// GetAll retrieves every customer.
	GetAll(ctx context.Context) ([]models.Customer, error)
	// SearchByName returns customers whose name contains fragment, case-insensitive.
	SearchByName(ctx context.Context, fragment string) ([]models.Customer, error)
	// ListByPolicyIDs returns customers owning any of the given policies.
	ListByPolicyIDs(ctx context.Context, policyIDs []string) ([]models.Customer, error)
	// Create inserts a new customer.
	Create(ctx context.Context, customer *models.Customer) error
	// Save replaces the stored customer document with customer.
	Save(ctx context.Context, customer *models.Customer) error
}
