package invoiceRepo

import (
	"context"

	"insurepay/models"
)

// InvoiceRepository defines methods for invoice data access.
type InvoiceRepository interface {
	GetByID(ctx context.Context, id string) (*models.Invoice, error)
	// GetByGatewayOrderID resolves the invoice a gateway order was created for.
	GetByGatewayOrderID(ctx context.Context, orderID string) (*models.Invoice, error)
	// ListByCustomerAndStatusIn lists a customer's invoices in any of statuses;
	// no statuses means all of them.
	ListByCustomerAndStatusIn(ctx context.Context, customerID string, statuses []models.InvoiceStatus) ([]models.Invoice, error)
	ListByInsurer(ctx context.Context, insurerID string) ([]models.Invoice, error)
	Create(ctx context.Context, invoice *models.Invoice) error
	Save(ctx context.Context, invoice *models.Invoice) error
}
