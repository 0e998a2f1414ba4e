package paymentRepo

import (
	"context"

	"insurepay/models"
)

// PaymentRepository stores the append-only payment log.
type PaymentRepository interface {
	// Create inserts a payment. A second payment with the same non-empty
	// gateway payment id fails with an already-exists error.
	Create(ctx context.Context, payment *models.Payment) error
	GetByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*models.Payment, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.Payment, error)
	ListByInvoice(ctx context.Context, invoiceID string) ([]models.Payment, error)
}
