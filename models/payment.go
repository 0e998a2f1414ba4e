package models

import "time"

// Payment is an append-only record of a collected (or failed) charge.
type Payment struct {
	ID               string         `bson:"id" json:"id"`
	InvoiceID        *string        `bson:"invoiceId" json:"invoiceId"`
	CustomerID       string         `bson:"customerId" json:"customerId"`
	InsurerID        string         `bson:"insurerId,omitempty" json:"insurerId,omitempty"`
	Amount           float64        `bson:"amount" json:"amount"`
	Tax              float64        `bson:"tax" json:"tax"`
	Status           PaymentStatus  `bson:"status" json:"status"`
	GatewayPaymentID string         `bson:"gatewayPaymentId,omitempty" json:"gatewayPaymentId,omitempty"`
	SubscriptionID   string         `bson:"subscriptionId,omitempty" json:"subscriptionId,omitempty"`
	Method           PaymentMethod  `bson:"method" json:"method"`
	AutoPay          bool           `bson:"autoPay" json:"autoPay"`
	TaxBreakdown     []TaxBreakdown `bson:"taxBreakdown,omitempty" json:"taxBreakdown,omitempty"`
	PaidAt           time.Time      `bson:"paidAt" json:"paidAt"`
	PolicyIDs        []string       `bson:"policyIds" json:"policyIds"`
	PolicyNames      []string       `bson:"policyNames,omitempty" json:"policyNames,omitempty"`
}

// ProcessPaymentRequest carries a gateway confirmation, either from a webhook
// or from an admin recording a confirmation by hand.
type ProcessPaymentRequest struct {
	OrderID        string `json:"orderId"`
	PaymentID      string `json:"paymentId"`
	Status         string `json:"status" binding:"required,invoicestatus"`
	SubscriptionID string `json:"subscriptionId"`

	// Resolved from signed webhook notes only; never bound from a request body.
	CustomerID  string   `json:"-"`
	PolicyIDs   []string `json:"-"`
	PolicyNames []string `json:"-"`
}
