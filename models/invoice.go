package models

import "time"

// Invoice is one billing cycle for a customer, covering one or more policies.
type Invoice struct {
	ID             string         `bson:"id" json:"id"`
	CustomerID     string         `bson:"customerId" json:"customerId"`
	InsurerID      string         `bson:"insurerId" json:"insurerId"`
	Amount         float64        `bson:"amount" json:"amount"`
	Status         InvoiceStatus  `bson:"status" json:"status"`
	ValidUntil     time.Time      `bson:"validUntil" json:"validUntil"`
	GatewayOrderID string         `bson:"gatewayOrderId" json:"gatewayOrderId"`
	TaxBreakdown   []TaxBreakdown `bson:"taxBreakdown" json:"taxBreakdown"`
	CreatedAt      time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time      `bson:"updatedAt" json:"updatedAt"`
	PolicyIDs      []string       `bson:"policyIds" json:"policyIds"`
	PaymentLinkURL string         `bson:"paymentLinkUrl" json:"paymentLinkUrl"`
	Months         int            `bson:"months" json:"months"`
	SubscriptionID string         `bson:"subscriptionId,omitempty" json:"subscriptionId,omitempty"`
}

// TaxBreakdown is the per-policy pricing line of an invoice or payment.
type TaxBreakdown struct {
	PolicyID   string  `bson:"policyId" json:"policyId"`
	PolicyType string  `bson:"policyType,omitempty" json:"policyType,omitempty"`
	BaseAmount float64 `bson:"baseAmount" json:"baseAmount"`
	GSTRate    float64 `bson:"gstRate" json:"gstRate"`
	TaxAmount  float64 `bson:"taxAmount" json:"taxAmount"`
	Total      float64 `bson:"total" json:"total"`
}

// CreateInvoiceRequest is the input of invoice creation.
type CreateInvoiceRequest struct {
	CustomerID string     `json:"customerId" binding:"required"`
	PolicyIDs  []string   `json:"policyIds" binding:"required,min=1,dive,required"`
	InsurerID  string     `json:"insurerId"`
	ValidUpto  *time.Time `json:"validUpto,omitempty"`
	Months     int        `json:"months" binding:"required,min=1"`
}
