package models

// EnableAutoPayRequest enrols an invoice or a single policy in recurring billing.
type EnableAutoPayRequest struct {
	CustomerID string  `json:"customerId" binding:"required"`
	InvoiceID  string  `json:"invoiceId"`
	PolicyID   string  `json:"policyId"`
	Months     int     `json:"months" binding:"required,min=1"`
	Amount     float64 `json:"amount"`
}

type DisableAutoPayRequest struct {
	CustomerID     string `json:"customerId" binding:"required"`
	SubscriptionID string `json:"subscriptionId"`
	PolicyID       string `json:"policyId"`
}

// PolicyAutoPay is the autopay state of one policy, derived from the
// customer's payment history.
type PolicyAutoPay struct {
	PolicyID       string        `json:"policyId"`
	Active         bool          `json:"active"`
	SubscriptionID string        `json:"subscriptionId,omitempty"`
	Status         HistoryStatus `json:"status"`
}

type AutoPayStatus struct {
	CustomerID     string          `json:"customerId"`
	AutoPayEnabled bool            `json:"autoPayEnabled"`
	Policies       []PolicyAutoPay `json:"policies"`
}
