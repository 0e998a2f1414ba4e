package models

import "time"

// Customer is a policy holder.
type Customer struct {
	ID                string           `bson:"id" json:"id"`
	Name              string           `bson:"name" json:"name"`
	Email             string           `bson:"email" json:"email"`
	Phone             string           `bson:"phone" json:"phone"`
	Address           string           `bson:"address,omitempty" json:"address,omitempty"`
	PasswordHash      string           `bson:"passwordHash" json:"-"`
	AutoPayEnabled    bool             `bson:"autoPayEnabled" json:"autoPayEnabled"`
	PolicyIDs         []string         `bson:"policyIds" json:"policyIds"`
	PaymentHistory    []PaymentHistory `bson:"paymentHistory" json:"paymentHistory"`
	GatewayCustomerID string           `bson:"gatewayCustomerId,omitempty" json:"gatewayCustomerId,omitempty"`
	CreatedAt         time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time        `bson:"updatedAt" json:"updatedAt"`
}

// PaymentHistory is the billing state of one policy for one customer.
type PaymentHistory struct {
	PolicyID       string        `bson:"policyId" json:"policyId"`
	Status         HistoryStatus `bson:"status" json:"status"`
	LastPaidDate   *time.Time    `bson:"lastPaidDate,omitempty" json:"lastPaidDate,omitempty"`
	ValidUntil     *time.Time    `bson:"validUntil,omitempty" json:"validUntil,omitempty"`
	SubscriptionID string        `bson:"subscriptionId" json:"subscriptionId"`
}

// History returns the entry for policyID, or nil when the customer has never
// been billed for it.
func (c *Customer) History(policyID string) *PaymentHistory {
	for i := range c.PaymentHistory {
		if c.PaymentHistory[i].PolicyID == policyID {
			return &c.PaymentHistory[i]
		}
	}
	return nil
}

// UpsertHistory returns the entry for policyID, appending an empty one first
// if none exists. Entries are never removed.
func (c *Customer) UpsertHistory(policyID string) *PaymentHistory {
	if h := c.History(policyID); h != nil {
		return h
	}
	c.PaymentHistory = append(c.PaymentHistory, PaymentHistory{PolicyID: policyID})
	return &c.PaymentHistory[len(c.PaymentHistory)-1]
}

// OwnsPolicy reports whether policyID is in the customer's owned policies.
func (c *Customer) OwnsPolicy(policyID string) bool {
	for _, id := range c.PolicyIDs {
		if id == policyID {
			return true
		}
	}
	return false
}

// AutoPayPolicies lists the policies that currently carry a gateway
// subscription id, which is the per-policy view of autopay.
func (c *Customer) AutoPayPolicies() []string {
	var ids []string
	for _, h := range c.PaymentHistory {
		if h.SubscriptionID != "" && h.Status != HistoryStatusAutopayInactive {
			ids = append(ids, h.PolicyID)
		}
	}
	return ids
}

// CustomerRegistration is the sign-up payload of a customer.
type CustomerRegistration struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	Address  string `json:"address"`
	Password string `json:"password" binding:"required,min=8"`
}
