package models

import "time"

// Policy is an insurance product issued by an insurer. Policies are not
// modified after creation.
type Policy struct {
	ID             string    `bson:"id" json:"id"`
	Name           string    `bson:"name" json:"name"`
	InsurerID      string    `bson:"insurerId" json:"insurerId"`
	Type           string    `bson:"type" json:"type"`
	CoverageAmount float64   `bson:"coverageAmount" json:"coverageAmount"`
	MonthlyPremium float64   `bson:"monthlyPremium" json:"monthlyPremium"`
	DurationMonths int       `bson:"durationMonths" json:"durationMonths"`
	Active         bool      `bson:"active" json:"active"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
}

// TaxRate is the GST rate applied to premiums of a policy type.
type TaxRate struct {
	PolicyType string    `bson:"policyType" json:"policyType"`
	GSTRate    float64   `bson:"gstRate" json:"gstRate"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}

// CreatePolicyRequest is the payload an insurer submits to issue a policy.
type CreatePolicyRequest struct {
	Name           string  `json:"name" binding:"required"`
	Type           string  `json:"type" binding:"required"`
	CoverageAmount float64 `json:"coverageAmount" binding:"required,gt=0"`
	MonthlyPremium float64 `json:"monthlyPremium" binding:"required,gt=0"`
	DurationMonths int     `json:"durationMonths" binding:"required,min=1"`
}

// SetTaxRateRequest configures the GST rate for a policy type.
type SetTaxRateRequest struct {
	PolicyType string  `json:"policyType" binding:"required"`
	GSTRate    float64 `json:"gstRate" binding:"gstrate"`
}
