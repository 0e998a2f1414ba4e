package insurer

import (
	"context"
	"strings"
	"time"

	ierr "insurepay/errors"
	"insurepay/models"
	"insurepay/services/auth"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

func (s *DefaultInsurerService) Register(ctx context.Context, req models.InsurerRegistration) (*models.Insurer, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, ierr.WithError(err).WithHint("Could not secure password").Mark(ierr.ErrSystem)
	}
	ins := &models.Insurer{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, ins); err != nil {
		return nil, err
	}
	s.Logger.Info("Insurer registered", zap.String("insurerId", ins.ID))
	return ins, nil
}

func (s *DefaultInsurerService) GetInsurer(ctx context.Context, id string) (*models.Insurer, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *DefaultInsurerService) ListInsurers(ctx context.Context) ([]models.Insurer, error) {
	return s.Repo.GetAll(ctx)
}

func (s *DefaultInsurerService) CreatePolicy(ctx context.Context, insurerID string, req models.CreatePolicyRequest) (*models.Policy, error) {
	if _, err := s.Repo.GetByID(ctx, insurerID); err != nil {
		return nil, err
	}
	if req.MonthlyPremium <= 0 || req.DurationMonths < 1 {
		return nil, ierr.NewError("invalid policy terms").
			WithHint("Monthly premium must be positive and duration at least one month").
			Mark(ierr.ErrValidation)
	}

	p := &models.Policy{
		ID:             uuid.New().String(),
		Name:           strings.TrimSpace(req.Name),
		InsurerID:      insurerID,
		Type:           strings.ToLower(strings.TrimSpace(req.Type)),
		CoverageAmount: req.CoverageAmount,
		MonthlyPremium: req.MonthlyPremium,
		DurationMonths: req.DurationMonths,
		Active:         true,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.Policies.Create(ctx, p); err != nil {
		return nil, err
	}
	s.Logger.Info("Policy created", zap.String("insurerId", insurerID), zap.String("policyId", p.ID), zap.String("type", p.Type))
	return p, nil
}

func (s *DefaultInsurerService) ListPolicies(ctx context.Context, insurerID string) ([]models.Policy, error) {
	return s.Policies.ListByInsurer(ctx, insurerID)
}

// SetTaxRate configures the GST rate applied to new invoices for a policy type.
func (s *DefaultInsurerService) SetTaxRate(ctx context.Context, req models.SetTaxRateRequest) (*models.TaxRate, error) {
	if req.GSTRate < 0 || req.GSTRate > 1 {
		return nil, ierr.NewErrorf("gst rate %v out of range", req.GSTRate).
			WithHint("GST rate must be a fraction between 0 and 1").
			Mark(ierr.ErrValidation)
	}
	rate := &models.TaxRate{
		PolicyType: strings.ToLower(strings.TrimSpace(req.PolicyType)),
		GSTRate:    req.GSTRate,
		UpdatedAt:  time.Now().UTC(),
	}
	if rate.PolicyType == "" {
		return nil, ierr.NewError("policy type required").WithHint("Policy type is required").Mark(ierr.ErrValidation)
	}
	if err := s.Policies.UpsertTaxRate(ctx, rate); err != nil {
		return nil, err
	}
	return rate, nil
}

func (s *DefaultInsurerService) ListTaxRates(ctx context.Context) ([]models.TaxRate, error) {
	return s.Policies.ListTaxRates(ctx)
}

func (s *DefaultInsurerService) ListCustomers(ctx context.Context, insurerID string) ([]models.Customer, error) {
	policies, err := s.Policies.ListByInsurer(ctx, insurerID)
	if err != nil {
		return nil, err
	}
	if len(policies) == 0 {
		return []models.Customer{}, nil
	}
	ids := lo.Map(policies, func(p models.Policy, _ int) string { return p.ID })
	return s.Customers.ListByPolicyIDs(ctx, ids)
}
