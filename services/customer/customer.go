package customer

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

func (s *DefaultCustomerService) Register(ctx context.Context, req models.CustomerRegistration) (*models.Customer, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || strings.TrimSpace(req.Name) == "" {
		return nil, ierr.NewError("name and email are required").
			WithHint("Name and email are required").
			Mark(ierr.ErrValidation)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, ierr.WithError(err).WithHint("Could not secure password").Mark(ierr.ErrSystem)
	}

	now := time.Now().UTC()
	c := &models.Customer{
		ID:             uuid.New().String(),
		Name:           strings.TrimSpace(req.Name),
		Email:          email,
		Phone:          strings.TrimSpace(req.Phone),
		Address:        req.Address,
		PasswordHash:   hash,
		PolicyIDs:      []string{},
		PaymentHistory: []models.PaymentHistory{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.Repo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.Logger.Info("Customer registered", zap.String("customerId", c.ID))
	return c, nil
}

func (s *DefaultCustomerService) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *DefaultCustomerService) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return s.Repo.GetAll(ctx)
}

func (s *DefaultCustomerService) SearchCustomers(ctx context.Context, name string) ([]models.Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ierr.NewError("empty search").WithHint("Search term is required").Mark(ierr.ErrValidation)
	}
	return s.Repo.SearchByName(ctx, name)
}

// AddPolicies attaches existing policies to the customer. Already owned ids
// are ignored.
func (s *DefaultCustomerService) AddPolicies(ctx context.Context, customerID string, policyIDs []string) (*models.Customer, error) {
	policyIDs = lo.Uniq(lo.Compact(policyIDs))
	if len(policyIDs) == 0 {
		return nil, ierr.NewError("no policy ids").WithHint("At least one policy id is required").Mark(ierr.ErrValidation)
	}
	c, err := s.Repo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	found, err := s.Policies.GetByIDs(ctx, policyIDs)
	if err != nil {
		return nil, err
	}
	if missing, _ := lo.Difference(policyIDs, lo.Map(found, func(p models.Policy, _ int) string { return p.ID })); len(missing) > 0 {
		return nil, ierr.NewErrorf("policies not found: %s", strings.Join(missing, ", ")).
			WithHintf("Policy %s not found", missing[0]).
			Mark(ierr.ErrNotFound)
	}
	if inactive, ok := lo.Find(found, func(p models.Policy) bool { return !p.Active }); ok {
		return nil, ierr.NewErrorf("policy %s is not active", inactive.ID).
			WithHintf("Policy %s is not active", inactive.ID).
			Mark(ierr.ErrInvalidOperation)
	}

	added := lo.Filter(policyIDs, func(id string, _ int) bool { return !c.OwnsPolicy(id) })
	if len(added) == 0 {
		return c, nil
	}
	c.PolicyIDs = append(c.PolicyIDs, added...)
	c.UpdatedAt = time.Now().UTC()
	if err := s.Repo.Save(ctx, c); err != nil {
		return nil, err
	}
	s.Logger.Info("Policies added to customer", zap.String("customerId", c.ID), zap.Strings("policyIds", added))
	return c, nil
}

func (s *DefaultCustomerService) PaymentHistory(ctx context.Context, customerID string) ([]models.PaymentHistory, error) {
	c, err := s.Repo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return c.PaymentHistory, nil
}

func (s *DefaultCustomerService) ListAvailablePolicies(ctx context.Context) ([]models.Policy, error) {
	return s.Policies.ListActive(ctx)
}
