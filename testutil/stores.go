package testutil

import (
	"context"
	"strings"
	"time"

	ierr "insurepay/errors"
	"insurepay/models"

	"github.com/samber/lo"
)

// InMemoryCustomerStore implements customerRepo.CustomerRepository.
type InMemoryCustomerStore struct {
	*InMemoryStore[models.Customer]
}

func NewInMemoryCustomerStore() *InMemoryCustomerStore {
	return &InMemoryCustomerStore{InMemoryStore: NewInMemoryStore(copyCustomer)}
}

func copyCustomer(c models.Customer) models.Customer {
	c.PolicyIDs = append([]string(nil), c.PolicyIDs...)
	history := make([]models.PaymentHistory, len(c.PaymentHistory))
	for i, h := range c.PaymentHistory {
		h.LastPaidDate = copyTime(h.LastPaidDate)
		h.ValidUntil = copyTime(h.ValidUntil)
		history[i] = h
	}
	c.PaymentHistory = history
	return c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func (s *InMemoryCustomerStore) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	c, err := s.Get(ctx, "customer", id)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *InMemoryCustomerStore) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	c, err := s.Find(ctx, "customer", email, func(c models.Customer) bool {
		return strings.EqualFold(c.Email, email)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *InMemoryCustomerStore) GetAll(ctx context.Context) ([]models.Customer, error) {
	return s.List(ctx, nil), nil
}

func (s *InMemoryCustomerStore) SearchByName(ctx context.Context, fragment string) ([]models.Customer, error) {
	fragment = strings.ToLower(fragment)
	return s.List(ctx, func(c models.Customer) bool {
		return strings.Contains(strings.ToLower(c.Name), fragment)
	}), nil
}

func (s *InMemoryCustomerStore) ListByPolicyIDs(ctx context.Context, policyIDs []string) ([]models.Customer, error) {
	return s.List(ctx, func(c models.Customer) bool {
		return len(lo.Intersect(c.PolicyIDs, policyIDs)) > 0
	}), nil
}

func (s *InMemoryCustomerStore) Create(ctx context.Context, c *models.Customer) error {
	if _, err := s.GetByEmail(ctx, c.Email); err == nil {
		return ierr.NewErrorf("customer %s already exists", c.Email).
			WithHintf("customer %s already exists", c.Email).
			Mark(ierr.ErrAlreadyExists)
	}
	return s.InMemoryStore.Create(ctx, "customer", c.ID, *c)
}

func (s *InMemoryCustomerStore) Save(ctx context.Context, c *models.Customer) error {
	return s.Update(ctx, "customer", c.ID, *c)
}

// InMemoryInsurerStore implements insurerRepo.InsurerRepository.
type InMemoryInsurerStore struct {
	*InMemoryStore[models.Insurer]
}

func NewInMemoryInsurerStore() *InMemoryInsurerStore {
	return &InMemoryInsurerStore{InMemoryStore: NewInMemoryStore(func(i models.Insurer) models.Insurer { return i })}
}

func (s *InMemoryInsurerStore) GetByID(ctx context.Context, id string) (*models.Insurer, error) {
	i, err := s.Get(ctx, "insurer", id)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (s *InMemoryInsurerStore) GetByEmail(ctx context.Context, email string) (*models.Insurer, error) {
	i, err := s.Find(ctx, "insurer", email, func(i models.Insurer) bool {
		return strings.EqualFold(i.Email, email)
	})
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (s *InMemoryInsurerStore) GetAll(ctx context.Context) ([]models.Insurer, error) {
	return s.List(ctx, nil), nil
}

func (s *InMemoryInsurerStore) Create(ctx context.Context, i *models.Insurer) error {
	if _, err := s.GetByEmail(ctx, i.Email); err == nil {
		return ierr.NewErrorf("insurer %s already exists", i.Email).
			WithHintf("insurer %s already exists", i.Email).
			Mark(ierr.ErrAlreadyExists)
	}
	return s.InMemoryStore.Create(ctx, "insurer", i.ID, *i)
}

// InMemoryPolicyStore implements policyRepo.PolicyRepository.
type InMemoryPolicyStore struct {
	*InMemoryStore[models.Policy]
	rates *InMemoryStore[models.TaxRate]
}

func NewInMemoryPolicyStore() *InMemoryPolicyStore {
	return &InMemoryPolicyStore{
		InMemoryStore: NewInMemoryStore(func(p models.Policy) models.Policy { return p }),
		rates:         NewInMemoryStore(func(r models.TaxRate) models.TaxRate { return r }),
	}
}

func (s *InMemoryPolicyStore) GetByID(ctx context.Context, id string) (*models.Policy, error) {
	p, err := s.Get(ctx, "policy", id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *InMemoryPolicyStore) GetByIDs(ctx context.Context, ids []string) ([]models.Policy, error) {
	return s.List(ctx, func(p models.Policy) bool { return lo.Contains(ids, p.ID) }), nil
}

func (s *InMemoryPolicyStore) ListByInsurer(ctx context.Context, insurerID string) ([]models.Policy, error) {
	return s.List(ctx, func(p models.Policy) bool { return p.InsurerID == insurerID }), nil
}

func (s *InMemoryPolicyStore) ListActive(ctx context.Context) ([]models.Policy, error) {
	return s.List(ctx, func(p models.Policy) bool { return p.Active }), nil
}

func (s *InMemoryPolicyStore) Create(ctx context.Context, p *models.Policy) error {
	return s.InMemoryStore.Create(ctx, "policy", p.ID, *p)
}

func (s *InMemoryPolicyStore) GetTaxRate(ctx context.Context, policyType string) (*models.TaxRate, error) {
	r, err := s.rates.Get(ctx, "tax rate for policy type", policyType)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *InMemoryPolicyStore) UpsertTaxRate(ctx context.Context, rate *models.TaxRate) error {
	s.rates.Upsert(ctx, rate.PolicyType, *rate)
	return nil
}

func (s *InMemoryPolicyStore) ListTaxRates(ctx context.Context) ([]models.TaxRate, error) {
	return s.rates.List(ctx, nil), nil
}

// InMemoryInvoiceStore implements invoiceRepo.InvoiceRepository.
type InMemoryInvoiceStore struct {
	*InMemoryStore[models.Invoice]
}

func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{InMemoryStore: NewInMemoryStore(func(i models.Invoice) models.Invoice {
		i.PolicyIDs = append([]string(nil), i.PolicyIDs...)
		i.TaxBreakdown = append([]models.TaxBreakdown(nil), i.TaxBreakdown...)
		return i
	})}
}

func (s *InMemoryInvoiceStore) GetByID(ctx context.Context, id string) (*models.Invoice, error) {
	i, err := s.Get(ctx, "invoice", id)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (s *InMemoryInvoiceStore) GetByGatewayOrderID(ctx context.Context, orderID string) (*models.Invoice, error) {
	i, err := s.Find(ctx, "invoice for order", orderID, func(i models.Invoice) bool {
		return i.GatewayOrderID == orderID
	})
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (s *InMemoryInvoiceStore) ListByCustomerAndStatusIn(ctx context.Context, customerID string, statuses []models.InvoiceStatus) ([]models.Invoice, error) {
	return s.List(ctx, func(i models.Invoice) bool {
		return i.CustomerID == customerID && (len(statuses) == 0 || lo.Contains(statuses, i.Status))
	}), nil
}

func (s *InMemoryInvoiceStore) ListByInsurer(ctx context.Context, insurerID string) ([]models.Invoice, error) {
	return s.List(ctx, func(i models.Invoice) bool { return i.InsurerID == insurerID }), nil
}

func (s *InMemoryInvoiceStore) Create(ctx context.Context, i *models.Invoice) error {
	return s.InMemoryStore.Create(ctx, "invoice", i.ID, *i)
}

func (s *InMemoryInvoiceStore) Save(ctx context.Context, i *models.Invoice) error {
	return s.Update(ctx, "invoice", i.ID, *i)
}

// InMemoryPaymentStore implements paymentRepo.PaymentRepository, including
// the unique gateway payment id constraint.
type InMemoryPaymentStore struct {
	*InMemoryStore[models.Payment]

	// CreateErr makes Create fail without storing anything.
	CreateErr error
}

func NewInMemoryPaymentStore() *InMemoryPaymentStore {
	return &InMemoryPaymentStore{InMemoryStore: NewInMemoryStore(func(p models.Payment) models.Payment {
		p.PolicyIDs = append([]string(nil), p.PolicyIDs...)
		p.PolicyNames = append([]string(nil), p.PolicyNames...)
		p.TaxBreakdown = append([]models.TaxBreakdown(nil), p.TaxBreakdown...)
		return p
	})}
}

func (s *InMemoryPaymentStore) Create(ctx context.Context, p *models.Payment) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	if p.GatewayPaymentID != "" {
		if _, err := s.GetByGatewayPaymentID(ctx, p.GatewayPaymentID); err == nil {
			return ierr.NewErrorf("payment %s already exists", p.GatewayPaymentID).
				WithHintf("payment %s already exists", p.GatewayPaymentID).
				Mark(ierr.ErrAlreadyExists)
		}
	}
	return s.InMemoryStore.Create(ctx, "payment", p.ID, *p)
}

func (s *InMemoryPaymentStore) GetByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*models.Payment, error) {
	p, err := s.Find(ctx, "payment", gatewayPaymentID, func(p models.Payment) bool {
		return p.GatewayPaymentID == gatewayPaymentID
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *InMemoryPaymentStore) ListByCustomer(ctx context.Context, customerID string) ([]models.Payment, error) {
	return s.List(ctx, func(p models.Payment) bool { return p.CustomerID == customerID }), nil
}

func (s *InMemoryPaymentStore) ListByInvoice(ctx context.Context, invoiceID string) ([]models.Payment, error) {
	return s.List(ctx, func(p models.Payment) bool { return p.InvoiceID != nil && *p.InvoiceID == invoiceID }), nil
}
