package testutil

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	ierr "insurepay/errors"
	"insurepay/services/gateway"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// FakeGateway is an in-memory gateway.Gateway. Set the *Err fields to make
// the matching call fail.
type FakeGateway struct {
	mu sync.Mutex

	Orders        []gateway.OrderRequest
	Links         []gateway.PaymentLinkRequest
	Subscriptions map[string]*gateway.Subscription
	Customers     []gateway.Customer
	Cancelled     []string
	ListCalls     int

	CreateOrderErr        error
	CreatePaymentLinkErr  error
	CreateSubscriptionErr error
	// CustomerExists makes CreateCustomer fail with a duplicate error.
	CustomerExists bool
	// Event is returned by ParseWebhook; WebhookErr takes precedence.
	Event      *gateway.WebhookEvent
	WebhookErr error

	seq int
}

var _ gateway.Gateway = (*FakeGateway)(nil)

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{Subscriptions: make(map[string]*gateway.Subscription)}
}

func (g *FakeGateway) next(prefix string) string {
	g.seq++
	return fmt.Sprintf("%s_%d", prefix, g.seq)
}

func (g *FakeGateway) Provider() string { return gateway.ProviderRazorpay }

func (g *FakeGateway) CreateOrder(_ context.Context, req gateway.OrderRequest) (*gateway.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.CreateOrderErr != nil {
		return nil, g.CreateOrderErr
	}
	g.Orders = append(g.Orders, req)
	return &gateway.Order{ID: g.next("order"), AmountMinor: req.AmountMinor, Status: "created"}, nil
}

func (g *FakeGateway) CreatePaymentLink(_ context.Context, req gateway.PaymentLinkRequest) (*gateway.PaymentLink, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.CreatePaymentLinkErr != nil {
		return nil, g.CreatePaymentLinkErr
	}
	g.Links = append(g.Links, req)
	id := g.next("plink")
	return &gateway.PaymentLink{ID: id, ShortURL: "https://pay.test/" + id}, nil
}

func (g *FakeGateway) CreateSubscription(_ context.Context, req gateway.SubscriptionRequest) (*gateway.Subscription, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.CreateSubscriptionErr != nil {
		return nil, g.CreateSubscriptionErr
	}
	id := g.next("sub")
	sub := &gateway.Subscription{
		ID:         id,
		Status:     gateway.SubscriptionCreated,
		CustomerID: req.CustomerID,
		ShortURL:   "https://pay.test/" + id,
		Notes:      lo.Assign(map[string]string{}, req.Notes),
	}
	g.Subscriptions[id] = sub
	cp := *sub
	return &cp, nil
}

// AddSubscription registers a subscription as if created out of band.
func (g *FakeGateway) AddSubscription(sub gateway.Subscription) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Subscriptions[sub.ID] = &sub
}

func (g *FakeGateway) FetchSubscription(_ context.Context, id string) (*gateway.Subscription, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	sub, ok := g.Subscriptions[id]
	if !ok {
		return nil, ierr.NewErrorf("subscription %s not found", id).
			WithHint("payment gateway failed to fetch subscription").
			Mark(ierr.ErrGateway)
	}
	cp := *sub
	return &cp, nil
}

func (g *FakeGateway) CancelSubscription(_ context.Context, id string) (*gateway.Subscription, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	sub, ok := g.Subscriptions[id]
	if !ok {
		return nil, ierr.NewErrorf("subscription %s not found", id).Mark(ierr.ErrGateway)
	}
	sub.Status = gateway.SubscriptionCancelled
	g.Cancelled = append(g.Cancelled, id)
	cp := *sub
	return &cp, nil
}

func (g *FakeGateway) CreateCustomer(_ context.Context, req gateway.CustomerRequest) (*gateway.Customer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.CustomerExists {
		return nil, errors.Mark(ierr.NewError("customer already exists for the merchant").Mark(ierr.ErrGateway), gateway.ErrCustomerExists)
	}
	c := gateway.Customer{ID: g.next("cust"), Name: req.Name, Email: req.Email, Phone: req.Phone}
	g.Customers = append(g.Customers, c)
	return &c, nil
}

func (g *FakeGateway) ListCustomers(_ context.Context, count, skip int) ([]gateway.Customer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ListCalls++
	if skip >= len(g.Customers) {
		return nil, nil
	}
	end := min(skip+count, len(g.Customers))
	return append([]gateway.Customer(nil), g.Customers[skip:end]...), nil
}

func (g *FakeGateway) ParseWebhook(_ []byte, _ http.Header) (*gateway.WebhookEvent, error) {
	if g.WebhookErr != nil {
		return nil, g.WebhookErr
	}
	if g.Event == nil {
		return &gateway.WebhookEvent{Provider: gateway.ProviderRazorpay, RawType: "unknown"}, nil
	}
	return g.Event, nil
}
