package gateway

import (
	"context"
	"net/http"
)

// Gateway is the payment processor capability the billing core depends on.
// Amounts are in minor currency units.
type Gateway interface {
	Provider() string
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	CreatePaymentLink(ctx context.Context, req PaymentLinkRequest) (*PaymentLink, error)
	CreateSubscription(ctx context.Context, req SubscriptionRequest) (*Subscription, error)
	FetchSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)
	// CreateCustomer fails with an error marked ErrCustomerExists when the
	// gateway already holds a customer with the same email or phone.
	CreateCustomer(ctx context.Context, req CustomerRequest) (*Customer, error)
	// ListCustomers returns one page of gateway customers.
	ListCustomers(ctx context.Context, count, skip int) ([]Customer, error)
	// ParseWebhook verifies the delivery signature and normalizes the payload.
	ParseWebhook(payload []byte, headers http.Header) (*WebhookEvent, error)
}

type OrderRequest struct {
	AmountMinor int64
	Currency    string
	Receipt     string
	Notes       map[string]string
}

type Order struct {
	ID          string
	AmountMinor int64
	Status      string
}

type PaymentLinkRequest struct {
	AmountMinor   int64
	Currency      string
	Description   string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	ExpireBy      int64
	Notes         map[string]string
}

type PaymentLink struct {
	ID       string
	ShortURL string
}

type SubscriptionRequest struct {
	CustomerID  string
	TotalCount  int
	Notes       map[string]string
	NotifyEmail string
}

// Subscription statuses after normalization.
const (
	SubscriptionCreated       = "created"
	SubscriptionAuthenticated = "authenticated"
	SubscriptionActive        = "active"
	SubscriptionPending       = "pending"
	SubscriptionHalted        = "halted"
	SubscriptionCancelled     = "cancelled"
	SubscriptionCompleted     = "completed"
)

type Subscription struct {
	ID         string
	Status     string
	CustomerID string
	ShortURL   string
	Notes      map[string]string
}

// Cancellable reports whether the gateway would still charge this
// subscription.
func (s *Subscription) Cancellable() bool {
	switch s.Status {
	case SubscriptionActive, SubscriptionPending, SubscriptionAuthenticated, SubscriptionCreated:
		return true
	}
	return false
}

type CustomerRequest struct {
	Name  string
	Email string
	Phone string
	Notes map[string]string
}

type Customer struct {
	ID    string
	Name  string
	Email string
	Phone string
}

// EventType is a normalized webhook event name.
type EventType string

const (
	EventSubscriptionCharged   EventType = "subscription.charged"
	EventSubscriptionCancelled EventType = "subscription.cancelled"
	EventPaymentCaptured       EventType = "payment.captured"
	EventPaymentFailed         EventType = "payment.failed"
)

// Note keys written on gateway objects and read back from webhooks.
const (
	NoteCustomerID  = "customerId"
	NoteInvoiceID   = "invoiceId"
	NoteOrderID     = "orderId"
	NotePolicyID    = "policyId"
	NotePolicyIDs   = "policyIds"
	NotePolicyNames = "policyNames"
	NoteAmount      = "amount"
)

// WebhookEvent is a gateway callback reduced to the fields the billing core
// correlates on.
type WebhookEvent struct {
	ID             string
	Provider       string
	Type           EventType
	RawType        string
	OrderID        string
	PaymentID      string
	SubscriptionID string
	AmountMinor    int64
	Notes          map[string]string
}
