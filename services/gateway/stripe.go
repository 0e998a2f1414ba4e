package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	ierr "insurepay/errors"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

const (
	ProviderStripe        = "stripe"
	stripeSignatureHeader = "Stripe-Signature"
)

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	PlanPriceID   string
}

// StripeGateway implements Gateway on Stripe. Orders map to payment intents
// and note maps to metadata.
type StripeGateway struct {
	api    *client.API
	config StripeConfig
	logger *zap.Logger
}

func NewStripeGateway(cfg StripeConfig, logger *zap.Logger) *StripeGateway {
	return &StripeGateway{
		api:    client.New(cfg.SecretKey, nil),
		config: cfg,
		logger: logger,
	}
}

func (g *StripeGateway) Provider() string { return ProviderStripe }

func (g *StripeGateway) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(req.AmountMinor),
		Currency:    stripe.String(strings.ToLower(req.Currency)),
		Description: stripe.String(req.Receipt),
	}
	params.Context = ctx
	for k, v := range req.Notes {
		params.AddMetadata(k, v)
	}
	params.AddMetadata("receipt", req.Receipt)

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		g.logger.Error("failed to create payment intent in Stripe", zap.String("receipt", req.Receipt), zap.Error(err))
		return nil, gatewayError(err, "create order", map[string]any{"receipt": req.Receipt})
	}
	return &Order{ID: pi.ID, AmountMinor: pi.Amount, Status: string(pi.Status)}, nil
}

func (g *StripeGateway) CreatePaymentLink(ctx context.Context, req PaymentLinkRequest) (*PaymentLink, error) {
	priceParams := &stripe.PriceParams{
		Currency:   stripe.String(strings.ToLower(req.Currency)),
		UnitAmount: stripe.Int64(req.AmountMinor),
		ProductData: &stripe.PriceProductDataParams{
			Name: stripe.String(req.Description),
		},
	}
	priceParams.Context = ctx
	price, err := g.api.Prices.New(priceParams)
	if err != nil {
		return nil, gatewayError(err, "create payment link", map[string]any{"step": "price"})
	}

	params := &stripe.PaymentLinkParams{
		LineItems: []*stripe.PaymentLinkLineItemParams{
			{Price: stripe.String(price.ID), Quantity: stripe.Int64(1)},
		},
		PaymentIntentData: &stripe.PaymentLinkPaymentIntentDataParams{
			Metadata: req.Notes,
		},
	}
	params.Context = ctx
	for k, v := range req.Notes {
		params.AddMetadata(k, v)
	}

	link, err := g.api.PaymentLinks.New(params)
	if err != nil {
		g.logger.Error("failed to create payment link in Stripe", zap.Error(err))
		return nil, gatewayError(err, "create payment link", nil)
	}
	return &PaymentLink{ID: link.ID, ShortURL: link.URL}, nil
}

func (g *StripeGateway) CreateSubscription(ctx context.Context, req SubscriptionRequest) (*Subscription, error) {
	params := &stripe.SubscriptionParams{
		Customer: stripe.String(req.CustomerID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(g.config.PlanPriceID)},
		},
		PaymentBehavior: stripe.String("default_incomplete"),
	}
	if req.TotalCount > 0 {
		params.CancelAt = stripe.Int64(time.Now().AddDate(0, req.TotalCount, 0).Unix())
	}
	params.Context = ctx
	for k, v := range req.Notes {
		params.AddMetadata(k, v)
	}

	sub, err := g.api.Subscriptions.New(params)
	if err != nil {
		g.logger.Error("failed to create subscription in Stripe", zap.String("customer_id", req.CustomerID), zap.Error(err))
		return nil, gatewayError(err, "create subscription", map[string]any{"customer_id": req.CustomerID})
	}
	return toStripeSubscription(sub), nil
}

func (g *StripeGateway) FetchSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	sub, err := g.api.Subscriptions.Get(subscriptionID, params)
	if err != nil {
		return nil, gatewayError(err, "fetch subscription", map[string]any{"subscription_id": subscriptionID})
	}
	return toStripeSubscription(sub), nil
}

func (g *StripeGateway) CancelSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	params := &stripe.SubscriptionCancelParams{}
	params.Context = ctx
	sub, err := g.api.Subscriptions.Cancel(subscriptionID, params)
	if err != nil {
		return nil, gatewayError(err, "cancel subscription", map[string]any{"subscription_id": subscriptionID})
	}
	return toStripeSubscription(sub), nil
}

func (g *StripeGateway) CreateCustomer(ctx context.Context, req CustomerRequest) (*Customer, error) {
	params := &stripe.CustomerParams{
		Name:  stripe.String(req.Name),
		Email: stripe.String(req.Email),
		Phone: stripe.String(req.Phone),
	}
	params.Context = ctx
	for k, v := range req.Notes {
		params.AddMetadata(k, v)
	}
	c, err := g.api.Customers.New(params)
	if err != nil {
		if isAlreadyExists(err) {
			return nil, customerExistsError(err)
		}
		return nil, gatewayError(err, "create customer", nil)
	}
	return &Customer{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone}, nil
}

// ListCustomers walks the cursor-paginated listing to emulate offset paging.
func (g *StripeGateway) ListCustomers(ctx context.Context, count, skip int) ([]Customer, error) {
	params := &stripe.CustomerListParams{}
	params.Context = ctx
	params.Limit = stripe.Int64(int64(count))

	iter := g.api.Customers.List(params)
	customers := make([]Customer, 0, count)
	seen := 0
	for iter.Next() && len(customers) < count {
		c := iter.Customer()
		seen++
		if seen <= skip {
			continue
		}
		customers = append(customers, Customer{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone})
	}
	if err := iter.Err(); err != nil {
		return nil, gatewayError(err, "list customers", map[string]any{"skip": skip})
	}
	return customers, nil
}

func (g *StripeGateway) ParseWebhook(payload []byte, headers http.Header) (*WebhookEvent, error) {
	evt, err := webhook.ConstructEventWithOptions(payload, headers.Get(stripeSignatureHeader), g.config.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		g.logger.Error("stripe webhook verification failed", zap.Error(err))
		return nil, invalidSignature(ProviderStripe)
	}

	out := &WebhookEvent{ID: evt.ID, Provider: ProviderStripe, RawType: string(evt.Type), Notes: map[string]string{}}
	switch evt.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(evt.Data.Raw, &pi); err != nil {
			return nil, malformed(err)
		}
		out.Type = EventPaymentCaptured
		if evt.Type == "payment_intent.payment_failed" {
			out.Type = EventPaymentFailed
		}
		out.OrderID = pi.ID
		out.PaymentID = pi.ID
		if pi.LatestCharge != nil && pi.LatestCharge.ID != "" {
			out.PaymentID = pi.LatestCharge.ID
		}
		out.AmountMinor = pi.Amount
		for k, v := range pi.Metadata {
			out.Notes[k] = v
		}
	case "invoice.paid":
		var inv stripe.Invoice
		if err := json.Unmarshal(evt.Data.Raw, &inv); err != nil {
			return nil, malformed(err)
		}
		if inv.Subscription == nil {
			out.RawType = "invoice.paid.one_off"
			return out, nil
		}
		out.Type = EventSubscriptionCharged
		out.SubscriptionID = inv.Subscription.ID
		out.PaymentID = inv.ID
		if inv.PaymentIntent != nil && inv.PaymentIntent.ID != "" {
			out.PaymentID = inv.PaymentIntent.ID
		}
		out.AmountMinor = inv.AmountPaid
	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(evt.Data.Raw, &sub); err != nil {
			return nil, malformed(err)
		}
		out.Type = EventSubscriptionCancelled
		out.SubscriptionID = sub.ID
		for k, v := range sub.Metadata {
			out.Notes[k] = v
		}
	}
	return out, nil
}

func malformed(err error) error {
	return ierr.WithError(err).WithHint("Malformed webhook payload").Mark(ierr.ErrValidation)
}

func toStripeSubscription(sub *stripe.Subscription) *Subscription {
	out := &Subscription{
		ID:     sub.ID,
		Status: stripeSubscriptionStatus(sub.Status),
		Notes:  map[string]string{},
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	for k, v := range sub.Metadata {
		out.Notes[k] = v
	}
	return out
}

func stripeSubscriptionStatus(s stripe.SubscriptionStatus) string {
	switch s {
	case stripe.SubscriptionStatusActive:
		return SubscriptionActive
	case stripe.SubscriptionStatusIncomplete, stripe.SubscriptionStatusTrialing, stripe.SubscriptionStatusPastDue:
		return SubscriptionPending
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusIncompleteExpired:
		return SubscriptionCancelled
	case stripe.SubscriptionStatusUnpaid, stripe.SubscriptionStatusPaused:
		return SubscriptionHalted
	}
	return string(s)
}
