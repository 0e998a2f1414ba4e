package gateway

import (
	"context"
	"fmt"
	"strings"

	razorpay "github.com/razorpay/razorpay-go"
	"go.uber.org/zap"
)

const ProviderRazorpay = "razorpay"

// RazorpayConfig holds the credentials and plan used by RazorpayGateway.
type RazorpayConfig struct {
	KeyID         string
	SecretKey     string
	WebhookSecret string
	PlanID        string
}

// RazorpayGateway implements Gateway with the Razorpay SDK.
type RazorpayGateway struct {
	client *razorpay.Client
	config RazorpayConfig
	logger *zap.Logger
}

func NewRazorpayGateway(cfg RazorpayConfig, logger *zap.Logger) *RazorpayGateway {
	return &RazorpayGateway{
		client: razorpay.NewClient(cfg.KeyID, cfg.SecretKey),
		config: cfg,
		logger: logger,
	}
}

func (g *RazorpayGateway) Provider() string { return ProviderRazorpay }

func (g *RazorpayGateway) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	data := map[string]interface{}{
		"amount":   req.AmountMinor,
		"currency": req.Currency,
		"receipt":  req.Receipt,
		"notes":    req.Notes,
	}
	order, err := g.client.Order.Create(data, nil)
	if err != nil {
		g.logger.Error("failed to create order in Razorpay", zap.String("receipt", req.Receipt), zap.Error(err))
		return nil, gatewayError(err, "create order", map[string]any{"receipt": req.Receipt})
	}

	g.logger.Info("created order in Razorpay", zap.Any("order_id", order["id"]))
	return &Order{
		ID:          stringField(order, "id"),
		AmountMinor: int64Field(order, "amount"),
		Status:      stringField(order, "status"),
	}, nil
}

func (g *RazorpayGateway) CreatePaymentLink(ctx context.Context, req PaymentLinkRequest) (*PaymentLink, error) {
	data := map[string]interface{}{
		"amount":          req.AmountMinor,
		"currency":        req.Currency,
		"accept_partial":  false,
		"description":     req.Description,
		"reminder_enable": true,
		"notes":           req.Notes,
		"customer": map[string]interface{}{
			"name":    req.CustomerName,
			"email":   req.CustomerEmail,
			"contact": req.CustomerPhone,
		},
		"notify": map[string]interface{}{
			"sms":   req.CustomerPhone != "",
			"email": req.CustomerEmail != "",
		},
	}
	if req.ExpireBy > 0 {
		data["expire_by"] = req.ExpireBy
	}

	link, err := g.client.PaymentLink.Create(data, nil)
	if err != nil {
		g.logger.Error("failed to create payment link in Razorpay", zap.Error(err))
		return nil, gatewayError(err, "create payment link", nil)
	}

	g.logger.Info("created payment link in Razorpay", zap.Any("payment_link_id", link["id"]))
	return &PaymentLink{
		ID:       stringField(link, "id"),
		ShortURL: stringField(link, "short_url"),
	}, nil
}

func (g *RazorpayGateway) CreateSubscription(ctx context.Context, req SubscriptionRequest) (*Subscription, error) {
	data := map[string]interface{}{
		"plan_id":         g.config.PlanID,
		"total_count":     req.TotalCount,
		"quantity":        1,
		"customer_notify": 1,
		"notes":           req.Notes,
	}
	if req.CustomerID != "" {
		data["customer_id"] = req.CustomerID
	}
	if req.NotifyEmail != "" {
		data["notify_info"] = map[string]interface{}{"notify_email": req.NotifyEmail}
	}

	sub, err := g.client.Subscription.Create(data, nil)
	if err != nil {
		g.logger.Error("failed to create subscription in Razorpay", zap.String("plan_id", g.config.PlanID), zap.Error(err))
		return nil, gatewayError(err, "create subscription", map[string]any{"plan_id": g.config.PlanID})
	}
	return toRazorpaySubscription(sub), nil
}

func (g *RazorpayGateway) FetchSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	sub, err := g.client.Subscription.Fetch(subscriptionID, nil, nil)
	if err != nil {
		return nil, gatewayError(err, "fetch subscription", map[string]any{"subscription_id": subscriptionID})
	}
	return toRazorpaySubscription(sub), nil
}

func (g *RazorpayGateway) CancelSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	sub, err := g.client.Subscription.Cancel(subscriptionID, map[string]interface{}{"cancel_at_cycle_end": 0}, nil)
	if err != nil {
		return nil, gatewayError(err, "cancel subscription", map[string]any{"subscription_id": subscriptionID})
	}
	g.logger.Info("cancelled subscription in Razorpay", zap.String("subscription_id", subscriptionID))
	return toRazorpaySubscription(sub), nil
}

func (g *RazorpayGateway) CreateCustomer(ctx context.Context, req CustomerRequest) (*Customer, error) {
	data := map[string]interface{}{
		"name":    req.Name,
		"email":   req.Email,
		"contact": req.Phone,
		"notes":   req.Notes,
	}
	c, err := g.client.Customer.Create(data, nil)
	if err != nil {
		if isAlreadyExists(err) {
			return nil, customerExistsError(err)
		}
		return nil, gatewayError(err, "create customer", nil)
	}
	return toRazorpayCustomer(c), nil
}

func (g *RazorpayGateway) ListCustomers(ctx context.Context, count, skip int) ([]Customer, error) {
	res, err := g.client.Customer.All(map[string]interface{}{"count": count, "skip": skip}, nil)
	if err != nil {
		return nil, gatewayError(err, "list customers", map[string]any{"skip": skip})
	}
	items, _ := res["items"].([]interface{})
	customers := make([]Customer, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]interface{}); ok {
			customers = append(customers, *toRazorpayCustomer(m))
		}
	}
	return customers, nil
}

func toRazorpaySubscription(m map[string]interface{}) *Subscription {
	return &Subscription{
		ID:         stringField(m, "id"),
		Status:     stringField(m, "status"),
		CustomerID: stringField(m, "customer_id"),
		ShortURL:   stringField(m, "short_url"),
		Notes:      notesField(m["notes"]),
	}
}

func toRazorpayCustomer(m map[string]interface{}) *Customer {
	return &Customer{
		ID:    stringField(m, "id"),
		Name:  stringField(m, "name"),
		Email: stringField(m, "email"),
		Phone: stringField(m, "contact"),
	}
}

func stringField(m map[string]interface{}, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func int64Field(m map[string]interface{}, key string) int64 {
	switch v := m[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

// notesField flattens Razorpay notes, which arrive as an object or, when
// empty, as an array.
func notesField(raw interface{}) map[string]string {
	notes := map[string]string{}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return notes
	}
	for k, v := range m {
		if v == nil {
			continue
		}
		notes[k] = strings.TrimSpace(fmt.Sprint(v))
	}
	return notes
}
