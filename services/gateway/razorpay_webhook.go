package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	ierr "insurepay/errors"

	"go.uber.org/zap"
)

const (
	razorpaySignatureHeader = "X-Razorpay-Signature"
	razorpayEventIDHeader   = "X-Razorpay-Event-Id"
)

type razorpayWebhookEvent struct {
	Entity    string                 `json:"entity"`
	AccountID string                 `json:"account_id"`
	Event     string                 `json:"event"`
	Contains  []string               `json:"contains"`
	Payload   razorpayWebhookPayload `json:"payload"`
	CreatedAt int64                  `json:"created_at"`
}

type razorpayWebhookPayload struct {
	Payment struct {
		Entity razorpayPayment `json:"entity"`
	} `json:"payment"`
	Subscription struct {
		Entity razorpaySubscription `json:"entity"`
	} `json:"subscription"`
}

type razorpayPayment struct {
	ID             string        `json:"id"`
	Amount         int64         `json:"amount"`
	Currency       string        `json:"currency"`
	Status         string        `json:"status"`
	OrderID        string        `json:"order_id"`
	InvoiceID      string        `json:"invoice_id"`
	Method         string        `json:"method"`
	Email          string        `json:"email"`
	Contact        string        `json:"contact"`
	ErrorCode      string        `json:"error_code"`
	ErrorReason    string        `json:"error_reason"`
	Notes          flexibleNotes `json:"notes"`
	SubscriptionID string        `json:"subscription_id"`
}

type razorpaySubscription struct {
	ID         string        `json:"id"`
	PlanID     string        `json:"plan_id"`
	CustomerID string        `json:"customer_id"`
	Status     string        `json:"status"`
	PaidCount  int           `json:"paid_count"`
	Notes      flexibleNotes `json:"notes"`
}

// flexibleNotes accepts both {} and [] because Razorpay sends an empty array
// for objects without notes.
type flexibleNotes map[string]interface{}

func (fn *flexibleNotes) UnmarshalJSON(data []byte) error {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err == nil {
		*fn = m
		return nil
	}
	var arr []interface{}
	if err := json.Unmarshal(data, &arr); err == nil {
		*fn = map[string]interface{}{}
		return nil
	}
	return fmt.Errorf("notes must be either object or array")
}

// VerifySignature checks the HMAC-SHA256 of payload against signature.
func (g *RazorpayGateway) VerifySignature(payload []byte, signature string) error {
	secret := g.config.WebhookSecret
	if secret == "" {
		g.logger.Warn("webhook secret not configured, using API secret key as fallback")
		secret = g.config.SecretKey
	}
	if !validHMAC(payload, signature, secret) {
		g.logger.Error("webhook signature mismatch",
			zap.Int("received_signature_length", len(signature)),
			zap.Int("payload_length", len(payload)))
		return invalidSignature(ProviderRazorpay)
	}
	return nil
}

func validHMAC(payload []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (g *RazorpayGateway) ParseWebhook(payload []byte, headers http.Header) (*WebhookEvent, error) {
	if err := g.VerifySignature(payload, headers.Get(razorpaySignatureHeader)); err != nil {
		return nil, err
	}
	event, err := parseRazorpayEvent(payload)
	if err != nil {
		return nil, err
	}
	event.ID = headers.Get(razorpayEventIDHeader)
	return event, nil
}

func parseRazorpayEvent(payload []byte) (*WebhookEvent, error) {
	var raw razorpayWebhookEvent
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Malformed webhook payload").
			Mark(ierr.ErrValidation)
	}

	payment := raw.Payload.Payment.Entity
	sub := raw.Payload.Subscription.Entity

	notes := notesField(map[string]interface{}(sub.Notes))
	for k, v := range notesField(map[string]interface{}(payment.Notes)) {
		notes[k] = v
	}

	subscriptionID := sub.ID
	if subscriptionID == "" {
		subscriptionID = payment.SubscriptionID
	}

	return &WebhookEvent{
		Provider:       ProviderRazorpay,
		Type:           EventType(raw.Event),
		RawType:        raw.Event,
		OrderID:        payment.OrderID,
		PaymentID:      payment.ID,
		SubscriptionID: subscriptionID,
		AmountMinor:    payment.Amount,
		Notes:          notes,
	}, nil
}
