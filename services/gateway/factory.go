package gateway

import (
	"strings"

	"insurepay/config"
	ierr "insurepay/errors"

	"go.uber.org/zap"
)

// NewFromConfig builds the gateway selected by GATEWAY_PROVIDER.
func NewFromConfig(cfg config.Config, logger *zap.Logger) (Gateway, error) {
	switch strings.ToLower(cfg.GatewayProvider) {
	case "", ProviderRazorpay:
		if cfg.RazorpayKeyID == "" || cfg.RazorpayKeySecret == "" {
			return nil, ierr.NewError("razorpay credentials are not configured").Mark(ierr.ErrSystem)
		}
		return NewRazorpayGateway(RazorpayConfig{
			KeyID:         cfg.RazorpayKeyID,
			SecretKey:     cfg.RazorpayKeySecret,
			WebhookSecret: cfg.RazorpayWebhookSecret,
			PlanID:        cfg.RazorpayPlanID,
		}, logger), nil
	case ProviderStripe:
		if cfg.StripeKey == "" {
			return nil, ierr.NewError("stripe key is not configured").Mark(ierr.ErrSystem)
		}
		return NewStripeGateway(StripeConfig{
			SecretKey:     cfg.StripeKey,
			WebhookSecret: cfg.StripeWebhookSecret,
			PlanPriceID:   cfg.StripePlanPriceID,
		}, logger), nil
	}
	return nil, ierr.NewErrorf("unsupported payment gateway %q", cfg.GatewayProvider).Mark(ierr.ErrSystem)
}
