package provider

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/go-donation-client/app/entity"
	"github.com/vibast-solutions/go-donation-client/app/factory"
	"github.com/vibast-solutions/go-donation-client/app/types"
)

const RazorpayCode = "razorpay"

type RazorpayConfig struct {
	MerchantName  string
	ThemeColor    string
	RetryEnabled  bool
	RetryMaxCount int
	BridgeBaseURL string
}

// RazorpayCheckout shows Razorpay Checkout in the donor's browser through the
// local checkout bridge and waits for the page to post the outcome back.
type RazorpayCheckout struct {
	cfg      RazorpayConfig
	sessions *Sessions
	launcher Launcher
	logger   logrus.FieldLogger
}

func NewRazorpayCheckout(cfg RazorpayConfig, sessions *Sessions, launcher Launcher) *RazorpayCheckout {
	if cfg.RetryMaxCount < 0 {
		cfg.RetryMaxCount = 0
	}
	return &RazorpayCheckout{
		cfg:      cfg,
		sessions: sessions,
		launcher: launcher,
		logger:   factory.NewModuleLogger("razorpay-checkout"),
	}
}

func (p *RazorpayCheckout) Code() string {
	return RazorpayCode
}

func (p *RazorpayCheckout) Options(input *OpenInput) types.CheckoutOptions {
	return types.CheckoutOptions{
		Key:         strings.TrimSpace(input.KeyID),
		OrderID:     input.Order.ProviderOrderID,
		Currency:    input.Order.Currency,
		Amount:      input.Order.Amount,
		Name:        p.cfg.MerchantName,
		Description: strings.TrimSpace(input.Description),
		Prefill: types.CheckoutPrefill{
			Name:    strings.TrimSpace(input.Prefill.Name),
			Contact: strings.TrimSpace(input.Prefill.Contact),
			Email:   strings.TrimSpace(input.Prefill.Email),
		},
		Theme: types.CheckoutTheme{Color: p.cfg.ThemeColor},
		Retry: types.CheckoutRetry{Enabled: p.cfg.RetryEnabled, MaxCount: p.cfg.RetryMaxCount},
	}
}

func (p *RazorpayCheckout) Open(ctx context.Context, input *OpenInput) *entity.CheckoutResult {
	if input == nil || input.Order == nil || strings.TrimSpace(input.Order.ProviderOrderID) == "" {
		return entity.Failed("provider order is missing")
	}
	if strings.TrimSpace(input.KeyID) == "" {
		return entity.Failed("payment key is not configured")
	}
	if p.launcher == nil || p.sessions == nil {
		return unsupported()
	}

	session := p.sessions.Open(p.Options(input))
	defer p.sessions.Close(session.ID)

	pageURL := joinSessionURL(p.cfg.BridgeBaseURL, session.ID)
	if pageURL == "" {
		return entity.Failed("checkout bridge url is not configured")
	}

	logger := p.logger.WithFields(logrus.Fields{
		"session":           session.ID,
		"provider_order_id": input.Order.ProviderOrderID,
	})
	if err := p.launcher.Open(pageURL); err != nil {
		if errors.Is(err, ErrUnsupportedPlatform) {
			logger.Warn("No browser launcher for this platform")
			return unsupported()
		}
		logger.WithError(err).Warn("Failed to open checkout page")
		return entity.Failed(err.Error())
	}
	logger.WithField("url", pageURL).Info("Checkout page opened")

	select {
	case result := <-session.results:
		if result == nil {
			return entity.Failed("empty checkout response")
		}
		logger.WithField("outcome", result.Kind.String()).Info("Checkout finished")
		return result
	case <-ctx.Done():
		logger.WithError(ctx.Err()).Info("Checkout abandoned")
		return entity.Cancelled("checkout abandoned: " + ctx.Err().Error())
	}
}

func unsupported() *entity.CheckoutResult {
	result := entity.Failed(ErrUnsupportedPlatform.Error())
	result.Unsupported = true
	return result
}

func joinSessionURL(baseURL, session string) string {
	baseURL = strings.TrimSpace(strings.TrimRight(baseURL, "/"))
	session = strings.TrimSpace(session)
	if baseURL == "" || session == "" {
		return ""
	}
	return baseURL + "/checkout/" + session
}
