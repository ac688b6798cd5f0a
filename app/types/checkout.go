package types

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
)

type CheckoutPrefill struct {
	Name    string `json:"name,omitempty"`
	Contact string `json:"contact,omitempty"`
	Email   string `json:"email,omitempty"`
}

type CheckoutTheme struct {
	Color string `json:"color,omitempty"`
}

type CheckoutRetry struct {
	Enabled  bool `json:"enabled"`
	MaxCount int  `json:"max_count"`
}

// CheckoutOptions is the option object handed to Razorpay Checkout.
type CheckoutOptions struct {
	Key         string          `json:"key"`
	OrderID     string          `json:"order_id"`
	Currency    string          `json:"currency"`
	Amount      int64           `json:"amount"`
	Name        string          `json:"name,omitempty"`
	Description string          `json:"description,omitempty"`
	Prefill     CheckoutPrefill `json:"prefill"`
	Theme       CheckoutTheme   `json:"theme"`
	Retry       CheckoutRetry   `json:"retry"`
}

type CheckoutErrorPayload struct {
	Code        *int   `json:"code"`
	Description string `json:"description"`
	Reason      string `json:"reason"`
}

// CheckoutResultRequest is posted by the checkout page once Razorpay reports an outcome.
type CheckoutResultRequest struct {
	Session           string                `json:"-"`
	ProviderPaymentID string                `json:"razorpay_payment_id"`
	ProviderOrderID   string                `json:"razorpay_order_id"`
	Signature         string                `json:"razorpay_signature"`
	Error             *CheckoutErrorPayload `json:"error,omitempty"`
}

func NewCheckoutResultRequestFromContext(ctx echo.Context) (*CheckoutResultRequest, error) {
	var body CheckoutResultRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.Session = strings.TrimSpace(ctx.Param("session"))
	body.ProviderPaymentID = strings.TrimSpace(body.ProviderPaymentID)
	body.ProviderOrderID = strings.TrimSpace(body.ProviderOrderID)
	body.Signature = strings.TrimSpace(body.Signature)
	if body.Error != nil {
		body.Error.Description = strings.TrimSpace(body.Error.Description)
		body.Error.Reason = strings.TrimSpace(body.Error.Reason)
	}

	return &body, nil
}

func (r *CheckoutResultRequest) Validate() error {
	if strings.TrimSpace(r.Session) == "" {
		return errors.New("session is required")
	}
	if r.Error == nil && r.ProviderPaymentID == "" && r.ProviderOrderID == "" && r.Signature == "" {
		return errors.New("either a payment result or an error is required")
	}
	return nil
}
