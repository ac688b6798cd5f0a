package provider

import (
	"context"

	"github.com/vibast-solutions/go-donation-client/app/entity"
)

type Prefill struct {
	Name    string
	Contact string
	Email   string
}

type OpenInput struct {
	Order       *entity.PaymentOrder
	KeyID       string
	Description string
	Prefill     Prefill
}

// Checkout presents the provider's payment sheet for an order and blocks until
// the sheet reports an outcome or ctx is done. It never returns an error: every
// outcome, including an unsupported platform, is a CheckoutResult.
type Checkout interface {
	Code() string
	Open(ctx context.Context, input *OpenInput) *entity.CheckoutResult
}
