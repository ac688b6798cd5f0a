package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/vibast-solutions/go-donation-client/app/entity"
	"github.com/vibast-solutions/go-donation-client/app/mapper"
	"github.com/vibast-solutions/go-donation-client/app/types"
)

// CreateOrder creates exactly one server-side order for intent.
func (c *Client) CreateOrder(ctx context.Context, intent *entity.DonationIntent) (*entity.PaymentOrder, error) {
	var payload types.PaymentOrderPayload
	if err := c.doJSON(ctx, http.MethodPost, c.cfg.CreateOrderPath, mapper.IntentToCreateOrderRequest(intent), &payload); err != nil {
		return nil, err
	}

	order := mapper.PaymentOrderFromPayload(&payload)
	if order.ProviderOrderID == "" {
		return nil, fmt.Errorf("%w: order response is missing providerOrderId", ErrServer)
	}
	if order.Currency == "" && intent != nil {
		order.Currency = strings.ToUpper(strings.TrimSpace(intent.Currency))
	}
	if order.Amount <= 0 && intent != nil {
		order.Amount = intent.AmountMinor()
	}
	if order.Provider == "" {
		order.Provider = "razorpay"
	}
	return order, nil
}

// ConfirmPayment reports a checkout outcome. The returned receipt is nil when
// the server has not produced one yet.
func (c *Client) ConfirmPayment(ctx context.Context, record *entity.ConfirmationRecord) (*entity.Receipt, error) {
	if err := record.Validate(); err != nil {
		return nil, err
	}

	var payload types.ConfirmPayload
	if err := c.doJSON(ctx, http.MethodPost, c.cfg.ConfirmPath, mapper.ConfirmationToRequest(record), &payload); err != nil {
		return nil, err
	}
	return mapper.ReceiptFromPayload(payload.Receipt), nil
}

// GetOrderStatus performs a single status lookup; it never retries.
func (c *Client) GetOrderStatus(ctx context.Context, providerOrderID string) (*entity.OrderStatus, error) {
	providerOrderID = strings.TrimSpace(providerOrderID)
	if providerOrderID == "" {
		return nil, fmt.Errorf("%w: provider order id is required", ErrValidation)
	}

	var payload types.OrderStatusPayload
	if err := c.doJSON(ctx, http.MethodGet, c.statusPath(providerOrderID), nil, &payload); err != nil {
		return nil, err
	}
	return mapper.OrderStatusFromPayload(&payload), nil
}

// WorkflowPaths returns the confirm path and the status path pattern. The
// donation workflow reports failures on these itself.
func (c *Client) WorkflowPaths() []string {
	status := c.cfg.StatusPath
	if !strings.Contains(status, "%s") {
		status = strings.TrimRight(status, "/") + "/%s"
	}
	return []string{c.cfg.ConfirmPath, status}
}

func (c *Client) statusPath(providerOrderID string) string {
	escaped := url.PathEscape(providerOrderID)
	if strings.Contains(c.cfg.StatusPath, "%s") {
		return fmt.Sprintf(c.cfg.StatusPath, escaped)
	}
	return strings.TrimRight(c.cfg.StatusPath, "/") + "/" + escaped
}
