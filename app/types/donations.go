package types

import "encoding/json"

type CreateOrderRequest struct {
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
	EventID      string  `json:"eventId,omitempty"`
	DonorName    string  `json:"donorName,omitempty"`
	DonorMobile  string  `json:"donorMobile,omitempty"`
	DonorEmail   string  `json:"donorEmail,omitempty"`
	DonorAddress string  `json:"donorAddress,omitempty"`
	DonorPAN     string  `json:"donorPan,omitempty"`
	IsAnonymous  bool    `json:"isAnonymous"`
	ShareCode    string  `json:"shareCode,omitempty"`
}

// PaymentOrderPayload carries amount in minor units as issued by the provider.
type PaymentOrderPayload struct {
	OrderID         string `json:"orderId"`
	ProviderOrderID string `json:"providerOrderId"`
	ProviderKeyID   string `json:"providerKeyId"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	Provider        string `json:"provider"`
}

type ConfirmRequest struct {
	OrderID           string `json:"orderId"`
	Status            string `json:"status"`
	Provider          string `json:"provider"`
	ProviderRef       string `json:"providerRef,omitempty"`
	ProviderOrderID   string `json:"razorpayOrderId,omitempty"`
	ProviderPaymentID string `json:"razorpayPaymentId,omitempty"`
	Signature         string `json:"razorpaySignature,omitempty"`
	Reason            string `json:"reason,omitempty"`
}

type ReceiptPayload struct {
	HTMLURL string `json:"htmlUrl"`
	PDFURL  string `json:"pdfUrl"`
}

type ConfirmPayload struct {
	Receipt *ReceiptPayload `json:"receipt"`
}

type OrderStatusPayload struct {
	Status         string `json:"status"`
	ReceiptPDFURL  string `json:"receiptPdfUrl"`
	ReceiptHTMLURL string `json:"receiptHtmlUrl"`
}

// Envelope is the server's standard response wrapper. Data is kept raw so that
// callers can fall back to an unwrapped body.
type Envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"openSessions"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
