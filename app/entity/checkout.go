package entity

import "strings"

type CheckoutKind int32

const (
	CheckoutCompleted CheckoutKind = 1
	CheckoutCancelled CheckoutKind = 2
	CheckoutFailed    CheckoutKind = 3
)

func (k CheckoutKind) String() string {
	switch k {
	case CheckoutCompleted:
		return "completed"
	case CheckoutCancelled:
		return "cancelled"
	case CheckoutFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CheckoutResult is the normalized outcome of a payment sheet.
type CheckoutResult struct {
	Kind CheckoutKind

	ProviderPaymentID string
	ProviderOrderID   string
	Signature         string

	Code        *int
	Reason      string
	Unsupported bool
}

func Completed(paymentID, orderID, signature string) *CheckoutResult {
	return &CheckoutResult{
		Kind:              CheckoutCompleted,
		ProviderPaymentID: strings.TrimSpace(paymentID),
		ProviderOrderID:   strings.TrimSpace(orderID),
		Signature:         strings.TrimSpace(signature),
	}
}

func Cancelled(reason string) *CheckoutResult {
	return &CheckoutResult{Kind: CheckoutCancelled, Reason: strings.TrimSpace(reason)}
}

func Failed(reason string) *CheckoutResult {
	return &CheckoutResult{Kind: CheckoutFailed, Reason: strings.TrimSpace(reason)}
}

type Receipt struct {
	HTMLURL string
	PDFURL  string
}

// Available reports whether any receipt link is known. A receipt without links is pending.
func (r *Receipt) Available() bool {
	return r != nil && (strings.TrimSpace(r.HTMLURL) != "" || strings.TrimSpace(r.PDFURL) != "")
}

// PreferredURL returns the HTML receipt when present, the PDF otherwise.
func (r *Receipt) PreferredURL() string {
	if r == nil {
		return ""
	}
	if s := strings.TrimSpace(r.HTMLURL); s != "" {
		return s
	}
	return strings.TrimSpace(r.PDFURL)
}

type OrderStatus struct {
	Status  string
	Receipt *Receipt
}
