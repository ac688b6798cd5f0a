package entity

import (
	"errors"
	"strings"
)

type ConfirmationStatus string

const (
	ConfirmationSuccess   ConfirmationStatus = "SUCCESS"
	ConfirmationFailed    ConfirmationStatus = "FAILED"
	ConfirmationCancelled ConfirmationStatus = "CANCELLED"
)

var ErrInvalidConfirmation = errors.New("invalid confirmation record")

// ConfirmationRecord is reported to the server once per checkout outcome.
type ConfirmationRecord struct {
	OrderID           string
	Status            ConfirmationStatus
	Provider          string
	ProviderRef       string
	ProviderOrderID   string
	ProviderPaymentID *string
	Signature         *string
	Reason            *string
}

// Validate enforces that a signature only travels with SUCCESS and that
// SUCCESS always carries the payment id, order id and signature.
func (r *ConfirmationRecord) Validate() error {
	if strings.TrimSpace(r.OrderID) == "" {
		return errors.Join(ErrInvalidConfirmation, errors.New("order id is required"))
	}
	switch r.Status {
	case ConfirmationSuccess:
		if isBlank(r.ProviderPaymentID) || strings.TrimSpace(r.ProviderOrderID) == "" || isBlank(r.Signature) {
			return errors.Join(ErrInvalidConfirmation, errors.New("success requires provider payment id, order id and signature"))
		}
	case ConfirmationFailed, ConfirmationCancelled:
		if r.Signature != nil {
			return errors.Join(ErrInvalidConfirmation, errors.New("signature is only allowed on success"))
		}
	default:
		return errors.Join(ErrInvalidConfirmation, errors.New("unknown status"))
	}
	return nil
}

func isBlank(v *string) bool {
	return v == nil || strings.TrimSpace(*v) == ""
}
