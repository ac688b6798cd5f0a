package service

import (
	"github.com/vibast-solutions/go-donation-client/app/entity"
	"github.com/vibast-solutions/go-donation-client/app/validation"
)

type State int32

const (
	StateIdle State = iota
	StateValidating
	StateCreatingOrder
	StateAwaitingCheckout
	StateConfirming
	StateResolved
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateCreatingOrder:
		return "creating_order"
	case StateAwaitingCheckout:
		return "awaiting_checkout"
	case StateConfirming:
		return "confirming"
	case StateResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

type OutcomeStatus string

const (
	OutcomeBlocked   OutcomeStatus = "blocked"
	OutcomeSuccess   OutcomeStatus = "success"
	OutcomeAmbiguous OutcomeStatus = "ambiguous"
	OutcomeCancelled OutcomeStatus = "cancelled"
	OutcomeFailed    OutcomeStatus = "failed"
)

const (
	TitleThankYou           = "Thank You"
	TitleProcessing         = "Payment Processing"
	TitleCancelled          = "Payment Cancelled"
	TitleFailed             = "Payment Failed"
	TitleUnavailable        = "Payment Unavailable"
	TitleOrderFailed        = "Unable to Start Payment"
	messageReceiptReady     = "Your donation was received. Your receipt is ready."
	messageReceiptPending   = "Your donation was received. The receipt is still being generated, refresh the status in a moment."
	messageAmbiguous        = "Your payment may have gone through. We are still confirming it and your receipt will follow. Please check your receipts later instead of paying again."
	messageCancelled        = "You closed the payment window. No amount was charged."
	messageFailedDefault    = "The payment could not be completed. Please try again."
	messageUnavailable      = "Online payments are not configured right now. Please try again later."
	messageUnsupported      = "Online payment is not supported on this device."
	messageNetwork          = "Could not reach the server. Check your connection and try again."
	messageOrderFailedPlain = "The donation could not be started. Please try again."
)

// Outcome is what the donor is shown once a submission stops.
type Outcome struct {
	Status  OutcomeStatus
	Title   string
	Message string

	// Field names the offending input of a blocked submission.
	Field validation.Field

	Order          *entity.PaymentOrder
	Receipt        *entity.Receipt
	ReceiptPending bool
	Unsupported    bool

	Err error
}

// ShowsError reports whether the outcome is presented as an error. Cancelled
// and ambiguous outcomes never are.
func (o *Outcome) ShowsError() bool {
	return o != nil && (o.Status == OutcomeBlocked || o.Status == OutcomeFailed)
}

func (o *Outcome) journalOutcome() string {
	switch o.Status {
	case OutcomeSuccess:
		return entity.JournalOutcomeSuccess
	case OutcomeAmbiguous:
		return entity.JournalOutcomeAmbiguous
	case OutcomeCancelled:
		return entity.JournalOutcomeCancelled
	default:
		return entity.JournalOutcomeFailed
	}
}
