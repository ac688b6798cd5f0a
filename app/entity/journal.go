package entity

import "time"

const (
	JournalOutcomeNone      = ""
	JournalOutcomeSuccess   = "success"
	JournalOutcomeAmbiguous = "ambiguous"
	JournalOutcomeCancelled = "cancelled"
	JournalOutcomeFailed    = "failed"
)

// JournalEntry records an order locally before checkout opens so that it can
// be reconciled after a crash. Ambiguous outcomes keep ResolvedAt unset.
type JournalEntry struct {
	ID uint64

	OrderID         string
	ProviderOrderID string
	EntryPoint      EntryPoint

	AmountMinor int64
	Currency    string

	Outcome       string
	ProviderState *string
	ReceiptURL    *string
	ResolvedAt    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (e *JournalEntry) Resolved() bool {
	return e != nil && e.ResolvedAt != nil
}
