package service

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/go-donation-client/app/entity"
	"github.com/vibast-solutions/go-donation-client/app/factory"
	"github.com/vibast-solutions/go-donation-client/config"
)

const defaultBatchSize = int32(50)

type statusFetcher interface {
	GetOrderStatus(ctx context.Context, providerOrderID string) (*entity.OrderStatus, error)
}

type reconcileJournal interface {
	ListUnresolved(ctx context.Context, before time.Time, limit int32) ([]*entity.JournalEntry, error)
	MarkResolved(ctx context.Context, entry *entity.JournalEntry) error
}

type ReconcileReport struct {
	Checked  int `json:"checked"`
	Resolved int `json:"resolved"`
	Pending  int `json:"pending"`
}

// Reconciler settles journal entries left open by a crash or an ambiguous
// confirmation. Each run asks the server once per entry; it never loops.
type Reconciler struct {
	api     statusFetcher
	journal reconcileJournal
	cfg     config.ReconcileConfig
	logger  logrus.FieldLogger
	now     func() time.Time
}

func NewReconciler(api statusFetcher, journal reconcileJournal, cfg config.ReconcileConfig) *Reconciler {
	return &Reconciler{
		api:     api,
		journal: journal,
		cfg:     cfg,
		logger:  factory.NewModuleLogger("donation-reconciler"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (r *Reconciler) RunBatch(ctx context.Context) (*ReconcileReport, error) {
	now := r.now()
	items, err := r.journal.ListUnresolved(ctx, now.Add(-r.cfg.StaleAfter), r.batchSize())
	if err != nil {
		return nil, err
	}

	report := &ReconcileReport{}
	var firstErr error
	for _, entry := range items {
		if entry == nil || strings.TrimSpace(entry.ProviderOrderID) == "" {
			continue
		}
		report.Checked++

		status, err := r.api.GetOrderStatus(ctx, entry.ProviderOrderID)
		if err != nil {
			firstErr = keepFirstErr(firstErr, err)
			continue
		}

		if status == nil {
			report.Pending++
			continue
		}
		outcome := outcomeForOrderStatus(status.Status)
		if outcome == entity.JournalOutcomeNone {
			report.Pending++
			continue
		}

		state := status.Status
		entry.Outcome = outcome
		entry.ProviderState = &state
		entry.ResolvedAt = &now
		entry.UpdatedAt = now
		if url := status.Receipt.PreferredURL(); url != "" {
			entry.ReceiptURL = &url
		}

		if err := r.journal.MarkResolved(ctx, entry); err != nil {
			firstErr = keepFirstErr(firstErr, err)
			continue
		}
		report.Resolved++

		r.logger.WithFields(logrus.Fields{
			"order_id":       entry.OrderID,
			"provider_state": state,
			"outcome":        outcome,
		}).Info("Donation order reconciled")
	}

	return report, firstErr
}

func (r *Reconciler) batchSize() int32 {
	if r.cfg.BatchSize > 0 {
		return r.cfg.BatchSize
	}
	return defaultBatchSize
}

// outcomeForOrderStatus maps a server order status to a final journal outcome,
// or to none while the order can still change.
func outcomeForOrderStatus(status string) string {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "PAID", "SUCCESS", "CAPTURED", "COMPLETED":
		return entity.JournalOutcomeSuccess
	case "FAILED":
		return entity.JournalOutcomeFailed
	case "CANCELLED", "CANCELED":
		return entity.JournalOutcomeCancelled
	default:
		return entity.JournalOutcomeNone
	}
}

func keepFirstErr(current error, candidate error) error {
	if current != nil {
		return current
	}
	return candidate
}
