package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/go-donation-client/app/client"
	"github.com/vibast-solutions/go-donation-client/app/entity"
	"github.com/vibast-solutions/go-donation-client/app/factory"
	"github.com/vibast-solutions/go-donation-client/app/metrics"
	"github.com/vibast-solutions/go-donation-client/app/provider"
	"github.com/vibast-solutions/go-donation-client/app/validation"
	"golang.org/x/sync/singleflight"
)

const (
	defaultProviderCode = provider.RazorpayCode
	settleTimeout       = 30 * time.Second
)

type DonationAPI interface {
	CreateOrder(ctx context.Context, intent *entity.DonationIntent) (*entity.PaymentOrder, error)
	ConfirmPayment(ctx context.Context, record *entity.ConfirmationRecord) (*entity.Receipt, error)
	GetOrderStatus(ctx context.Context, providerOrderID string) (*entity.OrderStatus, error)
}

// OrderJournal keeps a durable trace of orders between creation and outcome.
type OrderJournal interface {
	Record(ctx context.Context, entry *entity.JournalEntry) error
	MarkResolved(ctx context.Context, entry *entity.JournalEntry) error
}

type WorkflowConfig struct {
	EntryPoint    entity.EntryPoint
	Threshold     float64
	Currency      string
	ProviderCode  string
	FallbackKeyID string
	Description   string
}

// Workflow drives one donation screen: validation, order creation, checkout,
// confirmation and receipt lookup. Only one submission runs at a time.
type Workflow struct {
	cfg       WorkflowConfig
	api       DonationAPI
	providers *provider.Registry
	journal   OrderJournal
	metrics   *metrics.Recorder
	launcher  provider.Launcher
	logger    logrus.FieldLogger
	refresh   singleflight.Group
	now       func() time.Time

	mu        sync.Mutex
	state     State
	inFlight  bool
	unmounted bool
	order     *entity.PaymentOrder
	outcome   *Outcome
	listeners []func(State)
}

func NewWorkflow(
	cfg WorkflowConfig,
	api DonationAPI,
	providers *provider.Registry,
	journal OrderJournal,
	recorder *metrics.Recorder,
	launcher provider.Launcher,
) *Workflow {
	if strings.TrimSpace(cfg.ProviderCode) == "" {
		cfg.ProviderCode = defaultProviderCode
	}
	cfg.Currency = strings.ToUpper(strings.TrimSpace(cfg.Currency))
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}

	return &Workflow{
		cfg:       cfg,
		api:       api,
		providers: providers,
		journal:   journal,
		metrics:   recorder,
		launcher:  launcher,
		logger:    factory.NewModuleLogger("donation-workflow").WithField("entry_point", string(cfg.EntryPoint)),
		now:       func() time.Time { return time.Now().UTC() },
		state:     StateIdle,
	}
}

func (w *Workflow) Tier(amount float64, isAnonymous bool) validation.Tier {
	return validation.ResolveTier(amount, isAnonymous, w.cfg.Threshold)
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// SubmitEnabled mirrors the submit control: disabled while a submission runs
// and once the screen is gone.
func (w *Workflow) SubmitEnabled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !w.unmounted && !w.inFlight
}

func (w *Workflow) LastOutcome() *Outcome {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.outcome
}

func (w *Workflow) OnStateChange(fn func(State)) {
	w.mu.Lock()
	w.listeners = append(w.listeners, fn)
	w.mu.Unlock()
}

// Unmount drops every response that arrives afterwards. A checkout result that
// is already in hand is still confirmed and journaled.
func (w *Workflow) Unmount() {
	w.mu.Lock()
	w.unmounted = true
	w.mu.Unlock()
}

func (w *Workflow) mounted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return !w.unmounted
}

func (w *Workflow) setState(state State) bool {
	w.mu.Lock()
	if w.unmounted {
		w.mu.Unlock()
		return false
	}
	w.state = state
	listeners := append([]func(State){}, w.listeners...)
	w.mu.Unlock()

	for _, fn := range listeners {
		fn(state)
	}
	return true
}

// Submit runs one donation attempt from Idle to a resolved outcome. A blocked
// intent returns to Idle without touching the network.
func (w *Workflow) Submit(ctx context.Context, intent *entity.DonationIntent) (*Outcome, error) {
	if intent == nil {
		return nil, errors.New("donation intent is required")
	}

	w.mu.Lock()
	switch {
	case w.unmounted:
		w.mu.Unlock()
		return nil, ErrUnmounted
	case w.inFlight:
		w.mu.Unlock()
		return nil, ErrSubmissionInProgress
	}
	w.inFlight = true
	w.outcome = nil
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.inFlight = false
		w.mu.Unlock()
	}()

	if !w.setState(StateIdle) || !w.setState(StateValidating) {
		return nil, ErrUnmounted
	}

	draft := *intent
	validation.NormalizeIntent(&draft)
	if strings.TrimSpace(draft.Currency) == "" {
		draft.Currency = w.cfg.Currency
	}

	tier := w.Tier(draft.Amount, draft.IsAnonymous)
	if err := validation.ValidateIntent(&draft, tier); err != nil {
		return w.block(err)
	}

	if !w.setState(StateCreatingOrder) {
		return nil, ErrUnmounted
	}
	w.mu.Lock()
	w.order = nil
	w.mu.Unlock()
	order, err := w.api.CreateOrder(ctx, &draft)
	if !w.mounted() {
		return nil, ErrUnmounted
	}
	if err != nil {
		w.metrics.OrderFailure(string(w.cfg.EntryPoint), errorKind(err))
		w.logger.WithError(err).Warn("Create order failed")
		return w.resolve(ctx, nil, orderFailure(err))
	}

	w.mu.Lock()
	w.order = order
	w.mu.Unlock()
	w.recordJournal(ctx, order)

	keyID := strings.TrimSpace(order.ProviderKeyID)
	if keyID == "" {
		keyID = strings.TrimSpace(w.cfg.FallbackKeyID)
	}
	if keyID == "" {
		w.logger.WithField("order_id", order.OrderID).Error("No payment key for order")
		return w.resolve(ctx, order, unavailable(fmt.Errorf("%w: provider key is missing", client.ErrConfiguration)))
	}

	providerCode := order.Provider
	if providerCode == "" {
		providerCode = w.cfg.ProviderCode
	}
	checkout, err := w.providers.Get(providerCode)
	if err != nil {
		return w.resolve(ctx, order, unavailable(fmt.Errorf("%w: %w", client.ErrConfiguration, err)))
	}

	if !w.setState(StateAwaitingCheckout) {
		return nil, ErrUnmounted
	}
	result := checkout.Open(ctx, &provider.OpenInput{
		Order:       order,
		KeyID:       keyID,
		Description: w.cfg.Description,
		Prefill: provider.Prefill{
			Name:    prefillValue(&draft, draft.DonorName),
			Contact: prefillValue(&draft, draft.DonorMobile),
			Email:   prefillValue(&draft, draft.DonorEmail),
		},
	})
	if result == nil {
		result = entity.Failed("empty checkout response")
	}
	w.metrics.Checkout(checkout.Code(), result.Kind.String())
	w.setState(StateConfirming)

	// Every checkout result is confirmed and journaled, even once ctx is done
	// or the screen is gone.
	settleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), settleTimeout)
	defer cancel()

	record, complete := confirmationFor(order, checkout.Code(), result)
	receipt, confirmErr := w.api.ConfirmPayment(settleCtx, record)
	w.metrics.Confirmation(string(record.Status), confirmErr == nil)
	if confirmErr != nil {
		w.logger.WithError(confirmErr).WithFields(logrus.Fields{
			"order_id": order.OrderID,
			"status":   record.Status,
		}).Warn("Confirm payment failed")
	}

	var outcome *Outcome
	switch result.Kind {
	case entity.CheckoutCompleted:
		switch {
		case !complete:
			w.logger.WithField("order_id", order.OrderID).Warn("Provider returned an incomplete payment result")
			outcome = ambiguous(errors.New("incomplete provider response"))
		case confirmErr != nil:
			outcome = ambiguous(confirmErr)
		default:
			outcome = w.success(settleCtx, order, receipt)
		}
	case entity.CheckoutCancelled:
		outcome = &Outcome{Status: OutcomeCancelled, Title: TitleCancelled, Message: messageCancelled}
	default:
		outcome = checkoutFailure(result)
	}
	return w.resolve(settleCtx, order, outcome)
}

// RefreshStatus asks the server once for the status of the last order.
// Concurrent refreshes of the same order share one request.
func (w *Workflow) RefreshStatus(ctx context.Context) (*entity.OrderStatus, error) {
	w.mu.Lock()
	order := w.order
	w.mu.Unlock()
	if order == nil {
		return nil, ErrNoOrder
	}

	v, err, _ := w.refresh.Do(order.ProviderOrderID, func() (interface{}, error) {
		return w.api.GetOrderStatus(ctx, order.ProviderOrderID)
	})
	if !w.mounted() {
		return nil, ErrUnmounted
	}
	if err != nil {
		return nil, err
	}

	status, _ := v.(*entity.OrderStatus)
	if status == nil {
		return nil, ErrNoOrder
	}
	if status.Receipt.Available() {
		w.mu.Lock()
		if w.outcome != nil && w.outcome.Order == order && w.outcome.Status == OutcomeSuccess {
			w.outcome.Receipt = status.Receipt
			w.outcome.ReceiptPending = false
			w.outcome.Message = messageReceiptReady
		}
		w.mu.Unlock()
	}
	return status, nil
}

// OpenReceipt opens the receipt of the last successful donation, preferring
// the HTML rendition.
func (w *Workflow) OpenReceipt() error {
	w.mu.Lock()
	outcome := w.outcome
	w.mu.Unlock()

	if outcome == nil || !outcome.Receipt.Available() {
		return ErrReceiptUnavailable
	}
	if w.launcher == nil {
		return provider.ErrUnsupportedPlatform
	}
	return w.launcher.Open(outcome.Receipt.PreferredURL())
}

func (w *Workflow) block(err error) (*Outcome, error) {
	outcome := &Outcome{Status: OutcomeBlocked, Title: "Invalid Details", Message: err.Error(), Err: err}
	var verr *validation.Error
	if errors.As(err, &verr) {
		outcome.Title = verr.Title
		outcome.Message = verr.Message
		outcome.Field = verr.Field
	}

	if !w.setState(StateIdle) {
		return nil, ErrUnmounted
	}
	w.mu.Lock()
	w.outcome = outcome
	w.mu.Unlock()
	w.metrics.Outcome(string(w.cfg.EntryPoint), string(OutcomeBlocked))
	return outcome, nil
}

func (w *Workflow) success(ctx context.Context, order *entity.PaymentOrder, receipt *entity.Receipt) *Outcome {
	if !receipt.Available() && w.mounted() {
		status, err := w.api.GetOrderStatus(ctx, order.ProviderOrderID)
		if err != nil {
			w.logger.WithError(err).WithField("order_id", order.OrderID).Info("Receipt lookup failed")
		} else if status != nil {
			receipt = status.Receipt
		}
	}

	if receipt.Available() {
		return &Outcome{Status: OutcomeSuccess, Title: TitleThankYou, Message: messageReceiptReady, Receipt: receipt}
	}
	return &Outcome{Status: OutcomeSuccess, Title: TitleThankYou, Message: messageReceiptPending, ReceiptPending: true}
}

// resolve journals the outcome of an order. The outcome itself is dropped
// once the screen is unmounted.
func (w *Workflow) resolve(ctx context.Context, order *entity.PaymentOrder, outcome *Outcome) (*Outcome, error) {
	outcome.Order = order

	if order != nil {
		w.resolveJournal(ctx, order, outcome)
	}
	w.metrics.Outcome(string(w.cfg.EntryPoint), string(outcome.Status))
	if !w.mounted() {
		return nil, ErrUnmounted
	}

	w.mu.Lock()
	w.outcome = outcome
	w.mu.Unlock()
	if !w.setState(StateResolved) {
		return nil, ErrUnmounted
	}

	w.logger.WithFields(logrus.Fields{
		"outcome":  outcome.Status,
		"order_id": orderID(order),
	}).Info("Donation resolved")
	return outcome, nil
}

func (w *Workflow) recordJournal(ctx context.Context, order *entity.PaymentOrder) {
	if w.journal == nil {
		return
	}
	now := w.now()
	err := w.journal.Record(ctx, &entity.JournalEntry{
		OrderID:         order.OrderID,
		ProviderOrderID: order.ProviderOrderID,
		EntryPoint:      w.cfg.EntryPoint,
		AmountMinor:     order.Amount,
		Currency:        order.Currency,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		w.logger.WithError(err).WithField("order_id", order.OrderID).Warn("Journal record failed")
	}
}

func (w *Workflow) resolveJournal(ctx context.Context, order *entity.PaymentOrder, outcome *Outcome) {
	if w.journal == nil {
		return
	}
	now := w.now()
	entry := &entity.JournalEntry{
		OrderID:         order.OrderID,
		ProviderOrderID: order.ProviderOrderID,
		Outcome:         outcome.journalOutcome(),
		UpdatedAt:       now,
	}
	if outcome.Status != OutcomeAmbiguous {
		entry.ResolvedAt = &now
	}
	if url := outcome.Receipt.PreferredURL(); url != "" {
		entry.ReceiptURL = &url
	}
	if err := w.journal.MarkResolved(ctx, entry); err != nil {
		w.logger.WithError(err).WithField("order_id", order.OrderID).Warn("Journal update failed")
	}
}

// confirmationFor builds the single confirmation sent for a checkout result.
// A completed result that lacks any provider field, or that belongs to another
// order, is reported as FAILED and complete is false.
func confirmationFor(order *entity.PaymentOrder, providerCode string, result *entity.CheckoutResult) (record *entity.ConfirmationRecord, complete bool) {
	record = &entity.ConfirmationRecord{
		OrderID:         order.OrderID,
		Provider:        providerCode,
		ProviderRef:     order.ProviderOrderID,
		ProviderOrderID: order.ProviderOrderID,
	}

	switch result.Kind {
	case entity.CheckoutCompleted:
		complete = result.ProviderPaymentID != "" && result.Signature != "" &&
			result.ProviderOrderID != "" && result.ProviderOrderID == order.ProviderOrderID
		if result.ProviderPaymentID != "" {
			paymentID := result.ProviderPaymentID
			record.ProviderRef = paymentID
			record.ProviderPaymentID = &paymentID
		}
		if complete {
			signature := result.Signature
			record.Status = entity.ConfirmationSuccess
			record.Signature = &signature
			return record, true
		}
		record.Status = entity.ConfirmationFailed
		record.Reason = stringPtr("incomplete provider response")
	case entity.CheckoutCancelled:
		record.Status = entity.ConfirmationCancelled
		record.Reason = optionalString(result.Reason)
	default:
		record.Status = entity.ConfirmationFailed
		record.Reason = optionalString(result.Reason)
	}
	return record, false
}

func orderFailure(err error) *Outcome {
	message := messageOrderFailedPlain
	var apiErr *client.APIError
	switch {
	case errors.Is(err, client.ErrNetwork):
		message = messageNetwork
	case errors.As(err, &apiErr) && apiErr.Message != "":
		message = apiErr.Message
	case err != nil:
		message = err.Error()
	}
	return &Outcome{Status: OutcomeFailed, Title: TitleOrderFailed, Message: message, Err: err}
}

func unavailable(err error) *Outcome {
	return &Outcome{Status: OutcomeFailed, Title: TitleUnavailable, Message: messageUnavailable, Err: err}
}

func ambiguous(err error) *Outcome {
	return &Outcome{Status: OutcomeAmbiguous, Title: TitleProcessing, Message: messageAmbiguous, ReceiptPending: true, Err: err}
}

func checkoutFailure(result *entity.CheckoutResult) *Outcome {
	if result.Unsupported {
		return &Outcome{
			Status:      OutcomeFailed,
			Title:       TitleUnavailable,
			Message:     messageUnsupported,
			Unsupported: true,
			Err:         fmt.Errorf("%w: %s", client.ErrConfiguration, provider.ErrUnsupportedPlatform),
		}
	}
	message := result.Reason
	if message == "" {
		message = messageFailedDefault
	}
	return &Outcome{Status: OutcomeFailed, Title: TitleFailed, Message: message, Err: errors.New(message)}
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, client.ErrValidation):
		return "validation"
	case errors.Is(err, client.ErrNetwork):
		return "network"
	case errors.Is(err, client.ErrServer):
		return "server"
	default:
		return "other"
	}
}

func prefillValue(intent *entity.DonationIntent, value string) string {
	if intent.IsAnonymous {
		return ""
	}
	return value
}

func optionalString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func stringPtr(v string) *string {
	return &v
}

func orderID(order *entity.PaymentOrder) string {
	if order == nil {
		return ""
	}
	return order.OrderID
}
