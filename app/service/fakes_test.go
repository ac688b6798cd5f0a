package service

import (
	"context"
	"sync"
	"time"

	"github.com/vibast-solutions/go-donation-client/app/entity"
	"github.com/vibast-solutions/go-donation-client/app/provider"
)

type fakeAPI struct {
	mu sync.Mutex

	createFn  func(ctx context.Context, intent *entity.DonationIntent) (*entity.PaymentOrder, error)
	confirmFn func(ctx context.Context, record *entity.ConfirmationRecord) (*entity.Receipt, error)
	statusFn  func(ctx context.Context, providerOrderID string) (*entity.OrderStatus, error)

	intents       []*entity.DonationIntent
	confirmations []*entity.ConfirmationRecord
	statusCalls   int
}

func (a *fakeAPI) CreateOrder(ctx context.Context, intent *entity.DonationIntent) (*entity.PaymentOrder, error) {
	a.mu.Lock()
	a.intents = append(a.intents, intent)
	n := len(a.intents)
	a.mu.Unlock()

	if a.createFn != nil {
		return a.createFn(ctx, intent)
	}
	return &entity.PaymentOrder{
		OrderID:         "don_" + string(rune('0'+n)),
		ProviderOrderID: "order_" + string(rune('0'+n)),
		ProviderKeyID:   "rzp_test_1",
		Amount:          intent.AmountMinor(),
		Currency:        intent.Currency,
		Provider:        "razorpay",
	}, nil
}

func (a *fakeAPI) ConfirmPayment(ctx context.Context, record *entity.ConfirmationRecord) (*entity.Receipt, error) {
	a.mu.Lock()
	a.confirmations = append(a.confirmations, record)
	a.mu.Unlock()

	if a.confirmFn != nil {
		return a.confirmFn(ctx, record)
	}
	return &entity.Receipt{HTMLURL: "https://receipts.example.org/" + record.OrderID + ".html"}, nil
}

func (a *fakeAPI) GetOrderStatus(ctx context.Context, providerOrderID string) (*entity.OrderStatus, error) {
	a.mu.Lock()
	a.statusCalls++
	a.mu.Unlock()

	if a.statusFn != nil {
		return a.statusFn(ctx, providerOrderID)
	}
	return &entity.OrderStatus{Status: "PENDING"}, nil
}

func (a *fakeAPI) intentCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.intents)
}

func (a *fakeAPI) confirmed() []*entity.ConfirmationRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*entity.ConfirmationRecord{}, a.confirmations...)
}

type fakeCheckout struct {
	mu     sync.Mutex
	openFn func(ctx context.Context, input *provider.OpenInput) *entity.CheckoutResult
	inputs []*provider.OpenInput
}

func (c *fakeCheckout) Code() string {
	return provider.RazorpayCode
}

func (c *fakeCheckout) Open(ctx context.Context, input *provider.OpenInput) *entity.CheckoutResult {
	c.mu.Lock()
	c.inputs = append(c.inputs, input)
	c.mu.Unlock()

	if c.openFn != nil {
		return c.openFn(ctx, input)
	}
	return entity.Completed("pay_1", input.Order.ProviderOrderID, "sig_1")
}

func (c *fakeCheckout) opened() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.inputs)
}

type fakeJournal struct {
	mu        sync.Mutex
	recordErr error
	recorded  []*entity.JournalEntry
	resolved  []*entity.JournalEntry

	unresolved []*entity.JournalEntry
	listBefore time.Time
}

func (j *fakeJournal) Record(_ context.Context, entry *entity.JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.recordErr != nil {
		return j.recordErr
	}
	j.recorded = append(j.recorded, entry)
	return nil
}

func (j *fakeJournal) MarkResolved(_ context.Context, entry *entity.JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.resolved = append(j.resolved, entry)
	return nil
}

func (j *fakeJournal) ListUnresolved(_ context.Context, before time.Time, limit int32) ([]*entity.JournalEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.listBefore = before
	if int(limit) < len(j.unresolved) {
		return j.unresolved[:limit], nil
	}
	return j.unresolved, nil
}

func (j *fakeJournal) recordedCount() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.recorded)
}

type fakeLauncher struct {
	opened []string
}

func (l *fakeLauncher) Open(url string) error {
	l.opened = append(l.opened, url)
	return nil
}
