package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vibast-solutions/go-donation-client/app/client"
	"github.com/vibast-solutions/go-donation-client/app/entity"
	"github.com/vibast-solutions/go-donation-client/app/metrics"
	"github.com/vibast-solutions/go-donation-client/app/provider"
	"github.com/vibast-solutions/go-donation-client/app/validation"
)

type WorkflowSuite struct {
	suite.Suite

	api      *fakeAPI
	checkout *fakeCheckout
	journal  *fakeJournal
	launcher *fakeLauncher
	workflow *Workflow
}

func TestWorkflowSuite(t *testing.T) {
	suite.Run(t, new(WorkflowSuite))
}

func (s *WorkflowSuite) SetupTest() {
	s.api = &fakeAPI{}
	s.checkout = &fakeCheckout{}
	s.journal = &fakeJournal{}
	s.launcher = &fakeLauncher{}
	s.workflow = s.newWorkflow(WorkflowConfig{
		EntryPoint:  entity.EntryPointPublicCheckout,
		Threshold:   10000,
		Currency:    "INR",
		Description: "Donation",
	})
}

func (s *WorkflowSuite) newWorkflow(cfg WorkflowConfig) *Workflow {
	return NewWorkflow(cfg, s.api, provider.NewRegistry(s.checkout), s.journal, metrics.NewNopRecorder(), s.launcher)
}

func namedIntent(amount float64) *entity.DonationIntent {
	return &entity.DonationIntent{
		Amount:      amount,
		DonorName:   "A Kumar",
		DonorMobile: "9876543210",
	}
}

func (s *WorkflowSuite) TestAnonymousBelowThresholdProceedsWithoutIdentity() {
	outcome, err := s.workflow.Submit(context.Background(), &entity.DonationIntent{Amount: 500, IsAnonymous: true})
	s.Require().NoError(err)

	s.Equal(OutcomeSuccess, outcome.Status)
	s.Require().Equal(1, s.api.intentCount())
	s.Empty(s.api.intents[0].DonorName)
	s.Empty(s.api.intents[0].DonorMobile)
	s.Equal("INR", s.api.intents[0].Currency)
	s.Empty(s.checkout.inputs[0].Prefill.Name)
}

func (s *WorkflowSuite) TestAnonymousAboveThresholdBlockedLocally() {
	outcome, err := s.workflow.Submit(context.Background(), &entity.DonationIntent{Amount: 15000, IsAnonymous: true})
	s.Require().NoError(err)

	s.Equal(OutcomeBlocked, outcome.Status)
	s.Equal(validation.TitleDetailsRequired, outcome.Title)
	s.True(outcome.ShowsError())
	s.Equal(0, s.api.intentCount())
	s.Equal(0, s.checkout.opened())
	s.Equal(StateIdle, s.workflow.State())
	s.True(s.workflow.SubmitEnabled())
}

func (s *WorkflowSuite) TestAboveThresholdRequiresPAN() {
	outcome, err := s.workflow.Submit(context.Background(), namedIntent(12000))
	s.Require().NoError(err)
	s.Equal(OutcomeBlocked, outcome.Status)
	s.Equal(validation.FieldPAN, outcome.Field)
	s.Equal(0, s.api.intentCount())

	intent := namedIntent(12000)
	intent.DonorPAN = "abcde1234f"
	outcome, err = s.workflow.Submit(context.Background(), intent)
	s.Require().NoError(err)
	s.Equal(OutcomeSuccess, outcome.Status)
	s.Equal("ABCDE1234F", s.api.intents[0].DonorPAN)
}

func (s *WorkflowSuite) TestCompletedSendsOneSuccessConfirmation() {
	outcome, err := s.workflow.Submit(context.Background(), namedIntent(2000))
	s.Require().NoError(err)

	confirmations := s.api.confirmed()
	s.Require().Len(confirmations, 1)
	record := confirmations[0]
	s.Equal(entity.ConfirmationSuccess, record.Status)
	s.Require().NotNil(record.ProviderPaymentID)
	s.Require().NotNil(record.Signature)
	s.Equal("pay_1", *record.ProviderPaymentID)
	s.Equal("sig_1", *record.Signature)
	s.Equal("order_1", record.ProviderOrderID)

	s.Equal(OutcomeSuccess, outcome.Status)
	s.Equal(TitleThankYou, outcome.Title)
	s.False(outcome.ReceiptPending)
	s.Equal("https://receipts.example.org/don_1.html", outcome.Receipt.PreferredURL())
	s.Equal(StateResolved, s.workflow.State())
	s.Equal(0, s.api.statusCalls)
}

func (s *WorkflowSuite) TestCancelledSendsCancelledConfirmationWithoutError() {
	s.checkout.openFn = func(context.Context, *provider.OpenInput) *entity.CheckoutResult {
		code := 0
		result := entity.Cancelled("cancelled")
		result.Code = &code
		return result
	}

	outcome, err := s.workflow.Submit(context.Background(), namedIntent(2000))
	s.Require().NoError(err)

	confirmations := s.api.confirmed()
	s.Require().Len(confirmations, 1)
	s.Equal(entity.ConfirmationCancelled, confirmations[0].Status)
	s.Nil(confirmations[0].Signature)

	s.Equal(OutcomeCancelled, outcome.Status)
	s.False(outcome.ShowsError())
}

func (s *WorkflowSuite) TestCancelledStaysCancelledWhenConfirmationFails() {
	s.checkout.openFn = func(context.Context, *provider.OpenInput) *entity.CheckoutResult {
		return entity.Cancelled("Payment cancelled by user")
	}
	s.api.confirmFn = func(context.Context, *entity.ConfirmationRecord) (*entity.Receipt, error) {
		return nil, client.ErrNetwork
	}

	outcome, err := s.workflow.Submit(context.Background(), namedIntent(2000))
	s.Require().NoError(err)
	s.Equal(OutcomeCancelled, outcome.Status)
	s.False(outcome.ShowsError())
}

func (s *WorkflowSuite) TestConfirmationTimeoutAfterCompletedIsAmbiguous() {
	s.api.confirmFn = func(context.Context, *entity.ConfirmationRecord) (*entity.Receipt, error) {
		return nil, fmt.Errorf("POST /donations/confirm: %w: %w", client.ErrNetwork, context.DeadlineExceeded)
	}

	outcome, err := s.workflow.Submit(context.Background(), namedIntent(2000))
	s.Require().NoError(err)

	s.Equal(OutcomeAmbiguous, outcome.Status)
	s.Equal(TitleProcessing, outcome.Title)
	s.Contains(outcome.Message, "receipt will follow")
	s.Contains(outcome.Message, "instead of paying again")
	s.False(outcome.ShowsError())
	s.Len(s.api.confirmed(), 1)
	s.Equal(1, s.api.intentCount())
}

func (s *WorkflowSuite) TestFailedSendsFailedConfirmation() {
	s.checkout.openFn = func(context.Context, *provider.OpenInput) *entity.CheckoutResult {
		return entity.Failed("Card declined by issuer")
	}

	outcome, err := s.workflow.Submit(context.Background(), namedIntent(2000))
	s.Require().NoError(err)

	confirmations := s.api.confirmed()
	s.Require().Len(confirmations, 1)
	s.Equal(entity.ConfirmationFailed, confirmations[0].Status)
	s.Nil(confirmations[0].Signature)
	s.Require().NotNil(confirmations[0].Reason)
	s.Equal("Card declined by issuer", *confirmations[0].Reason)

	s.Equal(OutcomeFailed, outcome.Status)
	s.Equal("Card declined by issuer", outcome.Message)
	s.True(outcome.ShowsError())
}

func (s *WorkflowSuite) TestIncompleteCompletedResultIsAmbiguous() {
	cases := map[string]*entity.CheckoutResult{
		"missing signature":  entity.Completed("pay_1", "order_1", ""),
		"missing payment id": entity.Completed("", "order_1", "sig_1"),
		"other order":        entity.Completed("pay_1", "order_other", "sig_1"),
	}
	for name, result := range cases {
		s.Run(name, func() {
			s.SetupTest()
			s.checkout.openFn = func(context.Context, *provider.OpenInput) *entity.CheckoutResult { return result }

			outcome, err := s.workflow.Submit(context.Background(), namedIntent(2000))
			s.Require().NoError(err)

			confirmations := s.api.confirmed()
			s.Require().Len(confirmations, 1)
			s.Equal(entity.ConfirmationFailed, confirmations[0].Status)
			s.Nil(confirmations[0].Signature)
			s.Equal(OutcomeAmbiguous, outcome.Status)
		})
	}
}

func (s *WorkflowSuite) TestProviderKeyFallback() {
	s.api.createFn = func(_ context.Context, intent *entity.DonationIntent) (*entity.PaymentOrder, error) {
		return &entity.PaymentOrder{OrderID: "don_1", ProviderOrderID: "order_1", Amount: intent.AmountMinor(), Currency: "INR"}, nil
	}
	workflow := s.newWorkflow(WorkflowConfig{EntryPoint: entity.EntryPointDonationHub, Threshold: 10000, FallbackKeyID: "rzp_live_public"})

	outcome, err := workflow.Submit(context.Background(), namedIntent(2000))
	s.Require().NoError(err)
	s.Equal(OutcomeSuccess, outcome.Status)
	s.Require().Equal(1, s.checkout.opened())
	s.Equal("rzp_live_public", s.checkout.inputs[0].KeyID)
}

func (s *WorkflowSuite) TestMissingProviderKeyIsPaymentUnavailable() {
	s.api.createFn = func(context.Context, *entity.DonationIntent) (*entity.PaymentOrder, error) {
		return &entity.PaymentOrder{OrderID: "don_1", ProviderOrderID: "order_1", Amount: 200000, Currency: "INR"}, nil
	}

	outcome, err := s.workflow.Submit(context.Background(), namedIntent(2000))
	s.Require().NoError(err)

	s.Equal(OutcomeFailed, outcome.Status)
	s.Equal(TitleUnavailable, outcome.Title)
	s.ErrorIs(outcome.Err, client.ErrConfiguration)
	s.Equal(0, s.checkout.opened())
	s.Empty(s.api.confirmed())
}

func (s *WorkflowSuite) TestUnsupportedPlatformFailsClosed() {
	s.checkout.openFn = func(context.Context, *provider.OpenInput) *entity.CheckoutResult {
		result := entity.Failed("unsupported platform")
		result.Unsupported = true
		return result
	}

	outcome, err := s.workflow.Submit(context.Background(), namedIntent(2000))
	s.Require().NoError(err)

	s.Equal(OutcomeFailed, outcome.Status)
	s.True(outcome.Unsupported)
	s.Equal(TitleUnavailable, outcome.Title)
	s.ErrorIs(outcome.Err, client.ErrConfiguration)
	s.Require().Len(s.api.confirmed(), 1)
	s.Equal(entity.ConfirmationFailed, s.api.confirmed()[0].Status)
}

func (s *WorkflowSuite) TestOrderFailureMessages() {
	s.Run("server message surfaced", func() {
		s.SetupTest()
		s.api.createFn = func(context.Context, *entity.DonationIntent) (*entity.PaymentOrder, error) {
			return nil, errors.New("Event is closed for donations")
		}
		outcome, err := s.workflow.Submit(context.Background(), namedIntent(2000))
		s.Require().NoError(err)
		s.Equal(OutcomeFailed, outcome.Status)
		s.Equal("Event is closed for donations", outcome.Message)
		s.Equal(0, s.checkout.opened())
		s.Equal(StateResolved, s.workflow.State())
	})

	s.Run("network error gets retry copy", func() {
		s.SetupTest()
		s.api.createFn = func(context.Context, *entity.DonationIntent) (*entity.PaymentOrder, error) {
			return nil, fmt.Errorf("dial tcp: %w", client.ErrNetwork)
		}
		outcome, err := s.workflow.Submit(context.Background(), namedIntent(2000))
		s.Require().NoError(err)
		s.Equal(messageNetwork, outcome.Message)
		s.Empty(s.journal.recorded)
	})
}

func (s *WorkflowSuite) TestReceiptPendingLooksUpStatusOnce() {
	s.api.confirmFn = func(context.Context, *entity.ConfirmationRecord) (*entity.Receipt, error) {
		return nil, nil
	}

	outcome, err := s.workflow.Submit(context.Background(), namedIntent(2000))
	s.Require().NoError(err)
	s.Equal(OutcomeSuccess, outcome.Status)
	s.True(outcome.ReceiptPending)
	s.Equal(1, s.api.statusCalls)
	s.ErrorIs(s.workflow.OpenReceipt(), ErrReceiptUnavailable)

	s.api.statusFn = func(context.Context, string) (*entity.OrderStatus, error) {
		return &entity.OrderStatus{Status: "PAID", Receipt: &entity.Receipt{PDFURL: "https://receipts.example.org/don_1.pdf"}}, nil
	}
	status, err := s.workflow.RefreshStatus(context.Background())
	s.Require().NoError(err)
	s.Equal("PAID", status.Status)
	s.Equal(2, s.api.statusCalls)

	last := s.workflow.LastOutcome()
	s.False(last.ReceiptPending)
	s.Require().NoError(s.workflow.OpenReceipt())
	s.Equal([]string{"https://receipts.example.org/don_1.pdf"}, s.launcher.opened)
}

func (s *WorkflowSuite) TestReceiptFoundByAutomaticLookup() {
	s.api.confirmFn = func(context.Context, *entity.ConfirmationRecord) (*entity.Receipt, error) {
		return nil, nil
	}
	s.api.statusFn = func(context.Context, string) (*entity.OrderStatus, error) {
		return &entity.OrderStatus{Status: "PAID", Receipt: &entity.Receipt{HTMLURL: "https://receipts.example.org/r.html"}}, nil
	}

	outcome, err := s.workflow.Submit(context.Background(), namedIntent(2000))
	s.Require().NoError(err)
	s.False(outcome.ReceiptPending)
	s.Equal("https://receipts.example.org/r.html", outcome.Receipt.PreferredURL())
}

func (s *WorkflowSuite) TestRefreshStatusWithoutOrder() {
	_, err := s.workflow.RefreshStatus(context.Background())
	s.ErrorIs(err, ErrNoOrder)
}

func (s *WorkflowSuite) TestConcurrentSubmitIsRejected() {
	release := make(chan struct{})
	opened := make(chan struct{})
	s.checkout.openFn = func(_ context.Context, input *provider.OpenInput) *entity.CheckoutResult {
		close(opened)
		<-release
		return entity.Completed("pay_1", input.Order.ProviderOrderID, "sig_1")
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.workflow.Submit(context.Background(), namedIntent(2000))
		done <- err
	}()

	<-opened
	s.False(s.workflow.SubmitEnabled())
	s.Equal(StateAwaitingCheckout, s.workflow.State())
	_, err := s.workflow.Submit(context.Background(), namedIntent(2000))
	s.ErrorIs(err, ErrSubmissionInProgress)

	close(release)
	s.Require().NoError(<-done)
	s.True(s.workflow.SubmitEnabled())
	s.Equal(1, s.api.intentCount())
}

func (s *WorkflowSuite) TestUnmountDropsLateResults() {
	s.checkout.openFn = func(_ context.Context, input *provider.OpenInput) *entity.CheckoutResult {
		s.workflow.Unmount()
		return entity.Completed("pay_1", input.Order.ProviderOrderID, "sig_1")
	}

	outcome, err := s.workflow.Submit(context.Background(), namedIntent(2000))
	s.ErrorIs(err, ErrUnmounted)
	s.Nil(outcome)
	s.Equal(StateAwaitingCheckout, s.workflow.State())
	s.Nil(s.workflow.LastOutcome())

	confirmed := s.api.confirmed()
	s.Require().Len(confirmed, 1)
	s.Equal(entity.ConfirmationSuccess, confirmed[0].Status)
	s.Require().NotNil(confirmed[0].ProviderPaymentID)
	s.Equal("pay_1", *confirmed[0].ProviderPaymentID)
	s.Require().NotNil(confirmed[0].Signature)
	s.Equal("sig_1", *confirmed[0].Signature)

	s.Require().Len(s.journal.resolved, 1)
	s.Equal(entity.JournalOutcomeSuccess, s.journal.resolved[0].Outcome)
	s.NotNil(s.journal.resolved[0].ResolvedAt)

	_, err = s.workflow.Submit(context.Background(), namedIntent(2000))
	s.ErrorIs(err, ErrUnmounted)
	s.False(s.workflow.SubmitEnabled())
	s.Equal(1, s.api.intentCount())
}

func (s *WorkflowSuite) TestUnmountBeforeCheckoutSkipsConfirmation() {
	s.api.createFn = func(_ context.Context, intent *entity.DonationIntent) (*entity.PaymentOrder, error) {
		s.workflow.Unmount()
		return &entity.PaymentOrder{OrderID: "don_1", ProviderOrderID: "order_1", ProviderKeyID: "rzp_test_1", Amount: intent.AmountMinor()}, nil
	}

	_, err := s.workflow.Submit(context.Background(), namedIntent(2000))
	s.ErrorIs(err, ErrUnmounted)
	s.Equal(0, s.checkout.opened())
	s.Empty(s.api.confirmed())
}

func (s *WorkflowSuite) TestStateTransitions() {
	var states []State
	s.workflow.OnStateChange(func(state State) { states = append(states, state) })

	_, err := s.workflow.Submit(context.Background(), namedIntent(2000))
	s.Require().NoError(err)

	s.Equal([]State{StateIdle, StateValidating, StateCreatingOrder, StateAwaitingCheckout, StateConfirming, StateResolved}, states)
}

func (s *WorkflowSuite) TestEachSubmitCreatesFreshOrder() {
	first, err := s.workflow.Submit(context.Background(), namedIntent(2000))
	s.Require().NoError(err)
	second, err := s.workflow.Submit(context.Background(), namedIntent(2000))
	s.Require().NoError(err)

	s.Equal(2, s.api.intentCount())
	s.NotEqual(first.Order.ProviderOrderID, second.Order.ProviderOrderID)
	s.Len(s.api.confirmed(), 2)
}

func (s *WorkflowSuite) TestJournalRecordedBeforeCheckout() {
	s.checkout.openFn = func(_ context.Context, input *provider.OpenInput) *entity.CheckoutResult {
		s.Equal(1, s.journal.recordedCount())
		return entity.Completed("pay_1", input.Order.ProviderOrderID, "sig_1")
	}

	_, err := s.workflow.Submit(context.Background(), namedIntent(2000))
	s.Require().NoError(err)

	s.Require().Len(s.journal.recorded, 1)
	s.Equal("order_1", s.journal.recorded[0].ProviderOrderID)
	s.Equal(entity.EntryPointPublicCheckout, s.journal.recorded[0].EntryPoint)
	s.Equal(int64(200000), s.journal.recorded[0].AmountMinor)
	s.Require().Len(s.journal.resolved, 1)
	s.Equal(entity.JournalOutcomeSuccess, s.journal.resolved[0].Outcome)
	s.NotNil(s.journal.resolved[0].ResolvedAt)
	s.NotNil(s.journal.resolved[0].ReceiptURL)
}

func (s *WorkflowSuite) TestAmbiguousJournalEntryStaysOpen() {
	s.api.confirmFn = func(context.Context, *entity.ConfirmationRecord) (*entity.Receipt, error) {
		return nil, client.ErrServer
	}

	_, err := s.workflow.Submit(context.Background(), namedIntent(2000))
	s.Require().NoError(err)

	s.Require().Len(s.journal.resolved, 1)
	s.Equal(entity.JournalOutcomeAmbiguous, s.journal.resolved[0].Outcome)
	s.Nil(s.journal.resolved[0].ResolvedAt)
}

func (s *WorkflowSuite) TestJournalFailureDoesNotStopCheckout() {
	s.journal.recordErr = errors.New("mysql gone")

	outcome, err := s.workflow.Submit(context.Background(), namedIntent(2000))
	s.Require().NoError(err)
	s.Equal(OutcomeSuccess, outcome.Status)
	s.Equal(1, s.checkout.opened())
}

func (s *WorkflowSuite) TestWorksWithoutJournal() {
	workflow := NewWorkflow(WorkflowConfig{Threshold: 1000}, s.api, provider.NewRegistry(s.checkout), nil, nil, nil)

	outcome, err := workflow.Submit(context.Background(), namedIntent(500))
	s.Require().NoError(err)
	s.Equal(OutcomeSuccess, outcome.Status)
	s.ErrorIs(workflow.OpenReceipt(), provider.ErrUnsupportedPlatform)
}

func (s *WorkflowSuite) TestCreateDonationThreshold() {
	workflow := s.newWorkflow(WorkflowConfig{EntryPoint: entity.EntryPointCreateDonation, Threshold: 1000})

	outcome, err := workflow.Submit(context.Background(), namedIntent(1500))
	s.Require().NoError(err)
	s.Equal(OutcomeBlocked, outcome.Status)
	s.Equal(validation.FieldPAN, outcome.Field)
	s.Equal(0, s.api.intentCount())
}

func (s *WorkflowSuite) TestContextCancelledDuringCheckout() {
	ctx, cancel := context.WithCancel(context.Background())
	s.checkout.openFn = func(ctx context.Context, _ *provider.OpenInput) *entity.CheckoutResult {
		cancel()
		<-ctx.Done()
		return entity.Cancelled("checkout abandoned")
	}

	var confirmCtxErr error
	var hasDeadline bool
	s.api.confirmFn = func(ctx context.Context, record *entity.ConfirmationRecord) (*entity.Receipt, error) {
		confirmCtxErr = ctx.Err()
		_, hasDeadline = ctx.Deadline()
		if confirmCtxErr != nil {
			return nil, confirmCtxErr
		}
		return nil, nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		outcome, err := s.workflow.Submit(ctx, namedIntent(2000))
		s.NoError(err)
		s.Equal(OutcomeCancelled, outcome.Status)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		s.Fail("submit did not return after cancellation")
	}

	s.NoError(confirmCtxErr)
	s.True(hasDeadline)
	confirmed := s.api.confirmed()
	s.Require().Len(confirmed, 1)
	s.Equal(entity.ConfirmationCancelled, confirmed[0].Status)
	s.Require().Len(s.journal.resolved, 1)
	s.Equal(entity.JournalOutcomeCancelled, s.journal.resolved[0].Outcome)
}

func (s *WorkflowSuite) TestBlockedResubmitKeepsPreviousOrder() {
	var asked []string
	s.api.statusFn = func(_ context.Context, providerOrderID string) (*entity.OrderStatus, error) {
		asked = append(asked, providerOrderID)
		return &entity.OrderStatus{Status: "PAID"}, nil
	}

	_, err := s.workflow.Submit(context.Background(), namedIntent(2000))
	s.Require().NoError(err)

	outcome, err := s.workflow.Submit(context.Background(), &entity.DonationIntent{Amount: 15000, IsAnonymous: true})
	s.Require().NoError(err)
	s.Equal(OutcomeBlocked, outcome.Status)

	status, err := s.workflow.RefreshStatus(context.Background())
	s.Require().NoError(err)
	s.Equal("PAID", status.Status)
	s.Equal([]string{"order_1"}, asked)
}
