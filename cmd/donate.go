package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vibast-solutions/go-donation-client/app/controller"
	"github.com/vibast-solutions/go-donation-client/app/entity"
	"github.com/vibast-solutions/go-donation-client/app/provider"
	"github.com/vibast-solutions/go-donation-client/app/service"
)

var donateFlags struct {
	entryPoint  string
	amount      float64
	name        string
	mobile      string
	email       string
	address     string
	pan         string
	anonymous   bool
	eventID     string
	shareCode   string
	openReceipt bool
}

var donateCmd = &cobra.Command{
	Use:   "donate",
	Short: "Make a donation through Razorpay checkout",
	Long:  "Validate the donation, create an order, open Razorpay checkout in the browser and confirm the outcome.",
	RunE:  runDonate,
}

func init() {
	rootCmd.AddCommand(donateCmd)

	flags := donateCmd.Flags()
	flags.StringVar(&donateFlags.entryPoint, "entry-point", string(entity.EntryPointPublicCheckout), "Screen the donation comes from: public-checkout, donation-hub or create-donation")
	flags.Float64Var(&donateFlags.amount, "amount", 0, "Donation amount in rupees")
	flags.StringVar(&donateFlags.name, "name", "", "Donor full name")
	flags.StringVar(&donateFlags.mobile, "mobile", "", "Donor 10-digit mobile number")
	flags.StringVar(&donateFlags.email, "email", "", "Donor email")
	flags.StringVar(&donateFlags.address, "address", "", "Donor address")
	flags.StringVar(&donateFlags.pan, "pan", "", "Donor PAN")
	flags.BoolVar(&donateFlags.anonymous, "anonymous", false, "Donate anonymously (only below the disclosure threshold)")
	flags.StringVar(&donateFlags.eventID, "event", "", "Event the donation is for")
	flags.StringVar(&donateFlags.shareCode, "share-code", "", "Referral share code")
	flags.BoolVar(&donateFlags.openReceipt, "open-receipt", false, "Open the receipt in the browser when it is ready")
}

func runDonate(cmd *cobra.Command, _ []string) error {
	app, cleanup := mustCreateApplication()
	defer cleanup()

	entryPoint := entity.EntryPoint(strings.TrimSpace(donateFlags.entryPoint))
	threshold, err := thresholdFor(app.cfg, entryPoint)
	if err != nil {
		return err
	}

	shutdown := mustStartBridge(app.cfg.Bridge, controller.NewCheckoutController(app.sessions), app.registry)
	defer shutdown()

	var journal service.OrderJournal
	if app.journal != nil {
		journal = app.journal
	}
	workflow := service.NewWorkflow(service.WorkflowConfig{
		EntryPoint:    entryPoint,
		Threshold:     threshold,
		Currency:      app.cfg.Donations.Currency,
		ProviderCode:  provider.RazorpayCode,
		FallbackKeyID: app.cfg.Razorpay.PublicKey,
		Description:   "Donation",
	}, app.api, provider.NewRegistry(app.checkout()), journal, app.recorder, app.launcher)
	defer workflow.Unmount()

	workflow.OnStateChange(func(state service.State) {
		logrus.WithField("state", state.String()).Debug("Donation state changed")
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outcome, err := workflow.Submit(ctx, donationIntentFromFlags(app.cfg.Donations.Currency))
	if err != nil {
		return err
	}

	if err := printJSON(cmd.OutOrStdout(), outcomeView(outcome)); err != nil {
		return err
	}

	if donateFlags.openReceipt && outcome.Receipt.Available() {
		if err := workflow.OpenReceipt(); err != nil && !errors.Is(err, service.ErrReceiptUnavailable) {
			logrus.WithError(err).Warn("Failed to open receipt")
		}
	}
	if outcome.ReceiptPending && outcome.Order != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Check the receipt later with: donations status %s\n", outcome.Order.ProviderOrderID)
	}
	return nil
}

func donationIntentFromFlags(currency string) *entity.DonationIntent {
	intent := &entity.DonationIntent{
		Amount:       donateFlags.amount,
		Currency:     currency,
		DonorName:    donateFlags.name,
		DonorMobile:  donateFlags.mobile,
		DonorEmail:   donateFlags.email,
		DonorAddress: donateFlags.address,
		DonorPAN:     donateFlags.pan,
		IsAnonymous:  donateFlags.anonymous,
	}
	if v := strings.TrimSpace(donateFlags.eventID); v != "" {
		intent.EventID = &v
	}
	if v := strings.TrimSpace(donateFlags.shareCode); v != "" {
		intent.ShareCode = &v
	}
	return intent
}

type outcomeOutput struct {
	Status          string `json:"status"`
	Title           string `json:"title"`
	Message         string `json:"message"`
	Field           string `json:"field,omitempty"`
	OrderID         string `json:"orderId,omitempty"`
	ProviderOrderID string `json:"providerOrderId,omitempty"`
	ReceiptURL      string `json:"receiptUrl,omitempty"`
	ReceiptPending  bool   `json:"receiptPending,omitempty"`
}

func outcomeView(outcome *service.Outcome) *outcomeOutput {
	out := &outcomeOutput{
		Status:         string(outcome.Status),
		Title:          outcome.Title,
		Message:        outcome.Message,
		Field:          string(outcome.Field),
		ReceiptURL:     outcome.Receipt.PreferredURL(),
		ReceiptPending: outcome.ReceiptPending,
	}
	if outcome.Order != nil {
		out.OrderID = outcome.Order.OrderID
		out.ProviderOrderID = outcome.Order.ProviderOrderID
	}
	return out
}
