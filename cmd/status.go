package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vibast-solutions/go-donation-client/app/entity"
	"github.com/vibast-solutions/go-donation-client/app/service"
)

var statusOpenReceipt bool

var statusCmd = &cobra.Command{
	Use:   "status <provider-order-id>",
	Short: "Check a donation order and its receipt",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusOpenReceipt, "open", false, "Open the receipt in the browser when available")
}

type statusOutput struct {
	Status         string `json:"status"`
	ReceiptHTMLURL string `json:"receiptHtmlUrl,omitempty"`
	ReceiptPDFURL  string `json:"receiptPdfUrl,omitempty"`
	ReceiptPending bool   `json:"receiptPending"`

	Journal *journalOutput `json:"journal,omitempty"`
}

type journalOutput struct {
	OrderID    string     `json:"orderId"`
	EntryPoint string     `json:"entryPoint"`
	Outcome    string     `json:"outcome"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func journalView(entry *entity.JournalEntry) *journalOutput {
	if entry == nil {
		return nil
	}
	return &journalOutput{
		OrderID:    entry.OrderID,
		EntryPoint: string(entry.EntryPoint),
		Outcome:    entry.Outcome,
		ResolvedAt: entry.ResolvedAt,
		CreatedAt:  entry.CreatedAt,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	app, cleanup := mustCreateApplication()
	defer cleanup()

	ctx := context.Background()
	status, err := app.api.GetOrderStatus(ctx, args[0])
	if err != nil {
		return err
	}

	out := &statusOutput{Status: status.Status, ReceiptPending: !status.Receipt.Available()}
	if status.Receipt != nil {
		out.ReceiptHTMLURL = status.Receipt.HTMLURL
		out.ReceiptPDFURL = status.Receipt.PDFURL
	}
	if app.journal != nil {
		entry, err := app.journal.FindByProviderOrderID(ctx, args[0])
		if err != nil {
			logrus.WithError(err).Warn("Journal lookup failed")
		}
		out.Journal = journalView(entry)
	}
	if err := printJSON(cmd.OutOrStdout(), out); err != nil {
		return err
	}

	if statusOpenReceipt {
		if !status.Receipt.Available() {
			return service.ErrReceiptUnavailable
		}
		if err := app.launcher.Open(status.Receipt.PreferredURL()); err != nil {
			return fmt.Errorf("open receipt: %w", err)
		}
	}
	return nil
}
