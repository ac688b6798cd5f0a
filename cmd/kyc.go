package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var kycFlags struct {
	approved bool
	remarks  string
}

var kycCmd = &cobra.Command{
	Use:   "kyc",
	Short: "Membership KYC commands",
}

var kycStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the KYC status of the current member",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, cleanup := mustCreateApplication()
		defer cleanup()

		status, err := app.api.GetKYCStatus(context.Background())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), status)
	},
}

var kycApproveCmd = &cobra.Command{
	Use:   "approve <kyc-id>",
	Short: "Approve or reject a KYC submission (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, cleanup := mustCreateApplication()
		defer cleanup()

		status, err := app.api.AdminApproveKYC(context.Background(), args[0], kycFlags.approved, kycFlags.remarks)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), status)
	},
}

func init() {
	rootCmd.AddCommand(kycCmd)
	kycCmd.AddCommand(kycStatusCmd)
	kycCmd.AddCommand(kycApproveCmd)

	kycApproveCmd.Flags().BoolVar(&kycFlags.approved, "approved", true, "Approve (true) or reject (false)")
	kycApproveCmd.Flags().StringVar(&kycFlags.remarks, "remarks", "", "Reviewer remarks")
}
