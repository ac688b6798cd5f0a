package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var caseCmd = &cobra.Command{
	Use:   "case",
	Short: "Case timeline and attachment commands",
}

var caseTimelineCmd = &cobra.Command{
	Use:   "timeline <case-id>",
	Short: "Show the timeline of a case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, cleanup := mustCreateApplication()
		defer cleanup()

		events, err := app.api.GetCaseTimeline(context.Background(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), events)
	},
}

var caseAttachCmd = &cobra.Command{
	Use:   "attach <case-id> <file>",
	Short: "Upload a file to a case",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, cleanup := mustCreateApplication()
		defer cleanup()

		file, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer file.Close()

		attachment, err := app.api.UploadCaseAttachment(context.Background(), args[0], filepath.Base(args[1]), file)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), attachment)
	},
}

func init() {
	rootCmd.AddCommand(caseCmd)
	caseCmd.AddCommand(caseTimelineCmd)
	caseCmd.AddCommand(caseAttachCmd)
}
