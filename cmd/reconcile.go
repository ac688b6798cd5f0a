package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vibast-solutions/go-donation-client/app/service"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Settle journaled donation orders that never reached an outcome",
	Long:  "Query the status of every stale unresolved order in the MySQL journal once and record the final outcome. Runs a single pass.",
	RunE:  runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	app, cleanup := mustCreateApplication()
	defer cleanup()

	if app.journal == nil {
		return errors.New("MYSQL_DSN is required for reconcile")
	}

	reconciler := service.NewReconciler(app.api, app.journal, app.cfg.Reconcile)

	var report *service.ReconcileReport
	err := runJob("reconcile", func() error {
		var err error
		report, err = reconciler.RunBatch(context.Background())
		return err
	})
	if report != nil {
		if printErr := printJSON(cmd.OutOrStdout(), report); printErr != nil {
			return printErr
		}
	}
	return err
}

func runJob(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	latency := time.Since(start)
	if err != nil {
		logrus.WithError(err).WithField("job", name).WithField("latency", latency.String()).Error("job_failed")
		return err
	}
	logrus.WithField("job", name).WithField("latency", latency.String()).Info("job_completed")
	return nil
}
