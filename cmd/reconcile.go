package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newReconcileCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Run one reconciliation pass into the analytics table.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(cmd, true); err != nil {
				return err
			}
			result, err := a.container.Reconciler.RunReconciliation(cmd.Context())
			if err != nil {
				return fmt.Errorf("reconcile: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "appended %d, updated %d, skipped %d\n", result.Appended, result.Updated, result.Skipped)
			return nil
		},
	}
}

func newWorkerCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Reconcile on a schedule until interrupted.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(cmd, true); err != nil {
				return err
			}
			if interval, _ := cmd.Flags().GetDuration("interval"); interval > 0 {
				a.cfg.ReconcileInterval = interval
			}

			err := a.container.NewWorker(a.cfg, a.logger).Run(cmd.Context())
			if errors.Is(err, context.Canceled) {
				a.logger.Info("shutting down", zap.Time("at", time.Now().UTC()))
				return nil
			}
			return err
		},
	}
	cmd.Flags().Duration("interval", 0, "Time between passes (defaults to RECONCILE_INTERVAL)")
	return cmd
}
