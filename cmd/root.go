package cmd

import (
	"context"
	"fmt"
	"os"

	"stockroom/internal/config"
	"stockroom/internal/core/container"
	"stockroom/internal/core/logger"
	"stockroom/internal/database"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app is what every subcommand runs against, built once the flags are parsed.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	container *container.Container
}

func (a *app) load(cmd *cobra.Command, withStore bool) error {
	if backend, _ := cmd.Flags().GetString("backend"); backend != "" {
		if err := os.Setenv("STORE_BACKEND", backend); err != nil {
			return err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger.NewLogger(cfg.LogLevel)

	if !withStore {
		return nil
	}
	c, err := container.NewAppContainer(cmd.Context(), cfg, a.logger)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	a.container = c
	return nil
}

func (a *app) close() {
	if a.container != nil {
		a.container.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the relational backend's tables.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.load(cmd, false); err != nil {
				return err
			}
			migrationDir, _ := cmd.Flags().GetString("dir")
			if migrationDir == "" {
				migrationDir = a.cfg.Database.MigrationsDir
			}

			if err := database.RunMigrations(a.cfg.Database.URL, migrationDir, a.logger); err != nil {
				return fmt.Errorf("migrate database: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().String("dir", "", "Directory containing the migration files (defaults to MIGRATIONS_DIR)")
	return cmd
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "stockroom",
		Short:         "Inventory ledger and project reconciliation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("backend", "", "Store backend: memory, postgres or sheets (overrides STORE_BACKEND)")

	rootCmd.AddCommand(
		newMigrateCmd(a),
		newReconcileCmd(a),
		newWorkerCmd(a),
		newLowStockCmd(a),
		newOutstandingCmd(a),
		newExportCmd(a),
		newStatsCmd(a),
		newConfirmCmd(a),
		newProjectCmd(a),
		newReportIssueCmd(a),
		newIssuesCmd(a),
	)
	return rootCmd
}

func Execute(ctx context.Context) {
	a := &app{}
	err := newRootCmd(a).ExecuteContext(ctx)
	a.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
