package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the schema (postgres) or indexes (mongo) for the configured storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context(), rootOpts)
		},
	}
}

func runMigrate(parent context.Context, opts *RootOptions) error {
	cfg, logger, err := setup(opts)
	if err != nil {
		return err
	}
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, time.Minute)
	defer cancel()

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to open storage", err)
	}
	defer store.close()

	logger.Infof("Migrating %s", describe(cfg))
	if err := store.migrate(ctx); err != nil {
		return WrapExitError(ExitFailure, "migration failed", err)
	}
	logger.Info("Migration complete")
	return nil
}
