package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"donation-route-service/internal/adapters/repositories"
	"donation-route-service/internal/config"
	"donation-route-service/internal/platform/db"
	"donation-route-service/internal/platform/obs"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfg    *config.Config
		logger *zap.Logger
	)

	root := &cobra.Command{
		Use:           "dbtool",
		Short:         "Database maintenance for the donation route service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = config.Load(); err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required")
			}
			logger, err = obs.NewLogger(cfg.AppEnv, "dbtool")
			return err
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			pg, err := db.Open(cmd.Context(), cfg.DatabaseURL, db.DefaultPoolOptions())
			if err != nil {
				return err
			}
			defer pg.Close()
			return db.Migrate(pg, logger)
		},
	}

	var seedPath string
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Migrate, then load food banks and donations from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if seedPath == "" {
				seedPath = cfg.SeedPath
			}

			pg, err := db.Open(cmd.Context(), cfg.DatabaseURL, db.DefaultPoolOptions())
			if err != nil {
				return err
			}
			defer pg.Close()

			if err := db.Migrate(pg, logger); err != nil {
				return err
			}
			if err := repositories.SeedFromJSON(cmd.Context(), pg, seedPath); err != nil {
				return err
			}
			logger.Info("seeding complete", zap.String("path", seedPath))
			return nil
		},
	}
	seedCmd.Flags().StringVar(&seedPath, "file", "", "seed file (defaults to SEED_PATH)")

	root.AddCommand(migrateCmd, seedCmd)
	return root
}
