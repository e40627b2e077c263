package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/cometbft/cometbft/abci/server"
	"github.com/spf13/cobra"

	"github.com/satoshitonakomito/happybomber/internal/app"
	"github.com/satoshitonakomito/happybomber/internal/state"
)

func startCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the ABCI application server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := cfg.Logger()
			if err != nil {
				return err
			}

			var store *state.Store
			if cfg.DBBackend == "memdb" {
				store = state.NewMemStore()
			} else {
				store, err = state.OpenStore(cfg.DataDir(), cfg.DBBackend)
				if err != nil {
					return err
				}
			}
			defer func() { _ = store.Close() }()

			a, err := app.New(store, logger)
			if err != nil {
				return fmt.Errorf("init app: %w", err)
			}

			srv, err := server.NewServer(cfg.ABCIAddr, cfg.Transport, a)
			if err != nil {
				return fmt.Errorf("create abci server: %w", err)
			}
			if err := srv.Start(); err != nil {
				return fmt.Errorf("abci server start: %w", err)
			}
			defer func() { _ = srv.Stop() }()

			logger.Info("abci server listening", "addr", cfg.ABCIAddr, "transport", cfg.Transport, "home", cfg.Home, "db_backend", cfg.DBBackend)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()
			logger.Info("shutting down")
			return nil
		},
	}
	cmd.Flags().String("abci_addr", "", "ABCI listen address (overrides config)")
	cmd.Flags().String("transport", "", "ABCI transport socket|grpc (overrides config)")
	cmd.Flags().String("log_level", "", "log level (overrides config)")
	return cmd
}
