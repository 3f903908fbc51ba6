package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"sprintdesk/internal/config"
	"sprintdesk/internal/server"
)

func newSrvCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "srv",
		Short: "Run the sprintdesk API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg == nil {
				return fmt.Errorf("config not initialized")
			}

			logger := slog.Default().With("component", "server")

			addr, err := server.ListenAddr(cfg.APIURL)
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			logger.Info("opening database", "driver", cfg.Storage.Driver, "path", cfg.Storage.DBPath)
			st, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			srv := server.New(addr, st, loc, logger)
			return srv.ListenAndServe(cmd.Context())
		},
	}
}
