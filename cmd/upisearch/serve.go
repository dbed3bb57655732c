package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sozercan/upi-search/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search pipeline over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx, "info")
		if err != nil {
			return err
		}
		defer a.Close(ctx)

		if servePort > 0 {
			a.cfg.Server.Port = servePort
		}

		if err := a.service.HealthCheck(ctx); err != nil {
			a.logger.Warn("Backend health check failed, serving anyway", zap.Error(err))
		}

		srv := server.New(a.cfg.Server, a.service, a.logger.Named("server"))
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Override server.port")
}
