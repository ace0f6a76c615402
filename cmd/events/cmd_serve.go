package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/kashvi-events/config"
	"github.com/shashiranjanraj/kashvi-events/internal/server"
)

var serveAddrFlag string

// events serve — expose /events, /healthz and /metrics.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve dispatcher introspection and Prometheus metrics over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := boot()
		if err != nil {
			return err
		}
		defer a.Shutdown()

		addr := serveAddrFlag
		if addr == "" {
			addr = config.HTTPAddr()
		}
		return server.Start(ctx, addr, a.Events())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddrFlag, "addr", "", "Listen address (default HTTP_ADDR)")
}
