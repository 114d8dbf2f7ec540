package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/swamp-dev/mindcare/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the journal as a local JSON API",
	Long: `Serve starts an HTTP API over the same store the other commands use, for
a browser front end running on an allowed origin.

Examples:
  mindcare serve
  mindcare serve --addr 127.0.0.1:9090`,
	RunE: runServe,
}

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := serveAddr
	if addr == "" {
		addr = a.cfg.Server.Addr
	}

	srv := server.New(a.svc, server.Options{
		AllowedOrigins: a.cfg.Server.AllowedOrigins,
		RequestTimeout: a.cfg.Server.RequestTimeout,
	}, logger)
	return srv.ListenAndServe(ctx, addr)
}
