package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cachelabs/unicache/internal/httpstats"
	"github.com/cachelabs/unicache/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the read-only HTTP introspection server",
	Long: `serve exposes GET /healthz, GET /stats, and GET /metrics over HTTP
for monitoring a running cache directory. It never mutates the cache.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: from config, server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	c, err := openCache()
	if err != nil {
		return err
	}
	defer c.Close()

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	logger.Info("introspection server starting", "addr", addr)
	return httpstats.Serve(ctx, addr, c, cfg.CacheDir, nil, cfg.Server.ReadTimeout, cfg.Server.ShutdownTimeout)
}
