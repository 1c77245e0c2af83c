package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httptransport "github.com/spec-kit/smart-hospital-client/internal/api/http"
	"github.com/spec-kit/smart-hospital-client/internal/config"
	"github.com/spec-kit/smart-hospital-client/internal/observability"
)

var serveDevCmd = &cobra.Command{
	Use:   "serve-dev",
	Short: "Run an in-memory stand-in for the hospital API",
	Args:  cobra.NoArgs,
	RunE:  runServeDev,
}

func runServeDev(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	metrics := observability.NewMetrics()
	app := httptransport.NewDevServer(cfg, logger, metrics, nil)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("dev server listening", zap.String("addr", cfg.DevServer.Addr()))
		return app.Listen(cfg.DevServer.Addr())
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(5 * time.Second)
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
