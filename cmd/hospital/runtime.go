package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/smart-hospital-client/internal/app"
	"github.com/spec-kit/smart-hospital-client/internal/config"
	"github.com/spec-kit/smart-hospital-client/internal/domain"
	"github.com/spec-kit/smart-hospital-client/internal/observability"
	"github.com/spec-kit/smart-hospital-client/internal/ui"
)

// clientRuntime is everything a client command needs, opened from config.
type clientRuntime struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *observability.Metrics
	storage *app.Storage
	term    *ui.Terminal
	app     *app.App
}

func openRuntime(ctx context.Context, out io.Writer, hash domain.Hash) (*clientRuntime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if ephemeral {
		cfg.Store.Backend = config.StoreMemory
	}
	return newRuntime(ctx, cfg, out, hash)
}

func newRuntime(ctx context.Context, cfg *config.Config, out io.Writer, hash domain.Hash) (*clientRuntime, error) {
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	metrics := observability.NewMetrics()

	storage, err := app.OpenStorage(ctx, cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	term := ui.NewTerminal(out)
	client, err := app.New(app.Dependencies{
		Config:  cfg,
		Store:   storage.Store,
		View:    term,
		Logger:  logger,
		Metrics: metrics,
		Hash:    hash,
	})
	if err != nil {
		storage.Close()
		_ = logger.Sync()
		return nil, err
	}

	return &clientRuntime{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		storage: storage,
		term:    term,
		app:     client,
	}, nil
}

func (r *clientRuntime) Close() {
	r.storage.Close()
	_ = r.logger.Sync()
}

// settle waits for the work started by one command to finish.
func (r *clientRuntime) settle(ctx context.Context) error {
	timeout := r.cfg.API.RequestTimeout()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	waitCtx, cancel := context.WithTimeout(ctx, 2*timeout)
	defer cancel()
	return r.app.WaitIdle(waitCtx)
}

// oneShot runs the event loop just long enough for fn and its follow-up
// work to complete.
func (r *clientRuntime) oneShot(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- r.app.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	if err := fn(ctx); err != nil {
		return err
	}
	if err := r.settle(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("timed out waiting for the server: %w", err)
		}
		return err
	}
	return nil
}

// lastFailed reports whether the most recent notification is an error.
func (r *clientRuntime) lastFailed() bool {
	n := r.term.Snapshot().Notification
	return n != nil && n.Level == domain.NotificationError
}
