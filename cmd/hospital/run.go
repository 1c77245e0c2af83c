package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/spec-kit/smart-hospital-client/internal/ui"
)

var startPage string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interactive client",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func init() {
	runCmd.Flags().StringVar(&startPage, "page", "", "signed-out page to start on (login or register)")
}

func runShell(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	rt, err := openRuntime(ctx, out, ui.ParseHash(startPage))
	if err != nil {
		return err
	}
	defer rt.Close()

	sh := newShell(rt, cmd.InOrStdin(), out)
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		sh.password = func(context.Context) (string, error) {
			return promptPassword(f, out)
		}
	}

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(loopCtx)

	g.Go(func() error {
		if err := rt.app.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	if addr := rt.cfg.Metrics.Addr; addr != "" {
		srv := &http.Server{Addr: addr, Handler: rt.metrics.Handler(), ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			rt.logger.Info("metrics listening", zap.String("addr", addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics listener: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		defer cancel()
		return sh.loop(gctx)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		fmt.Fprintln(out)
		return nil
	}
	return err
}
