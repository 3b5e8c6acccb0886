package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/specialistvlad/flowsync/internal/ctxlog"
	"golang.org/x/sync/errgroup"
)

// Run serves the relay on the configured address until ctx is cancelled and
// then shuts the HTTP server and the socket.io server down.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.config.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener. The listener is closed on return.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Serve method started.")

	srv := &http.Server{
		Handler:     a.handler,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return a.hub.Run(gctx)
	})

	group.Go(func() error {
		a.logger.Info("🩺 Relay server starting", "address", fmt.Sprintf("http://%s", ln.Addr()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("relay server failed: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-gctx.Done()
		a.logger.Info("🩺 Shutting down relay server...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.config.ShutdownTimeout)
		defer cancel()

		if err := a.sockets.Close(shutdownCtx); err != nil {
			a.logger.Warn("Socket.io server close failed.", "error", err)
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("Relay server shutdown failed", "error", err)
			return err
		}
		a.logger.Debug("Relay server shut down gracefully.")
		return nil
	})

	err := group.Wait()
	a.logger.Debug("App.Serve method finished.")
	return err
}
