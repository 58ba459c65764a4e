package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/myrjola/huntdesk/internal/e2etest"
	"github.com/myrjola/huntdesk/internal/errors"
)

const (
	// writeTimeout leaves room for a hunt or playbook completion, which can take minutes.
	writeTimeout    = 3 * time.Minute
	readTimeout     = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

func (app *application) configureAndStartServer(ctx context.Context, addr string) error {
	var err error
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownComplete := make(chan struct{})
	srv := &http.Server{ //nolint:exhaustruct // defaults are fine for the rest
		ErrorLog:          slog.NewLogLogger(app.logger.Handler(), slog.LevelError),
		Handler:           app.routes(writeTimeout),
		IdleTimeout:       time.Minute,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		ReadHeaderTimeout: time.Second,
	}
	go func() {
		defer close(shutdownComplete)
		<-ctx.Done()
		app.logger.LogAttrs(ctx, slog.LevelInfo, "shutting down server")

		// We received an interrupt signal or the parent context is done, shut down.
		shutdownContext, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if shutdownErr := srv.Shutdown(shutdownContext); shutdownErr != nil {
			shutdownErr = errors.Wrap(shutdownErr, "shutdown server")
			app.logger.LogAttrs(ctx, slog.LevelError, "error shutting down server", errors.SlogError(shutdownErr))
		}
	}()

	var listener net.Listener
	if listener, err = net.Listen("tcp", addr); err != nil {
		stop()
		<-shutdownComplete
		return errors.Wrap(err, "TCP listen")
	}
	app.logger.LogAttrs(ctx, slog.LevelInfo, "starting server",
		slog.String(e2etest.LogAddrKey, listener.Addr().String()))
	if err = srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server serve")
	}
	<-shutdownComplete

	return nil
}
