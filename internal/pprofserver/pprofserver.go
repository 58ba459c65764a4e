// Package pprofserver serves the runtime profiling endpoints on a separate listener.
package pprofserver

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/myrjola/huntdesk/internal/errors"
)

func Handle(mux *http.ServeMux) {
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
}

func newServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	Handle(mux)
	return mux
}

func newServer(addr string) *http.Server {
	return &http.Server{ //nolint:exhaustruct // defaults are fine for the rest
		Addr:              addr,
		Handler:           newServeMux(),
		ReadHeaderTimeout: time.Second,
	}
}

// Launch a pprof server at addr, which should be a loopback address so that it's not open to the world.
// The server shuts down when ctx is done.
func Launch(ctx context.Context, addr string, logger *slog.Logger) {
	srv := newServer(addr)
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	go func() {
		logger.LogAttrs(ctx, slog.LevelInfo, "starting pprof server", slog.String("pprof_addr", addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.LogAttrs(ctx, slog.LevelError, "pprof server stopped",
				errors.SlogError(errors.Wrap(err, "listen and serve", slog.String("pprof_addr", addr))))
		}
	}()
}
