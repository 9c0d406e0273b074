package setup

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	// #nosec G108 -- the profiling mux is only ever bound to localhost
	_ "net/http/pprof"
	"time"

	"go.uber.org/zap"
)

// pprofServer serves runtime profiling data on a localhost-only port.
type pprofServer struct {
	srv      *http.Server
	listener net.Listener
}

// startPprofServer binds the profiling server to localhost and serves
// in the background until shutdown.
func startPprofServer(port int, logger *zap.Logger) (*pprofServer, error) {
	addr := net.JoinHostPort("localhost", fmt.Sprintf("%d", port))

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           http.DefaultServeMux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		logger.Info("Serving pprof", zap.String("address", addr))

		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Pprof server stopped unexpectedly", zap.Error(err))
		}
	}()

	return &pprofServer{srv: srv, listener: listener}, nil
}
