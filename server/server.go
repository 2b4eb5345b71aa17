package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/abiiranathan/pdfterms/metrics"
	"github.com/abiiranathan/pdfterms/routes"
)

// Options configure the HTTP server.
type Options struct {
	Port     int
	Services routes.Services
	Metrics  *metrics.Metrics

	// Searches over large documents can outlast the default write timeout.
	WriteTimeout time.Duration
}

// New creates the HTTP server serving the pdfterms API.
func New(opts Options) *http.Server {
	mux := http.NewServeMux()
	routes.SetupRoutes(mux, opts.Services)

	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 60 * time.Second
	}

	logger := slog.Default().With("component", "http")

	// Create a new http server to customize the timeouts.
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           routes.Logger(logger, opts.Metrics)(mux),
		ReadTimeout:       time.Second * 10,
		WriteTimeout:      writeTimeout,
		ReadHeaderTimeout: time.Second * 5,
	}
}

// Run serves until an interrupt, then shuts down gracefully.
func Run(opts Options) error {
	server := New(opts)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", "http://0.0.0.0"+server.Addr)
		err := server.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return fmt.Errorf("server terminated: %w", err)
	case <-quit:
	}
	return GracefulShutdown(server)
}

// Gracefully shuts down the server. The default timeout is 10 seconds
// To wait for pending connections.
func GracefulShutdown(server *http.Server, timeout ...time.Duration) error {
	var t time.Duration
	if len(timeout) > 0 {
		t = timeout[0]
	} else {
		t = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), t)
	defer cancel()

	slog.Info("shutting down the server")
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("shut down gracefully")
	return nil
}
