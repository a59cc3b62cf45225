package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quad400/kaydee-boutique/config"
	"github.com/quad400/kaydee-boutique/internal/delivery"
	grpcdelivery "github.com/quad400/kaydee-boutique/internal/delivery/grpc"
	"github.com/quad400/kaydee-boutique/internal/usecase"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and the gRPC health endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), rootOpts)
		},
	}
}

func runServe(parent context.Context, opts *RootOptions) (err error) {
	cfg, logger, err := setup(opts)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Unrecovered panic in serve: %v", r)
			err = WrapExitError(ExitFailure, "fatal fault", fmt.Errorf("%v", r))
		}
	}()

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Infof("Starting Kaydee Boutique: %s", describe(cfg))

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	store, err := openStorage(connectCtx, cfg, logger)
	cancel()
	if err != nil {
		return WrapExitError(ExitFailure, "failed to open storage", err)
	}
	defer store.close()

	httpLis, err := net.Listen("tcp", cfg.HTTPPort)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to listen for HTTP", err)
	}
	grpcLis, err := net.Listen("tcp", cfg.GrpcPort)
	if err != nil {
		_ = httpLis.Close()
		return WrapExitError(ExitFailure, "failed to listen for gRPC", err)
	}

	return runServer(ctx, cfg, store, logger, httpLis, grpcLis)
}

// runServer serves until ctx is done, a server fails or a handler faults,
// then shuts both servers down within the configured timeout. A fault is
// reported as an ExitFailure error.
func runServer(ctx context.Context, cfg *config.Config, store *storage, logger *logrus.Logger, httpLis, grpcLis net.Listener) error {
	runCtx, fault := context.WithCancelCause(ctx)
	defer fault(nil)

	policy := usecase.NewRolePolicy()
	router := delivery.NewRouter(delivery.RouterConfig{
		Products:       usecase.NewProductUseCase(store.products, store.categories, policy, logger),
		Categories:     usecase.NewCategoryUseCase(store.categories, policy, logger),
		Carts:          usecase.NewCartUseCase(store.carts, store.products, policy, logger),
		Sessions:       store.sessions,
		RequestTimeout: cfg.RequestTimeout,
		OnFault:        fault,
	}, logger)
	logger.Info("Handlers initialized.")

	httpServer := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	health := grpcdelivery.NewHealthServer(logger)

	serveErr := make(chan error, 2)
	go func() {
		logger.Infof("HTTP server listening on %s", httpLis.Addr())
		if err := httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("http server failed: %w", err)
		}
	}()
	go func() {
		if err := health.Serve(grpcLis); err != nil {
			serveErr <- err
		}
	}()
	health.SetServing(true)

	var runErr error
	select {
	case <-runCtx.Done():
	case runErr = <-serveErr:
	}

	cause := context.Cause(runCtx)
	faulted := runCtx.Err() != nil && cause != nil && !errors.Is(cause, context.Canceled)
	switch {
	case runErr != nil:
		logger.Errorf("Server failed, shutting down: %v", runErr)
	case faulted:
		logger.Errorf("Fault detected, shutting down: %v", cause)
	default:
		logger.Info("Shutdown requested")
	}

	health.SetServing(false)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("HTTP server shutdown error: %v", err)
	}
	health.Stop(shutdownCtx)
	logger.Info("Servers stopped")

	if runErr != nil {
		return WrapExitError(ExitFailure, "server error", runErr)
	}
	if faulted {
		return WrapExitError(ExitFailure, "stopped after fault", cause)
	}
	return nil
}
