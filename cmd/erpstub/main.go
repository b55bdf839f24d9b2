package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iudanet/possync/internal/server/handlers"
	"github.com/iudanet/possync/internal/server/middleware"
	"github.com/iudanet/possync/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	addr := flag.String("addr", ":8080", "Listen address")
	dbPath := flag.String("db", "erpstub.db", "Path to SQLite database")
	jwtSecret := flag.String("jwt-secret", "", "JWT signing secret (required)")
	issueToken := flag.String("issue-token", "", "Print an access token for the given user ID and exit")
	rateLimit := flag.Int("rate-limit", 100, "Requests per minute per client")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if *jwtSecret == "" {
		logger.Error("jwt-secret is required")
		os.Exit(1)
	}

	jwtCfg := handlers.JWTConfig{
		Secret:         []byte(*jwtSecret),
		AccessTokenTTL: 24 * time.Hour,
	}

	if *issueToken != "" {
		token, _, err := handlers.GenerateAccessToken(jwtCfg, *issueToken)
		if err != nil {
			logger.Error("failed to generate token", "error", err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	if err := run(*addr, *dbPath, *rateLimit, jwtCfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(addr, dbPath string, rateLimit int, jwtCfg handlers.JWTConfig, logger *slog.Logger) error {
	store, err := sqlite.New(context.Background(), dbPath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer store.Close()

	limiter := middleware.NewRateLimiter(rateLimit, time.Minute, logger)
	defer limiter.Stop()

	mutations := handlers.NewMutationHandler(store, logger)
	health := handlers.NewHealthHandler(logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", health.Health)
	mux.Handle("/", middleware.AuthMiddleware(logger, jwtCfg)(http.HandlerFunc(mutations.Handle)))

	handler := middleware.LoggingMiddleware(logger)(
		middleware.RecoveryMiddleware(logger)(
			limiter.Middleware(mux),
		),
	)

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("erpstub listening", "addr", addr, "db", dbPath)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
	}

	return nil
}

func printVersion() {
	fmt.Printf("ERP Stub Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
