package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/iudanet/possync/internal/client/api"
	"github.com/iudanet/possync/internal/client/cli"
	"github.com/iudanet/possync/internal/client/iocli"
	"github.com/iudanet/possync/internal/client/storage"
	"github.com/iudanet/possync/internal/client/storage/boltdb"
	"github.com/iudanet/possync/internal/client/sync"
	"github.com/iudanet/possync/internal/models"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", "", "Server URL")
	dbPath := flag.String("db", "possync-client.db", "Path to local database")
	tenantID := flag.String("tenant", "", "Tenant identifier")
	userID := flag.String("user", "", "User identifier")
	token := flag.String("token", "", "Bearer token")
	tokenFile := flag.String("token-file", "", "Path to file containing the bearer token")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage()
		os.Exit(1)
	}

	command := args[0]

	ctx := context.Background()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	boltStorage, err := boltdb.New(ctx, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := boltStorage.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	session, err := resolveSession(ctx, boltStorage, *serverURL, *tenantID, *userID, *token, *tokenFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	apiClient := api.NewClient(session.ServerURL)

	manager, err := sync.NewManager(boltStorage, sync.Options{
		APIClient: apiClient,
		Token:     func() string { return session.Token },
		Logger:    logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build sync manager: %v\n", err)
		os.Exit(1)
	}

	// watch starts the manager itself after wiring its event subscriptions,
	// login and logout never go over the network.
	switch command {
	case "watch", "login", "logout":
	default:
		if err := manager.Start(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to start sync manager: %v\n", err)
			os.Exit(1)
		}
		defer manager.Close()
	}

	c := cli.New(manager, iocli.NewStdio(), boltStorage, session)
	c.Run(ctx, command, args[1:])
}

// resolveSession merges the saved session with command-line overrides. Flags
// win over the saved values, the token additionally honours the environment
// variable and token file.
func resolveSession(ctx context.Context, store storage.StateStorage, serverURL, tenantID, userID, token, tokenFile string) (*models.Session, error) {
	session := &models.Session{}

	saved, err := store.GetSession(ctx)
	switch {
	case err == nil:
		session = saved
	case errors.Is(err, storage.ErrSessionNotFound):
	default:
		return nil, fmt.Errorf("failed to read saved session: %w", err)
	}

	if serverURL != "" {
		session.ServerURL = serverURL
	}
	if session.ServerURL == "" {
		session.ServerURL = "http://localhost:8080"
	}
	if tenantID != "" {
		session.TenantID = tenantID
	}
	if userID != "" {
		session.UserID = userID
	}

	resolved, err := resolveToken(token, tokenFile)
	if err != nil {
		return nil, err
	}
	if resolved != "" {
		session.Token = resolved
	}

	return session, nil
}

// resolveToken returns the bearer token from the environment, a token file or
// the command line, in that priority. Empty result means the saved session's
// token stays in effect.
func resolveToken(token, tokenFile string) (string, error) {
	if envToken := os.Getenv("POSSYNC_TOKEN"); envToken != "" {
		return envToken, nil
	}

	if tokenFile != "" {
		content, err := os.ReadFile(tokenFile)
		if err != nil {
			return "", fmt.Errorf("failed to read token file: %w", err)
		}
		resolved := strings.TrimSpace(string(content))
		if resolved == "" {
			return "", fmt.Errorf("token file is empty")
		}
		return resolved, nil
	}

	return token, nil
}

func printVersion() {
	fmt.Printf("POS Sync Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
