package cli

import (
	"fmt"

	"github.com/iudanet/possync/internal/client/iocli"
	"github.com/iudanet/possync/internal/client/storage"
	"github.com/iudanet/possync/internal/client/sync"
	"github.com/iudanet/possync/internal/models"
)

// Cli executes one terminal command against the sync manager. The effective
// session (server, tenant, user, token) is resolved by main from flags and
// the saved session; login persists it so later invocations need no flags.
type Cli struct {
	manager  *sync.Manager
	io       iocli.IO
	sessions storage.StateStorage
	session  *models.Session
}

func New(manager *sync.Manager, io iocli.IO, sessions storage.StateStorage, session *models.Session) *Cli {
	return &Cli{
		manager:  manager,
		io:       io,
		sessions: sessions,
		session:  session,
	}
}

func PrintUsage() {
	fmt.Println("POS Sync Client")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  possync [OPTIONS] COMMAND")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version            Show version information")
	fmt.Println("  --server URL         Server URL (default: http://localhost:8080)")
	fmt.Println("  --db PATH            Path to local database (default: possync-client.db)")
	fmt.Println("  --tenant ID          Tenant identifier")
	fmt.Println("  --user ID            User identifier recorded on queued operations")
	fmt.Println("  --token TOKEN        Bearer token (not recommended, use env var or file)")
	fmt.Println("  --token-file PATH    Path to file containing the bearer token")
	fmt.Println()
	fmt.Println("Token Priority (highest to lowest):")
	fmt.Println("  1. POSSYNC_TOKEN environment variable")
	fmt.Println("  2. --token-file (file path)")
	fmt.Println("  3. --token (command line)")
	fmt.Println("  4. Saved session (after 'possync login')")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  login                        Save server, tenant, user and token locally")
	fmt.Println("  logout                       Drop the saved session")
	fmt.Println("  status                       Show connectivity and queue counters")
	fmt.Println("  enqueue <op> <entity> <json> Queue a mutation (create, update, delete)")
	fmt.Println("  queue [status]               List queued operations")
	fmt.Println("  remove <id>                  Remove a queued operation")
	fmt.Println("  sync                         Replay pending operations now")
	fmt.Println("  exceptions [--all]           List sync exceptions")
	fmt.Println("  resolve <id> <resolution>    Resolve an exception")
	fmt.Println("  cache <entity>               Show cached records for an entity")
	fmt.Println("  cache-clear [entity]         Drop cached records")
	fmt.Println("  watch                        Run the auto-sync loop until interrupted")
	fmt.Println()
	fmt.Println("Resolutions: use_local, use_server, merge, discard")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  export POSSYNC_TOKEN='eyJhbGciOi...'")
	fmt.Println("  possync --server https://erp.example.com --tenant shop-42 --user cashier-7 login")
	fmt.Println("  possync enqueue create invoice '{\"id\":\"inv-1\",\"total\":99.5}'")
	fmt.Println("  possync queue pending")
	fmt.Println("  possync sync")
	fmt.Println("  possync exceptions")
	fmt.Println("  possync resolve b692f5c0-2d88-4aa1-a9e1-13aa6e4976d5 use_local")
	fmt.Println("  possync cache invoice")
	fmt.Println("  possync watch")
}
