package cli

import (
	"context"
	"fmt"
	"os"
)

func (c *Cli) Run(ctx context.Context, command string, args []string) {
	var err error

	switch command {
	case "login":
		err = c.runLogin(ctx)
	case "logout":
		err = c.runLogout(ctx)
	case "status":
		err = c.runStatus(ctx)
	case "enqueue":
		err = c.runEnqueue(ctx, args)
	case "queue":
		err = c.runQueue(ctx, args)
	case "remove":
		err = c.runRemove(ctx, args)
	case "sync":
		err = c.runSync(ctx)
	case "exceptions":
		err = c.runExceptions(ctx, args)
	case "resolve":
		err = c.runResolve(ctx, args)
	case "cache":
		err = c.runCache(ctx, args)
	case "cache-clear":
		err = c.runCacheClear(ctx, args)
	case "watch":
		err = c.runWatch(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		PrintUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
