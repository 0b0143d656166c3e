package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"modelview/internal/cli"
)

func main() {
	// Ctrl+C / SIGTERM cancel the command context for a graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := cli.Run(ctx, os.Args[1:], &cli.Options{}); err != nil {
		fmt.Fprintf(os.Stderr, "modelview: %v\n", err)
		stop()
		os.Exit(1)
	}
}
