// Package main provides the spazzctl CLI for talking to a running engine.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0-dev"
	serverAddr string
	adminKey   string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:     "spazzctl",
		Short:   "Inspect and drive a running Spazz engine over its HTTP API",
		Version: version,
	}

	rootCmd.PersistentFlags().StringVarP(&serverAddr, "server", "s", "http://localhost:8080", "Engine base URL")
	rootCmd.PersistentFlags().StringVarP(&adminKey, "key", "k", os.Getenv("SPAZZ_ADMIN_KEY"), "Admin bearer token for write commands")

	rootCmd.AddCommand(
		newStatusCmd(),
		newEntitiesCmd(),
		newPairCmd(),
		newCheckinCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}
