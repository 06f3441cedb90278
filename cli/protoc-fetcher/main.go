package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/glorpus-work/protoc-fetcher/internal/cli"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	logLevel   string
	logFormat  string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}

	cancel()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "protoc-fetcher",
		Short: "Download and cache pinned protoc releases",
		Long: `protoc-fetcher downloads the official protobuf compiler release for a
given version, caches it by version and prints the path to the binary.

  protoc-fetcher fetch 31.1
  PROTOC=$(protoc-fetcher fetch 31.1) go generate ./...`,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: auto-detect)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (same as --log-level debug)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json)")

	// Set up CLI pkg variables
	cli.ConfigPath = &configPath
	cli.Verbose = &verbose
	cli.LogLevel = &logLevel
	cli.LogFormat = &logFormat

	cmd.AddCommand(
		cli.NewFetchCmd(),
		cli.NewPathCmd(),
		cli.NewPlatformCmd(),
		cli.NewConfigCmd(),
		cli.NewVersionCmd(),
	)

	return cmd
}
