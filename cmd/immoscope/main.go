// Package main is the entry point for the immoscope CLI application.
//
// The application startup sequence:
//
// 1. Initialize the logging system (stderr only, stdout is the MCP transport)
// 2. Load user configuration from disk, falling back to defaults
// 3. Dispatch the requested command: serve the MCP server, or run one of the
// debugging conveniences (market, version)
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"immoscope/internal/adapters"
	"immoscope/internal/config"
	"immoscope/internal/dataset"
	"immoscope/internal/logging"
	"immoscope/internal/market"
	"immoscope/internal/mcp"
)

var version = "dev" // set via -ldflags at release time

func main() {
	logger := logging.NewAppLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Error loading config", "error", err)
		os.Exit(1)
	}

	root := &cobra.Command{
		Use:   "immoscope",
		Short: "French real-estate market data and investment analysis over MCP",
		Long: "immoscope resolves French property prices from official data sources\n" +
			"(DVF transactions, INSEE statistics, benchmark proximity) and scores\n" +
			"rental and renovate-and-resell investments. The serve command exposes\n" +
			"the tools to AI assistants over the Model Context Protocol.",
		SilenceUsage: true,
	}

	root.AddCommand(serveCmd(cfg, logger))
	root.AddCommand(marketCmd(cfg, logger))
	root.AddCommand(versionCmd())

	if err := root.Execute(); err != nil {
		logger.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

// serveCmd starts the MCP stdio server. This is the normal mode of operation,
// typically launched as a subprocess by an MCP client.
func serveCmd(cfg *config.Config, logger *logging.AppLogger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			server := mcp.NewServer(cfg, logger)
			return server.Start()
		},
	}
}

// marketCmd resolves one location from the command line and prints the
// estimate as JSON. A debugging convenience that exercises the same resolver
// chain as the server.
func marketCmd(cfg *config.Config, logger *logging.AppLogger) *cobra.Command {
	return &cobra.Command{
		Use:   "market <location>",
		Short: "Resolve market data for a location and print it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := dataset.Load()
			if err != nil {
				return fmt.Errorf("failed to load dataset: %w", err)
			}

			timeout := cfg.AdapterTimeout()
			resolver := market.NewResolver(ds,
				adapters.NewGeocodeClient(cfg.GeocodeBaseURL, timeout, logger),
				adapters.NewDVFClient(cfg.DVFBaseURL, timeout, logger),
				adapters.NewINSEEClient(cfg.INSEEBaseURL, timeout, logger),
				logger, market.ResolverOptions{CacheTTL: cfg.CacheTTL()})

			estimate, err := resolver.Resolve(context.Background(), args[0])
			if err != nil {
				return err
			}

			raw, err := json.MarshalIndent(estimate, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(raw))
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the immoscope version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "immoscope", version)
		},
	}
}
