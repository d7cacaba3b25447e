// Package main provides the CLI entry point for recall, a personal memory
// retrieval engine.
//
// Recall assembles a token-budgeted context block for a query by expanding
// the query into retrieval hints, seeding from a vector index, walking the
// memory graph, and formatting the result per view.
//
// # Basic Usage
//
// Run a query against the configured stores:
//
//	recall query "what happened last week?"
//
// Load a JSON export into the stores:
//
//	recall import memories.json
//
// Show store counts:
//
//	recall stats
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Build information - populated by ldflags during build.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := buildRootCmd()
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

// buildRootCmd creates the root command with all subcommands attached.
// Separated from main() to facilitate testing.
func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "recall",
		Short: "Recall - personal memory retrieval engine",
		Long: `Recall assembles context blocks from a personal memory graph.

A query is expanded into retrieval hints, seeded from a vector index,
expanded through the relationship graph, and rendered into a token-budgeted
context block ordered by the selected view.`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		buildQueryCmd(),
		buildImportCmd(),
		buildStatsCmd(),
	)

	return rootCmd
}
