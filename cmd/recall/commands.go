// commands.go contains the cobra command definitions and their flag
// configurations. Each builder wires a command to its handler.
package main

import (
	"github.com/spf13/cobra"
)

// queryFlags carries the tuning flags for the query command.
type queryFlags struct {
	configPath string
	namespace  string
	view       string
	timezone   string
	topK       int
	hopDepth   int
	fanOut     int
	showStats  bool
}

func buildQueryCmd() *cobra.Command {
	var flags queryFlags

	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Run a retrieval and print the context block",
		Long: `Run the full retrieval pipeline for a query and print the assembled
context block.

The query is expanded into retrieval hints (date range, entities, cleaned
semantic query), routed to a view, seeded from the vector index, expanded
through the relationship graph, and formatted under the configured token
budget.`,
		Example: `  # Default profile retrieval
  recall query "what do I like to cook?"

  # Temporal query with stats
  recall query "what happened last week?" --stats

  # Force the tasks view with a wider graph walk
  recall query "plans" --view tasks --hop-depth 2 --fan-out 25`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd.Context(), args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "Path to YAML configuration file")
	cmd.Flags().StringVarP(&flags.namespace, "namespace", "n", "", "User namespace (default from config)")
	cmd.Flags().StringVar(&flags.view, "view", "", "Force a view: profile, timeline, tasks, graph_neighborhood")
	cmd.Flags().StringVar(&flags.timezone, "timezone", "", "IANA timezone for temporal expansion")
	cmd.Flags().IntVar(&flags.topK, "top-k", 0, "Number of vector seeds (default from config)")
	cmd.Flags().IntVar(&flags.hopDepth, "hop-depth", 0, "Graph expansion hop limit (default from config)")
	cmd.Flags().IntVar(&flags.fanOut, "fan-out", 0, "Per-node neighbor admission cap (default from config)")
	cmd.Flags().BoolVar(&flags.showStats, "stats", false, "Print retrieval stats JSON after the context block")

	return cmd
}

func buildImportCmd() *cobra.Command {
	var (
		configPath string
		namespace  string
	)

	cmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Load a JSON memory export into the stores",
		Long: `Load memories and links from a JSON export into the graph store, and
index them into the vector index when an embedding provider is configured.

The export format:

  {
    "memories": [{"id": "...", "kind": "episode", "content": "...", ...}],
    "links":    [{"source_id": "...", "target_id": "...", "relation": "..."}]
  }

Memories without an id are assigned one on insert.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), args[0], configPath, namespace)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	cmd.Flags().StringVarP(&namespace, "namespace", "n", "", "User namespace (default from config)")

	return cmd
}

func buildStatsCmd() *cobra.Command {
	var (
		configPath string
		namespace  string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show memory counts per kind",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd.Context(), configPath, namespace)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	cmd.Flags().StringVarP(&namespace, "namespace", "n", "", "User namespace (default from config)")

	return cmd
}
