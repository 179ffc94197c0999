// Package cmd provides the CLI commands for patchbay.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/patchbaylabs/patchbay/pkg/version"
)

// configPath is the --config persistent flag, shared by every subcommand.
// Empty means the user config at ~/.config/patchbay/config.yaml, or plain
// defaults when that file does not exist.
var configPath string

// NewRootCmd creates the root command for the patchbay CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patchbay",
		Short: "MCP server bridging SaaS connectors to LLM hosts",
		Long: `Patchbay serves WhatsApp, HubSpot, PagerDuty, Notion, GitHub, Pinecone,
and Replicate as MCP tools for LLM hosts like Claude Desktop and Cursor.

Connectors fetch records from their service and rank them locally with
BM25 search, so hosts get relevant results instead of raw listings.

Run 'patchbay setup' to configure credentials, 'patchbay doctor' to verify
them, and add the bare 'patchbay' binary to your host's MCP server list.`,
		Version: version.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			// If help was explicitly requested, show it
			if len(args) > 0 {
				return cmd.Help()
			}
			return runBareServe(cmd)
		},
	}

	cmd.SetVersionTemplate("patchbay version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file path (default ~/.config/patchbay/config.yaml)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newConnectorsCmd())
	cmd.AddCommand(newToolsCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newDoctorCmd())
	cmd.AddCommand(newSetupCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// runBareServe implements the bare invocation: MCP hosts launch the binary
// with no arguments and expect JSON-RPC on stdout immediately, so this
// forces the stdio transport and must not write anything to stdout before
// the server starts. Diagnostics belong to 'patchbay doctor' instead.
func runBareServe(cmd *cobra.Command) error {
	return runServe(cmd.Context(), serveOptions{transport: "stdio"})
}
