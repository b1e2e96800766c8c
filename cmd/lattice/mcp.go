package main

import (
	"github.com/aretw0/lattice/internal/cli"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the collections over the Model Context Protocol",
	Long: `Exposes the validated collections as MCP tools (list_collections,
get_collection, get_entry, describe_schema). Uses stdio unless --sse is set.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sse, _ := cmd.Flags().GetBool("sse")
		port, _ := cmd.Flags().GetInt("port")
		return cli.RunMCP(options(cmd), sse, port)
	},
}

func init() {
	mcpCmd.Flags().Bool("sse", false, "Serve over SSE instead of stdio")
	mcpCmd.Flags().IntP("port", "p", 8081, "Port for the SSE transport")

	rootCmd.AddCommand(mcpCmd)
}
