package main

import (
	"github.com/aretw0/lattice/internal/cli"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the collections and write them as JSON",
	Long: `Validates every collection and, when all of them are valid, writes them to
the --out file (or build.out from lattice.yaml) for the site renderer.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		return cli.RunBuild(cmd.Context(), options(cmd), cmd.OutOrStdout(), out)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every collection against its schema",
	Long:  `Loads and validates every collection and reports each failure with its document and field path.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunValidate(cmd.Context(), options(cmd), cmd.OutOrStdout())
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Revalidate on every content change",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunWatch(options(cmd), cmd.OutOrStdout())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the preview server",
	Long: `Serves the built collections as JSON over HTTP, rebuilding on content changes.
Invalid collections answer 422 with their validation errors.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		return cli.RunServe(options(cmd), addr, cmd.OutOrStdout())
	},
}

func init() {
	buildCmd.Flags().StringP("out", "o", "", "Write the collections as JSON to this file")
	serveCmd.Flags().String("addr", "", "Listen address (default serve.addr from lattice.yaml)")

	rootCmd.AddCommand(buildCmd, validateCmd, watchCmd, serveCmd)
}
