package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/lattice/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lattice",
	Short: "Lattice validates the content collections of a static site",
	Long: `Lattice loads Markdown, YAML and JSON content, checks every collection
against its schema and reports every problem with its field path.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// SIGINT and SIGTERM cancel the command context.
func Execute() {
	sigCtx := cli.NewSignalContext(context.Background())
	code := run(sigCtx, os.Stderr)
	sigCtx.Cancel()
	os.Exit(code)
}

func run(ctx context.Context, stderr io.Writer) int {
	return reportError(stderr, rootCmd.ExecuteContext(ctx))
}

// reportError prints err unless a build report already showed it, and
// returns the exit code.
func reportError(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	var reported *cli.ReportedError
	if !errors.As(err, &reported) {
		fmt.Fprintln(w, err)
	}
	return 1
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", ".", "Project directory (holding lattice.yaml)")
	rootCmd.PersistentFlags().String("config", "", "Path to the config file (default <dir>/lattice.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
}

func options(cmd *cobra.Command) cli.Options {
	dir, _ := cmd.Flags().GetString("dir")
	configPath, _ := cmd.Flags().GetString("config")
	level, _ := cmd.Flags().GetString("log-level")
	return cli.Options{Dir: dir, ConfigPath: configPath, LogLevel: level}
}
