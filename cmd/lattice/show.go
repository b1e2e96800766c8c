package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/lattice/internal/cli"
	"github.com/aretw0/lattice/internal/presentation/html"
	"github.com/aretw0/lattice/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <collection> <id>",
	Short: "Print one entry",
	Long: `Prints the validated data of one entry as JSON. --render shows the body as
styled terminal Markdown and --html prints the body rendered to HTML.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := cli.BuildStore(cmd.Context(), options(cmd))
		if err != nil {
			return err
		}

		entry, err := store.GetByID(args[0], args[1])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		render, _ := cmd.Flags().GetBool("render")
		asHTML, _ := cmd.Flags().GetBool("html")

		switch {
		case asHTML:
			body, err := html.Render(entry.Body)
			if err != nil {
				return err
			}
			fmt.Fprint(out, body)
		case render:
			body, err := tui.NewRenderer()(entry.Body)
			if err != nil {
				return err
			}
			fmt.Fprint(out, body)
		default:
			b, err := json.MarshalIndent(entry, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
		}
		return nil
	},
}

func init() {
	showCmd.Flags().Bool("render", false, "Render the body as terminal Markdown")
	showCmd.Flags().Bool("html", false, "Render the body as HTML")
	showCmd.MarkFlagsMutuallyExclusive("render", "html")

	rootCmd.AddCommand(showCmd)
}
