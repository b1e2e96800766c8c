package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/lattice/internal/cli"
	"github.com/aretw0/lattice/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema [collection]",
	Short: "Describe the registered schemas",
	Long: `Prints the schema of one collection (or of all of them) as JSON, field
names mapped to type strings. --mermaid outputs a Mermaid diagram instead,
highlighting the collections that currently fail validation.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project, store, err := cli.BuildStore(cmd.Context(), options(cmd))
		if err != nil {
			return err
		}

		names := store.Collections()
		if len(args) == 1 {
			names = args[:1]
		}

		var collections []graph.Collection
		for _, name := range names {
			obj, err := project.Registry().Resolve(name)
			if err != nil {
				return err
			}
			collections = append(collections, graph.Collection{Name: name, Schema: obj})
		}

		if mermaid, _ := cmd.Flags().GetBool("mermaid"); mermaid {
			overlay := &graph.Overlay{}
			for _, cve := range store.Errors() {
				overlay.Failed = append(overlay.Failed, cve.Collection)
			}
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(collections, overlay))
			return nil
		}

		var v any
		if len(collections) == 1 && len(args) == 1 {
			v = collections[0].Schema
		} else {
			all := make(map[string]any, len(collections))
			for _, c := range collections {
				all[c.Name] = c.Schema
			}
			v = all
		}
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

func init() {
	schemaCmd.Flags().Bool("mermaid", false, "Output a Mermaid diagram")

	rootCmd.AddCommand(schemaCmd)
}
