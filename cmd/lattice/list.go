package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/aretw0/lattice/internal/cli"
	"github.com/aretw0/lattice/pkg/collection"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list [collection]",
	Short: "List collections, or the entries of one collection",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project, store, err := cli.BuildStore(cmd.Context(), options(cmd))
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		defer tw.Flush()

		if len(args) == 0 {
			failed := make(map[string]int)
			for _, cve := range store.Errors() {
				failed[cve.Collection] = len(cve.Errors)
			}
			fmt.Fprintln(tw, "COLLECTION\tENTRIES\tSTATUS")
			for _, name := range store.Collections() {
				status := "valid"
				if n, bad := failed[name]; bad {
					status = fmt.Sprintf("invalid (%d errors)", n)
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\n", name, store.Len(name), status)
			}
			return nil
		}

		name := args[0]
		sortBy, _ := cmd.Flags().GetString("sort")
		order, _ := cmd.Flags().GetString("order")
		limit, _ := cmd.Flags().GetInt("limit")

		if sortBy == "" {
			sortBy = project.Config().SortField(name)
		}
		var opts []collection.QueryOption
		if sortBy != "" {
			opts = append(opts, collection.SortBy(sortBy))
		}
		switch order {
		case "asc":
			opts = append(opts, collection.Ascending())
		case "desc":
			opts = append(opts, collection.Descending())
		case "":
		default:
			return fmt.Errorf("invalid --order %q: want asc or desc", order)
		}
		opts = append(opts, collection.Limit(limit))

		entries, err := store.GetAll(name, opts...)
		if err != nil {
			return err
		}

		fmt.Fprintln(tw, "ID\tTITLE")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\n", e.ID, e.Data.Text("title"))
		}
		return nil
	},
}

func init() {
	listCmd.Flags().String("sort", "", "Sort by a declared field (dots for nested fields)")
	listCmd.Flags().String("order", "", "Sort order: asc or desc (dates default to desc)")
	listCmd.Flags().Int("limit", 0, "Show at most this many entries")

	rootCmd.AddCommand(listCmd)
}
