package main

import (
	"fmt"

	"github.com/dgallion1/careersync/internal/catalog"
	"github.com/dgallion1/careersync/internal/store"
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [dir]",
		Short: "List careers documents and listings in a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			listing, err := store.Discover(dir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Documents:")
			if len(listing.Documents) == 0 {
				fmt.Fprintln(out, "  (none)")
			}
			for _, doc := range listing.Documents {
				fmt.Fprintf(out, "  %s\n", doc)
			}

			fmt.Fprintln(out, "Listings:")
			if len(listing.Tables) == 0 {
				fmt.Fprintln(out, "  (none)")
			}
			for _, table := range listing.Tables {
				section := "?"
				if kind, err := catalog.DetectSectionKind(table); err == nil {
					section = kind.Key()
				}
				fmt.Fprintf(out, "  %-10s %s\n", section, table)
			}
			return nil
		},
	}
}
