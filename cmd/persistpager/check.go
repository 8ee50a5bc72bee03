package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration without connecting to any backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "OBJECT CLASS\tDRIVER\tSOURCE")
			for _, provider := range opts.cfg.Providers {
				fmt.Fprintf(w, "%s\t%s\t%s\n", provider.ObjectClass, provider.Driver, provider.Source)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "configuration OK: %d provider(s)\n", len(opts.cfg.Providers))
			return err
		},
	}
}
