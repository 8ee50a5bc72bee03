package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/Alp4ka/persistpager"
)

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats [object-class...]",
		Short: "Print result and page counts per object class",
		RunE: func(cmd *cobra.Command, args []string) error {
			override, err := opts.override()
			if err != nil {
				return err
			}

			backends, err := openBackends(cmd.Context(), opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer backends.Close()

			classes := backends.providers.Classes()
			if len(args) > 0 {
				classes = lo.Map(args, func(arg string, _ int) persistpager.ObjectClass {
					return persistpager.ObjectClass(arg)
				})
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "OBJECT CLASS\tRESULTS\tPAGES\tPER PAGE")
			for _, objectClass := range classes {
				pager, err := backends.providers.Provide(cmd.Context(), objectClass, override)
				if err != nil {
					return fmt.Errorf("%s: %w", objectClass, err)
				}

				total, err := pager.GetNbResults(cmd.Context())
				if err != nil {
					return fmt.Errorf("%s: %w", objectClass, err)
				}

				fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", objectClass, total, nbPages(total, pager.GetMaxPerPage()), pager.GetMaxPerPage())
			}

			return w.Flush()
		},
	}
}

func nbPages(total int64, perPage int) int64 {
	if total <= 0 {
		return 1
	}

	return (total + int64(perPage) - 1) / int64(perPage)
}
