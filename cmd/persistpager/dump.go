package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Alp4ka/persistpager"
)

type dumpOptions struct {
	page  int
	token string
	all   bool
}

type dumpedPage struct {
	ObjectClass string `yaml:"object_class"`
	Page        int    `yaml:"page,omitempty"`
	Next        string `yaml:"next,omitempty"`
	Items       []any  `yaml:"items"`
}

func newDumpCmd(opts *rootOptions) *cobra.Command {
	dump := &dumpOptions{}

	cmd := &cobra.Command{
		Use:   "dump <object-class>",
		Short: "Print pages of one object class as YAML",
		Args:  cobra.ExactArgs(1),
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

			objectClass := persistpager.ObjectClass(args[0])
			pager, err := backends.providers.Provide(cmd.Context(), objectClass, override)
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer enc.Close()

			switch {
			case dump.all:
				return pager.WithCurrentPage(dump.page).Walk(cmd.Context(), func(page persistpager.Page) error {
					return enc.Encode(dumpedPage{ObjectClass: args[0], Page: page.Number, Items: page.Items})
				})
			case dump.token != "" || cmd.Flags().Changed("token"):
				items, next, err := pager.SliceFromToken(cmd.Context(), dump.token, pager.GetMaxPerPage())
				if err != nil {
					return err
				}

				out := dumpedPage{ObjectClass: args[0], Items: items}
				if next != nil {
					out.Next = next.String()
				}

				return enc.Encode(out)
			default:
				items, err := pager.WithCurrentPage(dump.page).GetCurrentPageResults(cmd.Context())
				if err != nil {
					return err
				}

				return enc.Encode(dumpedPage{ObjectClass: args[0], Page: pager.GetCurrentPage(), Items: items})
			}
		},
	}

	cmd.Flags().IntVarP(&dump.page, "page", "p", 1, "page number, starting at 1")
	cmd.Flags().StringVar(&dump.token, "token", "", "resume from an offset token printed as next by a previous dump")
	cmd.Flags().BoolVar(&dump.all, "all", false, "print every page from --page to the last")

	return cmd
}
