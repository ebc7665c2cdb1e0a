package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/gocrud/ioc/web"
	"github.com/spf13/cobra"
)

func newBeansCmd(root *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "beans",
		Short: "List bean definitions and circular dependencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, c, _, err := root.bootstrap(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			beans := web.Describe(c)

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{"beans": beans, "cycles": c.Cycles()})
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tALIAS\tSCOPE\tSTATE\tDEPENDENCIES")
			for _, b := range beans {
				deps := strings.Join(b.Dependencies, ",")
				if deps == "" {
					deps = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", b.Name, b.Alias, b.Scope, b.State, deps)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			for _, cycle := range c.Cycles() {
				kind := "breakable"
				if !cycle.Breakable {
					kind = "unbreakable"
				}
				fmt.Fprintf(out, "cycle (%s): %s\n", kind, cycle)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
