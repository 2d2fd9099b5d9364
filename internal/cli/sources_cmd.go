package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"jsonsql/internal/pipeline"
)

func newSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List source types usable with 'preview --source'",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TYPE\tLABEL\tCONFIG")
			for _, spec := range pipeline.ListSources() {
				keys := make([]string, 0, len(spec.ConfigFields))
				for _, f := range spec.ConfigFields {
					k := f.Key
					if f.Required {
						k += "*"
					}
					keys = append(keys, k)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", spec.Type, spec.Label, strings.Join(keys, ", "))
			}
			return tw.Flush()
		},
	}
}
