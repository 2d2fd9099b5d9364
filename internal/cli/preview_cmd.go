package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"jsonsql/internal/convert"
	"jsonsql/internal/pipeline"
)

func newPreviewCmd(opts *options) *cobra.Command {
	var (
		rows         int
		sourceType   string
		sourceConfig string
	)

	cmd := &cobra.Command{
		Use:   "preview [file|-]",
		Short: "Show the column list and first statements without writing anything",
		Example: `  json2sql preview people.json -t people
  json2sql preview -t users --source http --source-config '{"url":"https://example.com/users","dataPath":"data"}'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				res *pipeline.PreviewResult
				err error
			)
			if sourceType != "" {
				if len(args) > 0 {
					return fmt.Errorf("pass either a file or --source, not both")
				}
				cfg := pipeline.SourceConfig{}
				if sourceConfig != "" {
					if err := json.Unmarshal([]byte(sourceConfig), &cfg); err != nil {
						return fmt.Errorf("invalid --source-config: %w", err)
					}
				}
				res, err = pipeline.NewEngine(nil).Preview(cmd.Context(), sourceType, cfg, opts.table, rows)
			} else {
				input := "-"
				if len(args) == 1 {
					input = args[0]
				}
				var data []byte
				if data, err = readInput(cmd, input); err != nil {
					return err
				}
				var statements []convert.InsertStatement
				statements, err = convert.ConvertContext(cmd.Context(), string(data), opts.table)
				if err == nil {
					res = pipeline.NewPreview(statements, rows)
				}
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "columns: %s\n", convert.ColumnSet(res.Columns))
			for _, st := range res.Statements {
				fmt.Fprintln(out, st)
			}
			if res.Total > len(res.Statements) {
				fmt.Fprintf(out, "... %d more\n", res.Total-len(res.Statements))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&rows, "rows", "n", 10, "Number of statements to show (0 for all)")
	cmd.Flags().StringVar(&sourceType, "source", "", "Load from a source type instead of a file (see 'json2sql sources')")
	cmd.Flags().StringVar(&sourceConfig, "source-config", "", "Source configuration as JSON")
	return cmd
}
