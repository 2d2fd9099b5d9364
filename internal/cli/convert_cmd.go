package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"jsonsql/internal/convert"
	"jsonsql/internal/pipeline"
)

func newConvertCmd(opts *options) *cobra.Command {
	var toStdout bool

	cmd := &cobra.Command{
		Use:   "convert [file|-]",
		Short: "Convert a JSON file (or stdin) into <table>.sql",
		Long: `Convert reads a JSON array of objects and writes one INSERT statement per
object to <out>/<table>.sql, replacing any existing file. The first object's
keys become the column list: missing keys are written as NULL and extra keys
are ignored. Nothing is written if any part of the input is invalid.`,
		Example: `  json2sql convert people.json --table people
  curl -s https://example.com/users | json2sql convert - -t users --stdout`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := "-"
			if len(args) == 1 {
				input = args[0]
			}
			data, err := readInput(cmd, input)
			if err != nil {
				return err
			}

			if toStdout {
				statements, err := convert.ConvertContext(cmd.Context(), string(data), opts.table)
				if err != nil {
					return err
				}
				return convert.Encode(cmd.OutOrStdout(), statements)
			}

			outDir := opts.outputDir
			if outDir == "" && input != "-" {
				outDir = filepath.Dir(input)
			}
			engine := pipeline.NewEngine(nil)
			res, err := engine.RunData(cmd.Context(), &pipeline.Job{
				TableName: opts.table,
				OutputDir: outDir,
			}, data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d statement(s) to %s\n", res.StatementsWritten, res.Location)
			return nil
		},
	}

	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Print statements instead of writing a file")
	return cmd
}

// readInput reads the named file, or stdin when name is "-".
func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, &convert.IOError{Op: "read", Path: "stdin", Err: err}
		}
		return data, nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, &convert.IOError{Op: "read", Path: name, Err: err}
	}
	return data, nil
}
