package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"jsonsql/internal/pipeline"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if kind := pipeline.ErrorKind(err); kind != pipeline.KindOther {
			fmt.Fprintf(os.Stderr, "Error (%s): %v\n", kind, err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// options are the settings shared by every subcommand after flags, env and
// config have been merged.
type options struct {
	table     string
	outputDir string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "json2sql",
		Short:         "Convert JSON arrays into SQL INSERT statements",
		Long:          "json2sql turns a JSON array of objects into one INSERT statement per object and writes them to <table>.sql.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Config file is optional
			cfg, err := LoadUserConfig()
			if err != nil {
				cfg = &UserConfig{}
			}

			// Apply precedence: flag > env > config > default
			if !cmd.Flags().Changed("table") {
				if v := os.Getenv("JSONSQL_TABLE"); v != "" {
					opts.table = v
				} else if cfg.Table != "" {
					opts.table = cfg.Table
				}
			}
			if !cmd.Flags().Changed("out") {
				if v := os.Getenv("JSONSQL_OUTPUT_DIR"); v != "" {
					opts.outputDir = v
				} else if cfg.OutputDir != "" {
					opts.outputDir = cfg.OutputDir
				}
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.table, "table", "t", "", "Target table name")
	rootCmd.PersistentFlags().StringVarP(&opts.outputDir, "out", "o", "", "Output directory (default: the input file's directory)")

	rootCmd.AddCommand(newConvertCmd(opts))
	rootCmd.AddCommand(newPreviewCmd(opts))
	rootCmd.AddCommand(newSourcesCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}
