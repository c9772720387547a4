package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/normls/format"
	"github.com/dhamidi/normls/norminette"
)

func newParseCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "parse [report]",
		Short: "Parse a captured norminette report and dump its diagnostics",
		Long: `Parse the captured output of one norminette run and dump the diagnostics.

If no file is provided, the report is read from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if len(args) == 0 {
				data, err = io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
			} else {
				data, err = os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("read report: %w", err)
				}
			}

			report, err := norminette.ParseReportBytes(data)
			if err != nil {
				return fmt.Errorf("parse report: %w", err)
			}

			var encoder format.Encoder
			switch outputFormat {
			case "json":
				encoder = format.NewJSONEncoder(cmd.OutOrStdout())
			case "line":
				encoder = format.NewLineEncoder(cmd.OutOrStdout())
			default:
				return fmt.Errorf("unknown format: %s", outputFormat)
			}

			if err := encoder.Encode(format.FileDiagnostics{Path: report.File, Diagnostics: report.Diagnostics()}); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "output format (json, line)")

	return cmd
}
