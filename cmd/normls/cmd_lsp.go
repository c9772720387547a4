package main

import (
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/normls/lsp"
)

func newLSPCmd() *cobra.Command {
	var verbose int
	var logFile string

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server on stdio",
		Long: `Start the Language Server Protocol server on stdio.

Diagnostics are published on open and save by default. Logs go to stderr
unless --log-file is given; stdout carries the protocol.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var path *string
			if logFile != "" {
				path = &logFile
			}
			commonlog.Configure(verbose, path)

			server := lsp.NewServer(version)
			return server.RunStdio()
		},
	}

	cmd.Flags().CountVarP(&verbose, "verbose", "v", "increase log verbosity (repeatable)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file instead of stderr")

	return cmd
}
