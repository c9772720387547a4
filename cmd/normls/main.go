package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:     "normls",
		Short:   "norminette diagnostics for editors and terminals",
		Version: version,
	}

	rootCmd.AddCommand(newLSPCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newParseCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
