package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmgilman/gitfarm/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cli.RootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		cli.PrintError(rootCmd.ErrOrStderr(), err, cli.JSONErrors(rootCmd))
		stop()
		os.Exit(cli.ExitCode(err))
	}
}
