package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"streaming-db/internal/commands"
)

func main() {
	var exitCode int
	defer func() {
		os.Exit(exitCode)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exitCode = commands.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
}
