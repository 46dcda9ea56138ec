// Package main is the entry point for the todoapp CLI.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"todoapp/internal/app"
	"todoapp/internal/cli"
	"todoapp/internal/commands"
	"todoapp/internal/config"
	"todoapp/internal/mirror"
	"todoapp/internal/mirror/googletasks"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// The remote is only created when push needs it
	remote := func(ctx context.Context, cfg *config.Config) (mirror.Remote, error) {
		return googletasks.New(ctx, cfg)
	}

	factory := func(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app.App, error) {
		return app.Open(cfg, log, app.WithRemote(remote))
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}
