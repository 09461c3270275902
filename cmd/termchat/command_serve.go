package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"termchat/internal/config"
	"termchat/internal/daemon"
	"termchat/internal/logging"
	"termchat/internal/store"
)

func newServeCommand(wiring commandWiring) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local development chat API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return wiring.runServer(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config server.address)")
	return cmd
}

func runServerProcess(ctx context.Context, addr, version string, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(stderr, logging.ParseLevel(cfg.LogLevel()))

	tokenPath, err := config.ServerTokenPath()
	if err != nil {
		return err
	}
	token, err := daemon.LoadServerToken(tokenPath)
	if err != nil {
		return err
	}
	dbPath, err := cfg.ResolveDBPath()
	if err != nil {
		return err
	}
	repo, err := store.Open(cfg.StoreBackend(), dbPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	if strings.TrimSpace(addr) == "" {
		addr = cfg.ServerAddress()
	}
	if token.Created {
		fmt.Fprintf(stderr, "server token stored in %s; run `termchat login --local` to use it\n", tokenPath)
	}
	tokens := append([]string{token.Value}, cfg.ServerTokens()...)
	d := daemon.New(addr, tokens, version, repo, daemon.WithLogger(logger))
	return d.Run(ctx)
}
