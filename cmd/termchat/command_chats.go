package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"termchat/internal/client"
	"termchat/internal/config"
	"termchat/internal/logging"
)

func newChatsCommand(wiring commandWiring) *cobra.Command {
	return &cobra.Command{
		Use:   "chats",
		Short: "List your chats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			provider, err := openTokenProvider(cfg, logging.Nop())
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout(cfg))
			defer cancel()
			chats, err := newAPIClient(cfg, provider).ListChats(ctx)
			if err != nil {
				return explainClientError(err)
			}
			if len(chats) == 0 {
				fmt.Fprintln(wiring.stdout, "no chats")
				return nil
			}
			printChats(wiring.stdout, chats)
			return nil
		},
	}
}

func newStopCommand(wiring commandWiring) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the local development server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			provider, err := openTokenProvider(cfg, logging.Nop())
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout(cfg))
			defer cancel()
			if err := newAPIClient(cfg, provider).Shutdown(ctx); err != nil {
				return explainClientError(err)
			}
			fmt.Fprintln(wiring.stdout, "server stopping")
			return nil
		},
	}
}

func explainClientError(err error) error {
	if errors.Is(err, client.ErrNotSignedIn) {
		return errors.New("not signed in; run `termchat login`")
	}
	if client.IsUnauthorized(err) {
		return fmt.Errorf("token rejected by the server; run `termchat login` again: %w", err)
	}
	return err
}
