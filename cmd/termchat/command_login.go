package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"termchat/internal/config"
	"termchat/internal/logging"
)

func newLoginCommand(wiring commandWiring) *cobra.Command {
	var token string
	var local bool
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an API token",
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
			token = strings.TrimSpace(token)
			switch {
			case token != "" && local:
				return errors.New("use either --token or --local")
			case local:
				token, err = readServerToken()
			case token == "":
				token, err = wiring.readSecret("API token: ")
			}
			if err != nil {
				return err
			}
			if err := provider.SignIn(token); err != nil {
				return err
			}
			identity, _ := provider.User()
			fmt.Fprintf(wiring.stdout, "signed in as %s\n", identity.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "token to store (prompted when omitted)")
	cmd.Flags().BoolVar(&local, "local", false, "use the token of the local development server")
	return cmd
}

func newLogoutCommand(wiring commandWiring) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored API token",
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
			if err := provider.SignOut(); err != nil {
				return err
			}
			fmt.Fprintln(wiring.stdout, "signed out")
			return nil
		},
	}
}

func readServerToken() (string, error) {
	path, err := config.ServerTokenPath()
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", errors.New("no local server token yet; run `termchat serve` first")
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
