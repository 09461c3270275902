package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"termchat/internal/config"
)

func newConfigCommand(wiring commandWiring) *cobra.Command {
	var defaults bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if !defaults {
				loaded, err := config.Load()
				if err != nil {
					return err
				}
				cfg = loaded
			}
			data, err := cfg.Encode()
			if err != nil {
				return err
			}
			if path, err := config.ConfigPath(); err == nil {
				fmt.Fprintf(wiring.stdout, "# %s\n", path)
			}
			_, err = wiring.stdout.Write(data)
			return err
		},
	}
	cmd.Flags().BoolVar(&defaults, "defaults", false, "print built-in defaults instead of the effective config")
	return cmd
}

func newVersionCommand(wiring commandWiring) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(wiring.stdout, wiring.version)
		},
	}
}
