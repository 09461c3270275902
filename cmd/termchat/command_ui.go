package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"termchat/internal/app"
	"termchat/internal/config"
	"termchat/internal/logging"
	"termchat/internal/session"
	"termchat/internal/types"
)

func newUICommand(wiring commandWiring) *cobra.Command {
	var opts uiOptions
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Open the chat UI (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return wiring.runUI(opts)
		},
	}
	cmd.Flags().BoolVar(&opts.local, "local", false, "start the local development server when it is not running")
	return cmd
}

func runUIProcess(opts uiOptions, version string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logOut, closeLog := openUILog()
	defer closeLog()
	logger := logging.New(logOut, logging.ParseLevel(cfg.LogLevel()))

	provider, err := openTokenProvider(cfg, logger)
	if err != nil {
		return err
	}
	api := newAPIClient(cfg, provider)
	if opts.local {
		ctx, cancel := context.WithTimeout(context.Background(), 6*time.Second)
		err := api.EnsureServer(ctx)
		cancel()
		if err != nil {
			return err
		}
	}
	logger.Info("ui_start", logging.F("version", version), logging.F("api", api.BaseURL()))

	controller := session.NewController(api, provider,
		session.WithLogger(logger),
		session.WithDefaultChatName(cfg.DefaultChatName()),
		session.WithRequestTimeout(cfg.APITimeout()),
		session.WithSidebarOpen(cfg.SidebarOpen()),
	)
	model := app.NewModel(controller, provider, api, app.Options{
		Placeholders: cfg.Placeholders(),
		SendTimeout:  cfg.APITimeout(),
		Logger:       logger,
	})
	program := tea.NewProgram(model)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		err := provider.Watch(ctx, func(identity types.Identity, ok bool) {
			logger.Info("identity_changed", logging.F("user", identity.ID), logging.F("signed_in", ok))
			program.Send(app.IdentityChangedMsg{})
		})
		if err != nil && ctx.Err() == nil {
			logger.Warn("token watch stopped", logging.F("error", err))
		}
	}()

	_, err = program.Run()
	return err
}

// openUILog appends to ui.log in the data dir; the terminal belongs to the
// UI while it runs.
func openUILog() (io.Writer, func()) {
	path, err := config.UILogPath()
	if err != nil {
		return io.Discard, func() {}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return io.Discard, func() {}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return io.Discard, func() {}
	}
	return file, func() { _ = file.Close() }
}
