package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"termchat/internal/config"
)

type uiOptions struct {
	local bool
}

type commandWiring struct {
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
	runUI      func(uiOptions) error
	runServer  func(ctx context.Context, addr string) error
	readSecret func(prompt string) (string, error)
	version    string
}

func defaultCommandWiring(stdin io.Reader, stdout, stderr io.Writer) commandWiring {
	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	version := buildVersion()
	return commandWiring{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		runUI: func(opts uiOptions) error {
			return runUIProcess(opts, version)
		},
		runServer: func(ctx context.Context, addr string) error {
			return runServerProcess(ctx, addr, version, stderr)
		},
		readSecret: func(prompt string) (string, error) {
			return readSecret(stdin, stderr, prompt)
		},
		version: version,
	}
}

func newRootCommand(wiring commandWiring) *cobra.Command {
	var local bool
	root := &cobra.Command{
		Use:   "termchat",
		Short: "Chat about shell commands from the terminal",
		Long: `termchat is a terminal client for a chat API.

Running termchat with no command opens the chat UI. Use "termchat serve" for
a local development API and "termchat login --local" to sign in to it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			config.LoadDotenv()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return wiring.runUI(uiOptions{local: local})
		},
	}
	root.Flags().BoolVar(&local, "local", false, "start the local development server when it is not running")
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetIn(wiring.stdin)
	root.SetOut(wiring.stdout)
	root.SetErr(wiring.stderr)

	root.AddCommand(
		newUICommand(wiring),
		newServeCommand(wiring),
		newLoginCommand(wiring),
		newLogoutCommand(wiring),
		newChatsCommand(wiring),
		newStopCommand(wiring),
		newConfigCommand(wiring),
		newVersionCommand(wiring),
	)
	return root
}
