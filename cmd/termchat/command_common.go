package main

import (
	"bufio"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"termchat/internal/auth"
	"termchat/internal/client"
	"termchat/internal/config"
	"termchat/internal/logging"
	"termchat/internal/types"
)

const version = "dev"

func printChats(output io.Writer, chats []types.Chat) {
	writer := tabwriter.NewWriter(output, 0, 8, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tMESSAGES\tNAME")
	for _, chat := range chats {
		name := chat.Name
		if strings.TrimSpace(name) == "" {
			name = "-"
		}
		fmt.Fprintf(writer, "%s\t%d\t%s\n", chat.ID, chat.MessageCount, name)
	}
	_ = writer.Flush()
}

func exitOnErr(label string, err error, stderr io.Writer) {
	if err == nil {
		return
	}
	fmt.Fprintf(stderr, "%s error: %v\n", label, err)
	os.Exit(1)
}

// openTokenProvider opens the token file every client-side command shares.
func openTokenProvider(cfg config.Config, logger logging.Logger) (*auth.TokenProvider, error) {
	tokenPath, err := cfg.ResolveTokenPath()
	if err != nil {
		return nil, err
	}
	return auth.NewTokenProvider(tokenPath, auth.WithLogger(logger))
}

func newAPIClient(cfg config.Config, tokens client.TokenSource) *client.Client {
	return client.New(cfg.APIBaseURL(), tokens, cfg.APITimeout())
}

func commandTimeout(cfg config.Config) time.Duration {
	return cfg.APITimeout() + time.Second
}

// readSecret prompts without echo on a terminal and falls back to reading a
// line when stdin is piped.
func readSecret(stdin io.Reader, stderr io.Writer, prompt string) (string, error) {
	fmt.Fprint(stderr, prompt)
	if file, ok := stdin.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		data, err := term.ReadPassword(int(file.Fd()))
		fmt.Fprintln(stderr)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(data)), nil
	}
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		var revision string
		var modified string
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				revision = setting.Value
			case "vcs.modified":
				modified = setting.Value
			}
		}
		if revision != "" {
			if modified == "true" {
				return revision + "-dirty"
			}
			return revision
		}
	}

	exe, err := os.Executable()
	if err == nil {
		file, err := os.Open(exe)
		if err == nil {
			defer file.Close()
			hasher := sha256.New()
			if _, err := io.Copy(hasher, file); err == nil {
				sum := hasher.Sum(nil)
				return fmt.Sprintf("bin-%x", sum[:6])
			}
		}
	}

	return version
}
