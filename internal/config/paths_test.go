package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestPaths(t *testing.T) {
	t.Setenv("HOME", filepath.Join(t.TempDir(), "home"))

	dataDir, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir: %v", err)
	}
	if !strings.HasSuffix(dataDir, ".termchat") {
		t.Fatalf("unexpected data dir: %s", dataDir)
	}

	cases := []struct {
		name string
		fn   func() (string, error)
		want string
	}{
		{"TokenPath", TokenPath, "token"},
		{"ConfigPath", ConfigPath, "config.toml"},
		{"DBPath", DBPath, "chats.db"},
		{"ServerTokenPath", ServerTokenPath, "server_token"},
		{"UILogPath", UILogPath, "ui.log"},
	}
	for _, tc := range cases {
		path, err := tc.fn()
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if want := filepath.Join(".termchat", tc.want); !strings.HasSuffix(path, want) {
			t.Fatalf("unexpected %s: %s", tc.name, path)
		}
	}
}
