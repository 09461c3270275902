package auth

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"termchat/internal/types"
)

func TestProviderWithoutTokenFileIsSignedOut(t *testing.T) {
	p, err := NewTokenProvider(filepath.Join(t.TempDir(), "token"))
	if err != nil {
		t.Fatalf("NewTokenProvider: %v", err)
	}
	if _, ok := p.User(); ok {
		t.Fatalf("expected no user")
	}
	if p.Token() != "" {
		t.Fatalf("expected empty token")
	}
}

func TestSignInWritesTokenAndIdentity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	p, err := NewTokenProvider(path)
	if err != nil {
		t.Fatalf("NewTokenProvider: %v", err)
	}
	if err := p.SignIn("  abc  "); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	user, ok := p.User()
	if !ok || user.ID != types.TokenFingerprint("abc") {
		t.Fatalf("unexpected user: %#v ok=%v", user, ok)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("unexpected token file mode: %v", info.Mode().Perm())
	}

	reloaded, err := NewTokenProvider(path)
	if err != nil {
		t.Fatalf("NewTokenProvider: %v", err)
	}
	if reloaded.Token() != "abc" {
		t.Fatalf("expected persisted token, got %q", reloaded.Token())
	}
}

func TestSignInRejectsBlankToken(t *testing.T) {
	p, _ := NewTokenProvider(filepath.Join(t.TempDir(), "token"))
	if err := p.SignIn("   "); err == nil {
		t.Fatalf("expected error for blank token")
	}
}

func TestSignOutRemovesToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	p, _ := NewTokenProvider(path)
	if err := p.SignIn("abc"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if err := p.SignOut(); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if _, ok := p.User(); ok {
		t.Fatalf("expected signed out")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected token file removed, got %v", err)
	}
	if err := p.SignOut(); err != nil {
		t.Fatalf("second SignOut should be a no-op: %v", err)
	}
}

func TestOpenSignInCallsHandler(t *testing.T) {
	p, _ := NewTokenProvider(filepath.Join(t.TempDir(), "token"))
	p.OpenSignIn()

	calls := 0
	p.SetSignInHandler(func() { calls++ })
	p.OpenSignIn()
	if calls != 1 {
		t.Fatalf("expected handler called once, got %d", calls)
	}
}

func TestReloadReportsChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	p, _ := NewTokenProvider(path)
	if err := os.WriteFile(path, []byte("xyz\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	changed, err := p.Reload()
	if err != nil || !changed {
		t.Fatalf("expected change, got changed=%v err=%v", changed, err)
	}
	changed, err = p.Reload()
	if err != nil || changed {
		t.Fatalf("expected no change, got changed=%v err=%v", changed, err)
	}
}

func TestWatchNotifiesOnExternalLogin(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "token")
	p, _ := NewTokenProvider(path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan types.Identity, 4)
	done := make(chan error, 1)
	go func() {
		done <- p.Watch(ctx, func(identity types.Identity, ok bool) {
			if ok {
				got <- identity
			}
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte("from-cli\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	select {
	case identity := <-got:
		if identity.ID != types.TokenFingerprint("from-cli") {
			t.Fatalf("unexpected identity: %#v", identity)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for identity change")
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Watch returned error: %v", err)
	}
}
