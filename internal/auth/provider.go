package auth

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"termchat/internal/logging"
	"termchat/internal/types"
)

// TokenProvider is the Auth Provider backed by a bearer token stored in a
// file. A user is signed in while the file holds a non-empty token.
type TokenProvider struct {
	path   string
	logger logging.Logger

	mu     sync.RWMutex
	token  string
	signIn func()
}

type Option func(*TokenProvider)

func WithLogger(logger logging.Logger) Option {
	return func(p *TokenProvider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func NewTokenProvider(path string, opts ...Option) (*TokenProvider, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("token path is required")
	}
	p := &TokenProvider{path: path, logger: logging.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	if _, err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *TokenProvider) Path() string {
	return p.path
}

func (p *TokenProvider) Token() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.token
}

func (p *TokenProvider) User() (types.Identity, bool) {
	identity := types.IdentityFromToken(p.Token())
	return identity, !identity.Empty()
}

// SetSignInHandler installs the callback OpenSignIn invokes. The UI uses it
// to show its token prompt.
func (p *TokenProvider) SetSignInHandler(fn func()) {
	p.mu.Lock()
	p.signIn = fn
	p.mu.Unlock()
}

func (p *TokenProvider) OpenSignIn() {
	p.mu.RLock()
	fn := p.signIn
	p.mu.RUnlock()
	if fn == nil {
		p.logger.Info("sign in requested", logging.F("token_path", p.path))
		return
	}
	fn()
}

func (p *TokenProvider) SignIn(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token is required")
	}
	if err := writeToken(p.path, token); err != nil {
		return err
	}
	p.setToken(token)
	p.logger.Info("signed in", logging.F("user_id", types.TokenFingerprint(token)))
	return nil
}

func (p *TokenProvider) SignOut() error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	p.setToken("")
	p.logger.Info("signed out")
	return nil
}

// Reload re-reads the token file and reports whether the identity changed.
func (p *TokenProvider) Reload() (bool, error) {
	token, err := readToken(p.path)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}
	return p.setToken(token), nil
}

func (p *TokenProvider) setToken(token string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	changed := p.token != token
	p.token = token
	return changed
}

func readToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func writeToken(path, token string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		return err
	}
	_ = os.Chmod(path, 0o600)
	return nil
}
