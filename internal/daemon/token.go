package daemon

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const serverTokenBytes = 32

// ServerToken is the bearer token the development server always accepts.
// Created is set when this call generated it.
type ServerToken struct {
	Value   string
	Created bool
}

// LoadServerToken reads the token stored at path, generating one when the
// file is missing or blank. The file is kept at 0600.
func LoadServerToken(path string) (ServerToken, error) {
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if value := strings.TrimSpace(string(data)); value != "" {
			_ = os.Chmod(path, 0o600)
			return ServerToken{Value: value}, nil
		}
	case !errors.Is(err, os.ErrNotExist):
		return ServerToken{}, err
	}

	buf := make([]byte, serverTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return ServerToken{}, err
	}
	value := base64.RawURLEncoding.EncodeToString(buf)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return ServerToken{}, err
	}
	if err := os.WriteFile(path, []byte(value+"\n"), 0o600); err != nil {
		return ServerToken{}, err
	}
	_ = os.Chmod(path, 0o600)
	return ServerToken{Value: value, Created: true}, nil
}
