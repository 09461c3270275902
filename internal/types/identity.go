package types

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

type Identity struct {
	ID    string
	Token string
}

func (i Identity) Empty() bool {
	return strings.TrimSpace(i.Token) == ""
}

// IdentityFromToken derives a stable, non-secret user id from a bearer token.
func IdentityFromToken(token string) Identity {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}
	}
	return Identity{ID: TokenFingerprint(token), Token: token}
}

func TokenFingerprint(token string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(token)))
	return "u_" + hex.EncodeToString(sum[:8])
}
