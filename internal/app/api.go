package app

import (
	"context"

	"termchat/internal/session"
)

type MessageAPI interface {
	SendMessage(ctx context.Context, chatID, message string) (string, error)
}

// Auth is the Auth Provider plus the pieces the UI drives directly: storing
// a token from the sign-in prompt and receiving sign-in requests.
type Auth interface {
	session.AuthProvider
	SignIn(token string) error
	SetSignInHandler(fn func())
}
