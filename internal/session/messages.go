package session

import "termchat/internal/types"

// ChatsFetchedMsg carries the outcome of a list request made for IdentityID.
type ChatsFetchedMsg struct {
	IdentityID string
	Chats      []types.Chat
	Err        error
}

// ChatCreatedMsg carries the chat created on behalf of IdentityID.
type ChatCreatedMsg struct {
	IdentityID string
	Chat       types.Chat
	Err        error
}

type ChatDeletedMsg struct {
	ChatID string
	Err    error
}

type ChatRenamedMsg struct {
	ChatID  string
	NewName string
	Err     error
}
