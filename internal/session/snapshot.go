package session

import (
	"fmt"

	"termchat/internal/types"
)

type Mode int

const (
	ModeLanding Mode = iota
	ModeActive
)

func (m Mode) String() string {
	switch m {
	case ModeActive:
		return "active"
	default:
		return "landing"
	}
}

// Op names an operation kind. Loading bookkeeping and error reporting are
// keyed by it.
type Op string

const (
	OpFetch  Op = "fetch_chats"
	OpCreate Op = "create_chat"
	OpDelete Op = "delete_chat"
	OpRename Op = "rename_chat"
)

// Loading is true for a kind while at least one request of that kind is
// pending.
type Loading struct {
	LoadingChats bool
	CreateChat   bool
	Delete       bool
}

// OperationError is the latest failed operation, kept for the status line.
type OperationError struct {
	Op     Op
	ChatID string
	Err    error
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}
	if e.ChatID != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.ChatID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Snapshot is a read-only copy of controller state. Views render from it and
// never see the controller's own slices.
type Snapshot struct {
	Chats        []types.Chat
	Loading      Loading
	ActiveChatID string
	Mode         Mode
	StartInput   string
	SidebarOpen  bool
	LastError    *OperationError
}

// CanDelete is false when removing would leave no chat or a delete is
// already pending.
func (s Snapshot) CanDelete() bool {
	return len(s.Chats) > 1 && !s.Loading.Delete
}

func (s Snapshot) CanCreate() bool {
	return !s.Loading.CreateChat
}

func (s Snapshot) ActiveChat() (types.Chat, bool) {
	if s.ActiveChatID == "" {
		return types.Chat{}, false
	}
	for _, chat := range s.Chats {
		if chat.ID == s.ActiveChatID {
			return chat, true
		}
	}
	return types.Chat{}, false
}
