package session

import (
	"context"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"

	"termchat/internal/types"
)

// Each command captures its arguments by value and always yields exactly one
// result message, so the matching in-flight counter is released even when
// the request path panics.

func fetchChatsCmd(api ChatAPI, identityID string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		var chats []types.Chat
		err := guard(OpFetch, func() error {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			var err error
			chats, err = api.ListChats(ctx)
			return err
		})
		return ChatsFetchedMsg{IdentityID: identityID, Chats: chats, Err: err}
	}
}

func createChatCmd(api ChatAPI, identityID, name string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		var chat types.Chat
		err := guard(OpCreate, func() error {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			var err error
			chat, err = api.CreateChat(ctx, name)
			return err
		})
		return ChatCreatedMsg{IdentityID: identityID, Chat: chat, Err: err}
	}
}

func deleteChatCmd(api ChatAPI, chatID string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		err := guard(OpDelete, func() error {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			return api.DeleteChat(ctx, chatID)
		})
		return ChatDeletedMsg{ChatID: chatID, Err: err}
	}
}

func renameChatCmd(api ChatAPI, chatID, newName string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		err := guard(OpRename, func() error {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			return api.RenameChat(ctx, chatID, newName)
		})
		return ChatRenamedMsg{ChatID: chatID, NewName: newName, Err: err}
	}
}

func guard(op Op, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", op, r)
		}
	}()
	return fn()
}
