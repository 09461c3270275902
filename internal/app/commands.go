package app

import (
	"context"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
)

func sendMessageCmd(api MessageAPI, chatID, text string, timeout time.Duration) tea.Cmd {
	return func() (msg tea.Msg) {
		defer func() {
			if r := recover(); r != nil {
				msg = messageSentMsg{chatID: chatID, text: text, err: fmt.Errorf("send message panicked: %v", r)}
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		reply, err := api.SendMessage(ctx, chatID, text)
		return messageSentMsg{chatID: chatID, text: text, reply: reply, err: err}
	}
}

func identityChangedCmd() tea.Cmd {
	return func() tea.Msg {
		return IdentityChangedMsg{}
	}
}
