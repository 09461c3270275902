package daemon

import (
	"context"
	"fmt"
	"strings"

	"termchat/internal/types"
)

// Replier produces the assistant side of an exchange.
type Replier interface {
	Reply(ctx context.Context, chat types.Chat, message string) (string, error)
}

// EchoReplier answers with a markdown acknowledgement. The development
// server has no model behind it.
type EchoReplier struct{}

func (EchoReplier) Reply(ctx context.Context, chat types.Chat, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := strings.TrimSpace(chat.Name)
	if name == "" {
		name = "this chat"
	}
	quoted := strings.ReplaceAll(strings.TrimSpace(message), "\n", "\n> ")
	return fmt.Sprintf("> %s\n\nMessage %d in **%s** received. Connect termchat to a real Chat API for answers.", quoted, chat.MessageCount+1, name), nil
}
