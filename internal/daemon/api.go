package daemon

import (
	"context"

	"termchat/internal/logging"
)

type API struct {
	Version  string
	Service  *ChatService
	Metrics  *Metrics
	Shutdown func(context.Context) error
	Logger   logging.Logger
}

type CreateChatRequest struct {
	Name string `json:"name"`
}

type DeleteChatRequest struct {
	ChatID string `json:"chatId"`
}

type RenameChatRequest struct {
	ChatID  string `json:"chatId"`
	NewName string `json:"newName"`
}

type SendMessageRequest struct {
	ChatID  string `json:"chatId"`
	Message string `json:"message"`
}

type SendMessageResponse struct {
	Reply string `json:"reply"`
}
