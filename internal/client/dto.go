package client

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

type HealthResponse struct {
	OK      bool   `json:"ok"`
	Version string `json:"version"`
	PID     int    `json:"pid"`
}
