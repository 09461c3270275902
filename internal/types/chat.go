package types

import "time"

type Chat struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MessageCount int    `json:"messageCount"`
}

// Unused reports whether the chat has never carried a message.
func (c Chat) Unused() bool {
	return c.MessageCount == 0
}

func CloneChats(chats []Chat) []Chat {
	if chats == nil {
		return nil
	}
	out := make([]Chat, len(chats))
	copy(out, chats)
	return out
}

// ChatRecord is the persisted form kept by the development server.
type ChatRecord struct {
	Chat
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
