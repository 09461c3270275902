package session

import (
	tea "charm.land/bubbletea/v2"

	"termchat/internal/logging"
	"termchat/internal/types"
)

// Update applies a result message produced by one of the controller's
// commands. It reports whether msg belonged to the controller.
func (c *Controller) Update(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case ChatsFetchedMsg:
		c.applyFetch(msg)
	case ChatCreatedMsg:
		c.applyCreate(msg)
	case ChatDeletedMsg:
		c.applyDelete(msg)
	case ChatRenamedMsg:
		c.applyRename(msg)
	default:
		return false
	}
	return true
}

func (c *Controller) applyFetch(msg ChatsFetchedMsg) {
	c.end(OpFetch)
	if user, ok := c.currentUser(); !ok || user.ID != msg.IdentityID {
		c.logger.Debug("discarding chats fetched for another identity", logging.F("user_id", msg.IdentityID))
		return
	}
	if msg.Err != nil {
		c.fail(OpFetch, "", msg.Err)
		return
	}
	c.succeed(OpFetch)
	c.chats = dedupeChats(msg.Chats)
	if c.activeID == "" && len(c.chats) > 0 {
		c.activeID = c.chats[0].ID
	}
	c.logger.Debug("chats fetched", logging.F("count", len(c.chats)))
}

func (c *Controller) applyCreate(msg ChatCreatedMsg) {
	c.end(OpCreate)
	if user, _ := c.currentUser(); user.ID != msg.IdentityID {
		c.logger.Debug("discarding chat created for another identity", logging.F("user_id", msg.IdentityID))
		return
	}
	if msg.Err != nil {
		c.fail(OpCreate, "", msg.Err)
		return
	}
	c.succeed(OpCreate)
	chat := msg.Chat
	chat.MessageCount = 0
	chats := make([]types.Chat, 0, len(c.chats)+1)
	chats = append(chats, chat)
	for _, existing := range c.chats {
		if existing.ID != chat.ID {
			chats = append(chats, existing)
		}
	}
	c.chats = chats
	c.activeID = chat.ID
	c.logger.Info("chat created", logging.F("chat_id", chat.ID))
}

func (c *Controller) applyDelete(msg ChatDeletedMsg) {
	c.end(OpDelete)
	if msg.Err != nil {
		c.fail(OpDelete, msg.ChatID, msg.Err)
		return
	}
	c.succeed(OpDelete)
	idx := -1
	for i, chat := range c.chats {
		if chat.ID == msg.ChatID {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.logger.Debug("deleted chat not in collection", logging.F("chat_id", msg.ChatID))
		return
	}
	c.chats = append(c.chats[:idx:idx], c.chats[idx+1:]...)
	if c.activeID == msg.ChatID {
		c.activeID = ""
		if len(c.chats) > 0 {
			c.activeID = c.chats[0].ID
		}
	}
	c.logger.Info("chat deleted", logging.F("chat_id", msg.ChatID))
}

func (c *Controller) applyRename(msg ChatRenamedMsg) {
	if msg.Err != nil {
		c.fail(OpRename, msg.ChatID, msg.Err)
		return
	}
	c.succeed(OpRename)
	for i := range c.chats {
		if c.chats[i].ID == msg.ChatID {
			c.chats[i].Name = msg.NewName
			return
		}
	}
}

func (c *Controller) fail(op Op, chatID string, err error) {
	c.lastErr = &OperationError{Op: op, ChatID: chatID, Err: err}
	fields := []logging.Field{logging.F("op", string(op)), logging.F("error", err)}
	if chatID != "" {
		fields = append(fields, logging.F("chat_id", chatID))
	}
	c.logger.Warn("chat operation failed", fields...)
}

func (c *Controller) succeed(op Op) {
	if c.lastErr != nil && c.lastErr.Op == op {
		c.lastErr = nil
	}
}

// dedupeChats keeps the first occurrence of every id, preserving order.
func dedupeChats(chats []types.Chat) []types.Chat {
	out := make([]types.Chat, 0, len(chats))
	seen := make(map[string]struct{}, len(chats))
	for _, chat := range chats {
		if _, ok := seen[chat.ID]; ok {
			continue
		}
		seen[chat.ID] = struct{}{}
		if chat.MessageCount < 0 {
			chat.MessageCount = 0
		}
		out = append(out, chat)
	}
	return out
}
