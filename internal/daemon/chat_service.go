package daemon

import (
	"context"
	"errors"
	"strings"

	"termchat/internal/logging"
	"termchat/internal/store"
	"termchat/internal/types"
)

const defaultChatName = "New Chat"

// ChatService applies the Chat API rules on top of the store: names are
// trimmed, blank names fall back to a default and every call is scoped to
// the authenticated user.
type ChatService struct {
	chats       store.ChatStore
	replier     Replier
	metrics     *Metrics
	logger      logging.Logger
	defaultName string
}

type ChatServiceOption func(*ChatService)

func WithReplier(replier Replier) ChatServiceOption {
	return func(s *ChatService) {
		if replier != nil {
			s.replier = replier
		}
	}
}

func WithServiceMetrics(metrics *Metrics) ChatServiceOption {
	return func(s *ChatService) {
		s.metrics = metrics
	}
}

func WithServiceLogger(logger logging.Logger) ChatServiceOption {
	return func(s *ChatService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithDefaultChatName(name string) ChatServiceOption {
	return func(s *ChatService) {
		if name = strings.TrimSpace(name); name != "" {
			s.defaultName = name
		}
	}
}

func NewChatService(chats store.ChatStore, opts ...ChatServiceOption) *ChatService {
	s := &ChatService{
		chats:       chats,
		replier:     EchoReplier{},
		logger:      logging.Nop(),
		defaultName: defaultChatName,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *ChatService) List(ctx context.Context, userID string) ([]types.Chat, error) {
	if s == nil || s.chats == nil {
		return nil, unavailable("chat store not available", nil)
	}
	records, err := s.chats.List(ctx, userID)
	s.metrics.recordChatOp("list", err)
	if err != nil {
		return nil, err
	}
	out := make([]types.Chat, 0, len(records))
	for _, record := range records {
		out = append(out, record.Chat)
	}
	return out, nil
}

func (s *ChatService) Create(ctx context.Context, userID, name string) (types.Chat, error) {
	if s == nil || s.chats == nil {
		return types.Chat{}, unavailable("chat store not available", nil)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = s.defaultName
	}
	record, err := s.chats.Create(ctx, userID, name)
	s.metrics.recordChatOp("create", err)
	if err != nil {
		return types.Chat{}, err
	}
	s.logger.Info("chat_created", logging.F("chat_id", record.ID), logging.F("user_id", userID))
	return record.Chat, nil
}

func (s *ChatService) Delete(ctx context.Context, userID, chatID string) error {
	if s == nil || s.chats == nil {
		return unavailable("chat store not available", nil)
	}
	chatID = strings.TrimSpace(chatID)
	if chatID == "" {
		return badRequest("chatId is required", nil)
	}
	err := s.chats.Delete(ctx, userID, chatID)
	s.metrics.recordChatOp("delete", err)
	return mapStoreError(err)
}

func (s *ChatService) Rename(ctx context.Context, userID, chatID, newName string) error {
	if s == nil || s.chats == nil {
		return unavailable("chat store not available", nil)
	}
	chatID = strings.TrimSpace(chatID)
	if chatID == "" {
		return badRequest("chatId is required", nil)
	}
	_, err := s.chats.Rename(ctx, userID, chatID, newName)
	s.metrics.recordChatOp("rename", err)
	return mapStoreError(err)
}

// Send records one message against the chat and returns the reply.
func (s *ChatService) Send(ctx context.Context, userID, chatID, message string) (string, error) {
	if s == nil || s.chats == nil {
		return "", unavailable("chat store not available", nil)
	}
	chatID = strings.TrimSpace(chatID)
	if chatID == "" {
		return "", badRequest("chatId is required", nil)
	}
	if strings.TrimSpace(message) == "" {
		return "", badRequest("message is required", nil)
	}
	record, ok, err := s.chats.Get(ctx, userID, chatID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", chatNotFound(store.ErrChatNotFound)
	}
	reply, err := s.replier.Reply(ctx, record.Chat, message)
	if err != nil {
		return "", unavailable("reply failed", err)
	}
	if _, err := s.chats.IncrementMessages(ctx, userID, chatID); err != nil {
		return "", mapStoreError(err)
	}
	s.metrics.recordChatOp("send", nil)
	if s.metrics != nil {
		s.metrics.MessagesTotal.Inc()
	}
	return reply, nil
}

func mapStoreError(err error) error {
	if errors.Is(err, store.ErrChatNotFound) {
		return chatNotFound(err)
	}
	return err
}
