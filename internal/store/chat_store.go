package store

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"time"

	"termchat/internal/types"
)

const chatFileVersion = 1

// FileChatStore keeps every owner's chats in a single JSON document. It
// suits tests and throwaway servers; the bbolt store is the default.
type FileChatStore struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

type chatFile struct {
	Version int                 `json:"version"`
	Chats   []*types.ChatRecord `json:"chats"`
}

func NewFileChatStore(path string) *FileChatStore {
	return &FileChatStore{path: path, now: time.Now}
}

func (s *FileChatStore) List(ctx context.Context, ownerID string) ([]*types.ChatRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]*types.ChatRecord, 0)
	for _, record := range file.Chats {
		if record.OwnerID == ownerID {
			out = append(out, cloneChatRecord(record))
		}
	}
	sortChatRecords(out)
	return out, nil
}

func (s *FileChatStore) Get(ctx context.Context, ownerID, chatID string) (*types.ChatRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return nil, false, err
	}
	if idx := findChat(file, ownerID, chatID); idx >= 0 {
		return cloneChatRecord(file.Chats[idx]), true, nil
	}
	return nil, false, nil
}

func (s *FileChatStore) Create(ctx context.Context, ownerID, name string) (*types.ChatRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := newChatRecord(ownerID, name, s.now().UTC())
	if err != nil {
		return nil, err
	}
	file, err := s.load()
	if err != nil {
		return nil, err
	}
	file.Chats = append(file.Chats, record)
	if err := writeJSONAtomic(s.path, file); err != nil {
		return nil, err
	}
	return cloneChatRecord(record), nil
}

func (s *FileChatStore) Rename(ctx context.Context, ownerID, chatID, name string) (*types.ChatRecord, error) {
	return s.mutate(ownerID, chatID, func(record *types.ChatRecord) {
		record.Name = strings.TrimSpace(name)
	})
}

func (s *FileChatStore) IncrementMessages(ctx context.Context, ownerID, chatID string) (*types.ChatRecord, error) {
	return s.mutate(ownerID, chatID, func(record *types.ChatRecord) {
		record.MessageCount++
	})
}

func (s *FileChatStore) Delete(ctx context.Context, ownerID, chatID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return err
	}
	idx := findChat(file, ownerID, chatID)
	if idx < 0 {
		return ErrChatNotFound
	}
	file.Chats = append(file.Chats[:idx], file.Chats[idx+1:]...)
	return writeJSONAtomic(s.path, file)
}

func (s *FileChatStore) mutate(ownerID, chatID string, apply func(*types.ChatRecord)) (*types.ChatRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.load()
	if err != nil {
		return nil, err
	}
	idx := findChat(file, ownerID, chatID)
	if idx < 0 {
		return nil, ErrChatNotFound
	}
	record := file.Chats[idx]
	apply(record)
	record.UpdatedAt = s.now().UTC()
	if err := writeJSONAtomic(s.path, file); err != nil {
		return nil, err
	}
	return cloneChatRecord(record), nil
}

func (s *FileChatStore) load() (*chatFile, error) {
	file := &chatFile{}
	if err := readJSON(s.path, file); err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, errEmptyFile) {
			return &chatFile{Version: chatFileVersion}, nil
		}
		return nil, err
	}
	if file.Version == 0 {
		file.Version = chatFileVersion
	}
	return file, nil
}

func findChat(file *chatFile, ownerID, chatID string) int {
	for i, record := range file.Chats {
		if record.OwnerID == ownerID && record.ID == chatID {
			return i
		}
	}
	return -1
}
