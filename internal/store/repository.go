package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"termchat/internal/types"
)

const (
	RepositoryBackendFile  = "file"
	RepositoryBackendBbolt = "bbolt"
)

var ErrChatNotFound = errors.New("chat not found")

// ChatStore keeps chats partitioned by owner. Lists come back newest first.
type ChatStore interface {
	List(ctx context.Context, ownerID string) ([]*types.ChatRecord, error)
	Get(ctx context.Context, ownerID, chatID string) (*types.ChatRecord, bool, error)
	Create(ctx context.Context, ownerID, name string) (*types.ChatRecord, error)
	Rename(ctx context.Context, ownerID, chatID, name string) (*types.ChatRecord, error)
	Delete(ctx context.Context, ownerID, chatID string) error
	IncrementMessages(ctx context.Context, ownerID, chatID string) (*types.ChatRecord, error)
}

type Repository interface {
	Chats() ChatStore
	Backend() string
	Close() error
}

// Open picks the backend. An empty backend means bbolt.
func Open(backend, path string) (Repository, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", RepositoryBackendBbolt:
		return NewBboltRepository(path)
	case RepositoryBackendFile:
		return NewFileRepository(path)
	default:
		return nil, errors.New("unknown store backend: " + backend)
	}
}

type fileRepository struct {
	chats *FileChatStore
}

func NewFileRepository(path string) (Repository, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("repository path is required")
	}
	return &fileRepository{chats: NewFileChatStore(path)}, nil
}

func (r *fileRepository) Chats() ChatStore {
	return r.chats
}

func (r *fileRepository) Backend() string {
	return RepositoryBackendFile
}

func (r *fileRepository) Close() error {
	return nil
}

func newChatRecord(ownerID, name string, now time.Time) (*types.ChatRecord, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, errors.New("owner id is required")
	}
	return &types.ChatRecord{
		Chat:      types.Chat{ID: uuid.NewString(), Name: strings.TrimSpace(name)},
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func cloneChatRecord(record *types.ChatRecord) *types.ChatRecord {
	if record == nil {
		return nil
	}
	out := *record
	return &out
}

func sortChatRecords(records []*types.ChatRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID > records[j].ID
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
}
