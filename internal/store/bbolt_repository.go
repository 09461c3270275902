package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"termchat/internal/types"
)

// Chats live in one nested bucket per owner under bucketChats, keyed by id.
var bucketChats = []byte("chats")

type bboltRepository struct {
	db    *bolt.DB
	chats *bboltChatStore
}

func NewBboltRepository(path string) (Repository, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("repository db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := initBboltSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &bboltRepository{db: db, chats: &bboltChatStore{db: db, now: time.Now}}, nil
}

func (r *bboltRepository) Chats() ChatStore {
	return r.chats
}

func (r *bboltRepository) Backend() string {
	return RepositoryBackendBbolt
}

func (r *bboltRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func initBboltSchema(db *bolt.DB) error {
	return db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketChats)
		return err
	})
}

type bboltChatStore struct {
	db  *bolt.DB
	now func() time.Time
}

func ownerBucket(tx *bolt.Tx, ownerID string, create bool) (*bolt.Bucket, error) {
	root := tx.Bucket(bucketChats)
	if root == nil {
		return nil, errors.New("chats bucket missing")
	}
	if create {
		return root.CreateBucketIfNotExists([]byte(ownerID))
	}
	return root.Bucket([]byte(ownerID)), nil
}

func (s *bboltChatStore) List(ctx context.Context, ownerID string) ([]*types.ChatRecord, error) {
	out := make([]*types.ChatRecord, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		b, err := ownerBucket(tx, ownerID, false)
		if err != nil || b == nil {
			return err
		}
		return b.ForEach(func(_, v []byte) error {
			var record types.ChatRecord
			if err := json.Unmarshal(v, &record); err != nil {
				return err
			}
			out = append(out, &record)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sortChatRecords(out)
	return out, nil
}

func (s *bboltChatStore) Get(ctx context.Context, ownerID, chatID string) (*types.ChatRecord, bool, error) {
	var out *types.ChatRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		b, err := ownerBucket(tx, ownerID, false)
		if err != nil || b == nil {
			return err
		}
		raw := b.Get([]byte(chatID))
		if raw == nil {
			return nil
		}
		var record types.ChatRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			return err
		}
		out = &record
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, out != nil, nil
}

func (s *bboltChatStore) Create(ctx context.Context, ownerID, name string) (*types.ChatRecord, error) {
	record, err := newChatRecord(ownerID, name, s.now().UTC())
	if err != nil {
		return nil, err
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		b, err := ownerBucket(tx, record.OwnerID, true)
		if err != nil {
			return err
		}
		return putChatRecord(b, record)
	})
	if err != nil {
		return nil, err
	}
	return cloneChatRecord(record), nil
}

func (s *bboltChatStore) Rename(ctx context.Context, ownerID, chatID, name string) (*types.ChatRecord, error) {
	return s.mutate(ownerID, chatID, func(record *types.ChatRecord) {
		record.Name = strings.TrimSpace(name)
	})
}

func (s *bboltChatStore) IncrementMessages(ctx context.Context, ownerID, chatID string) (*types.ChatRecord, error) {
	return s.mutate(ownerID, chatID, func(record *types.ChatRecord) {
		record.MessageCount++
	})
}

func (s *bboltChatStore) Delete(ctx context.Context, ownerID, chatID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := ownerBucket(tx, ownerID, false)
		if err != nil {
			return err
		}
		if b == nil || b.Get([]byte(chatID)) == nil {
			return ErrChatNotFound
		}
		return b.Delete([]byte(chatID))
	})
}

func (s *bboltChatStore) mutate(ownerID, chatID string, apply func(*types.ChatRecord)) (*types.ChatRecord, error) {
	var out *types.ChatRecord
	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := ownerBucket(tx, ownerID, false)
		if err != nil {
			return err
		}
		if b == nil {
			return ErrChatNotFound
		}
		raw := b.Get([]byte(chatID))
		if raw == nil {
			return ErrChatNotFound
		}
		var record types.ChatRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			return err
		}
		apply(&record)
		record.UpdatedAt = s.now().UTC()
		out = &record
		return putChatRecord(b, &record)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func putChatRecord(b *bolt.Bucket, record *types.ChatRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return b.Put([]byte(record.ID), data)
}
