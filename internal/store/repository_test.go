package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

type clock struct {
	now time.Time
}

func (c *clock) tick() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

func openTestRepos(t *testing.T) map[string]Repository {
	t.Helper()
	dir := t.TempDir()
	c := &clock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}

	bbolt, err := NewBboltRepository(filepath.Join(dir, "chats.db"))
	if err != nil {
		t.Fatalf("NewBboltRepository: %v", err)
	}
	t.Cleanup(func() { _ = bbolt.Close() })
	bbolt.(*bboltRepository).chats.now = c.tick

	file, err := NewFileRepository(filepath.Join(dir, "chats.json"))
	if err != nil {
		t.Fatalf("NewFileRepository: %v", err)
	}
	file.(*fileRepository).chats.now = c.tick

	return map[string]Repository{RepositoryBackendBbolt: bbolt, RepositoryBackendFile: file}
}

func TestChatStoreLifecycle(t *testing.T) {
	for backend, repo := range openTestRepos(t) {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			chats := repo.Chats()
			if repo.Backend() != backend {
				t.Fatalf("unexpected backend %q", repo.Backend())
			}

			empty, err := chats.List(ctx, "u1")
			if err != nil || len(empty) != 0 {
				t.Fatalf("expected empty list, got %v err=%v", empty, err)
			}

			first, err := chats.Create(ctx, "u1", "  First  ")
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			second, err := chats.Create(ctx, "u1", "Second")
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if _, err := chats.Create(ctx, "u2", "Other"); err != nil {
				t.Fatalf("create: %v", err)
			}
			if first.ID == "" || first.ID == second.ID || first.Name != "First" {
				t.Fatalf("unexpected records: %#v %#v", first, second)
			}

			list, err := chats.List(ctx, "u1")
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
				t.Fatalf("expected newest first, got %#v", list)
			}

			renamed, err := chats.Rename(ctx, "u1", first.ID, "Renamed")
			if err != nil || renamed.Name != "Renamed" {
				t.Fatalf("rename: %#v err=%v", renamed, err)
			}
			if !renamed.UpdatedAt.After(renamed.CreatedAt) {
				t.Fatalf("expected updated timestamp to move")
			}
			bumped, err := chats.IncrementMessages(ctx, "u1", first.ID)
			if err != nil || bumped.MessageCount != 1 {
				t.Fatalf("increment: %#v err=%v", bumped, err)
			}

			got, ok, err := chats.Get(ctx, "u1", first.ID)
			if err != nil || !ok || got.Name != "Renamed" || got.MessageCount != 1 {
				t.Fatalf("get: %#v ok=%v err=%v", got, ok, err)
			}
			if _, ok, _ := chats.Get(ctx, "u2", first.ID); ok {
				t.Fatalf("chat should not be visible to another owner")
			}

			if err := chats.Delete(ctx, "u2", first.ID); !errors.Is(err, ErrChatNotFound) {
				t.Fatalf("expected not found deleting another owner's chat, got %v", err)
			}
			if err := chats.Delete(ctx, "u1", first.ID); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if err := chats.Delete(ctx, "u1", first.ID); !errors.Is(err, ErrChatNotFound) {
				t.Fatalf("expected not found on second delete, got %v", err)
			}
			if _, err := chats.Rename(ctx, "u1", first.ID, "x"); !errors.Is(err, ErrChatNotFound) {
				t.Fatalf("expected not found on rename, got %v", err)
			}
			list, _ = chats.List(ctx, "u1")
			if len(list) != 1 || list[0].ID != second.ID {
				t.Fatalf("unexpected list after delete: %#v", list)
			}
		})
	}
}

func TestChatStoreRequiresOwner(t *testing.T) {
	for backend, repo := range openTestRepos(t) {
		t.Run(backend, func(t *testing.T) {
			if _, err := repo.Chats().Create(context.Background(), " ", "x"); err == nil {
				t.Fatalf("expected error for missing owner")
			}
		})
	}
}

func TestBboltRepositoryPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chats.db")
	repo, err := NewBboltRepository(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	created, err := repo.Chats().Create(context.Background(), "u1", "Kept")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewBboltRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	list, err := reopened.Chats().List(context.Background(), "u1")
	if err != nil || len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("unexpected list after reopen: %#v err=%v", list, err)
	}
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	if _, err := Open("postgres", filepath.Join(t.TempDir(), "x")); err == nil {
		t.Fatalf("expected error")
	}
	repo, err := Open("", filepath.Join(t.TempDir(), "x.db"))
	if err != nil {
		t.Fatalf("open default: %v", err)
	}
	defer repo.Close()
	if repo.Backend() != RepositoryBackendBbolt {
		t.Fatalf("expected bbolt default, got %q", repo.Backend())
	}
}
