package auth

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"termchat/internal/logging"
	"termchat/internal/types"
)

const debounceInterval = 100 * time.Millisecond

// Watch follows the token file and calls onChange with the new identity
// whenever `termchat login`/`logout` (or anything else) changes it. The
// parent directory is watched so that create and remove are both seen. It
// blocks until ctx is done.
func (p *TokenProvider) Watch(ctx context.Context, onChange func(types.Identity, bool)) error {
	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return err
	}
	p.logger.Debug("watching token file", logging.F("path", p.path))

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(p.path) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceInterval)
			} else {
				timer.Reset(debounceInterval)
			}
			fire = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.logger.Warn("token watch error", logging.F("error", err))
		case <-fire:
			fire = nil
			changed, err := p.Reload()
			if err != nil {
				p.logger.Warn("token reload failed", logging.F("error", err))
				continue
			}
			if changed && onChange != nil {
				identity, ok := p.User()
				onChange(identity, ok)
			}
		}
	}
}
