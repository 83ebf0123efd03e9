package content

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 250 * time.Millisecond

// Watch reloads the store whenever its file is written or replaced. It watches the
// parent directory because editors often save by renaming a temp file over the original.
// Watch blocks until ctx is done.
func (s *Store) Watch(ctx context.Context) error {
	return s.watch(ctx, defaultDebounce)
}

func (s *Store) watch(ctx context.Context, debounce time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	log := zap.L().With(zap.String("path", s.path))
	log.Info("watching profile for changes")

	target := filepath.Clean(s.path)
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			s.Reload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("profile watcher error", zap.Error(err))
		}
	}
}
