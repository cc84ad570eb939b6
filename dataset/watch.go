package dataset

import (
	"context"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// Watch reloads the input file whenever it is written or replaced, until ctx
// is done. Watching the parent directory keeps working across editors that
// save by rename.
func (s *Store) Watch(ctx context.Context) error {
	path := s.Path()
	if path == "" {
		return errors.New("no input file to watch")
	}
	target, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrapf(err, "Failed to resolve %q", path)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrapf(err, "Failed to create watcher")
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return errors.Wrapf(err, "Failed to watch %q", filepath.Dir(target))
	}
	log.Printf("[dataset] Watching %q", target)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name, err := filepath.Abs(ev.Name)
			if err != nil || name != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			// errors are reported through the notifier, the old snapshot stays
			s.LoadFile(path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[dataset] Watch error: %v", err)
		}
	}
}
