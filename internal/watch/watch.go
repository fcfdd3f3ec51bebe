// Package watch reports when a data file is changed by another process, so a
// running UI can reload the list.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher watches the directory holding one file, which also catches
// editors and tools that replace the file instead of writing in place.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	log      *zap.Logger

	events chan struct{}
	done   chan struct{}
	once   sync.Once

	mu      sync.Mutex
	ignored time.Time
}

// New starts watching path. Call Close to stop.
func New(ctx context.Context, path string, debounce time.Duration, log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("abs: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	w := &Watcher{
		watcher:  fw,
		path:     abs,
		debounce: debounce,
		log:      log,
		events:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go w.loop(ctx)
	return w, nil
}

// Events delivers one value per burst of changes. It is closed when the
// watcher stops.
func (w *Watcher) Events() <-chan struct{} { return w.events }

// Ignore suppresses events for d, used around our own saves. A burst that
// started earlier is dropped too if its debounce ends inside the window.
func (w *Watcher) Ignore(d time.Duration) {
	w.mu.Lock()
	w.ignored = time.Now().Add(d)
	w.mu.Unlock()
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	defer close(w.events)

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
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if w.suppressed() {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("file watch error", zap.String("path", w.path), zap.Error(err))
		case <-fire:
			fire = nil
			if w.suppressed() {
				continue
			}
			select {
			case w.events <- struct{}{}:
			default: // a reload is already pending
			}
		}
	}
}

func (w *Watcher) suppressed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return time.Now().Before(w.ignored)
}
