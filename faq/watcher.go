package faq

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultReloadDebounce = 200 * time.Millisecond

// Watcher reloads a Matcher whenever its configuration file changes on disk.
// The parent directory is watched rather than the file itself because editors
// and deploy tools usually replace the file with a rename.
type Watcher struct {
	matcher  *Matcher
	target   string
	fw       *fsnotify.Watcher
	debounce time.Duration
	onReload func(error)

	done    chan struct{}
	stopped bool
	mu      sync.Mutex
	timer   *time.Timer
}

// NewWatcher prepares a watcher for m's configuration file. onReload, if not
// nil, is called after every reload attempt with its result.
func NewWatcher(m *Matcher, onReload func(error)) (*Watcher, error) {
	if m.Path() == "" {
		return nil, fmt.Errorf("matcher has no config path to watch")
	}
	target, err := filepath.Abs(m.Path())
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		matcher:  m,
		target:   target,
		fw:       fw,
		debounce: defaultReloadDebounce,
		onReload: onReload,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start() error {
	if err := w.fw.Add(filepath.Dir(w.target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.target), err)
	}

	go w.loop()

	w.matcher.logger.Info("👀 Watching FAQ config for changes", "path", w.target)
	return nil
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.schedule()
			}

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.matcher.logger.Warn("FAQ config watcher error", "error", err)

		case <-w.done:
			return
		}
	}
}

// schedule coalesces bursts of events into a single reload.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		err := w.matcher.Reload()
		if w.onReload != nil {
			w.onReload(err)
		}
	})
}

// Stop ends watching. Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	close(w.done)
	return w.fw.Close()
}
