package router

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ChangeSource notifies the Router that the configuration may have changed.
// Implementations own their goroutines; Close releases them and closes the
// notification channel.
type ChangeSource interface {
	// Changes returns the notification channel. A received value means
	// "the configuration may differ now"; coalescing is allowed.
	Changes() <-chan struct{}
	Close() error
}

// Watch reloads the routing table whenever src signals a change, until ctx
// is done or the source shuts down. Reload failures keep the previous table
// and keep watching; they are logged inside Reload.
func (r *Router) Watch(ctx context.Context, src ChangeSource) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-src.Changes():
			if !ok {
				return
			}
			_ = r.Reload(ctx)
		}
	}
}

// marker is the polled change fingerprint of the configuration file.
type marker struct {
	exists  bool
	size    int64
	modTime time.Time
}

func statMarker(path string) marker {
	info, err := os.Stat(path)
	if err != nil {
		return marker{}
	}
	return marker{exists: true, size: info.Size(), modTime: info.ModTime()}
}

// Poller detects configuration changes by polling the file's modification
// time and size on a fixed interval. It notices creation and deletion as
// well as edits.
type Poller struct {
	path     string
	interval time.Duration

	ch        chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewPoller starts polling path every interval. A non-positive interval
// falls back to one second.
func NewPoller(path string, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = time.Second
	}

	p := &Poller{
		path:     path,
		interval: interval,
		ch:       make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *Poller) run() {
	defer close(p.ch)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	last := statMarker(p.path)
	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			cur := statMarker(p.path)
			if cur != last {
				last = cur
				p.notify()
			}
		}
	}
}

func (p *Poller) notify() {
	select {
	case p.ch <- struct{}{}:
	default:
	}
}

// Changes implements ChangeSource.
func (p *Poller) Changes() <-chan struct{} {
	return p.ch
}

// Close stops the polling goroutine.
func (p *Poller) Close() error {
	p.closeOnce.Do(func() { close(p.done) })
	return nil
}

// FSWatcher detects configuration changes through fsnotify events. It
// watches the file's directory rather than the file itself, surviving
// editors that replace the file on save.
type FSWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	log     *zap.Logger
	ch      chan struct{}
}

// NewFSWatcher starts watching the directory containing path.
func NewFSWatcher(path string, log *zap.Logger) (*FSWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating config watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching config dir: %w", err)
	}

	w := &FSWatcher{
		path:    path,
		watcher: watcher,
		log:     log,
		ch:      make(chan struct{}, 1),
	}
	go w.run()
	return w, nil
}

func (w *FSWatcher) run() {
	defer close(w.ch)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.notify()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watcher error", zap.Error(err))
		}
	}
}

func (w *FSWatcher) notify() {
	select {
	case w.ch <- struct{}{}:
	default:
	}
}

// Changes implements ChangeSource.
func (w *FSWatcher) Changes() <-chan struct{} {
	return w.ch
}

// Close stops the watcher goroutine.
func (w *FSWatcher) Close() error {
	return w.watcher.Close()
}
