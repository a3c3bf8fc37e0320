package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups the bursts of events editors produce on save
const DefaultDebounce = 250 * time.Millisecond

// Watcher calls onChange when filter files in the gateway directory change
type Watcher struct {
	gateway  *Gateway
	debounce time.Duration
	onChange func()
	onError  func(error)
}

// NewWatcher creates a watcher; onError may be nil
func NewWatcher(g *Gateway, debounce time.Duration, onChange func(), onError func(error)) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if onError == nil {
		onError = func(error) {}
	}
	return &Watcher{gateway: g, debounce: debounce, onChange: onChange, onError: onError}
}

// Run blocks until ctx is done
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	dir := w.gateway.Directory()
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.gateway.IsFilterFile(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.onError(err)

		case <-timer.C:
			w.onChange()
		}
	}
}
