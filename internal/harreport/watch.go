package harreport

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors dir and calls onCapture with the path of every newly
// written .har file. It blocks until ctx is canceled or the watcher
// breaks. Browsers write captures in one go, so a Create or Write
// event on a .har name is treated as a finished capture.
func Watch(ctx context.Context, dir string, onCapture func(path string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	// A single capture can surface as a Create plus several Writes;
	// report each path once per Watch run.
	reported := map[string]bool{}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".har") {
				continue
			}
			if reported[event.Name] {
				continue
			}
			reported[event.Name] = true
			onCapture(event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher: %w", err)
		}
	}
}
