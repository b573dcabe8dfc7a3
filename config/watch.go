package config

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/go-homedir"
)

// ExpandPath resolves a leading "~" to the user's home directory.
//
// Parameters:
//   - path: a file or directory path, possibly starting with "~"
//
// Returns:
//   - string: the expanded path
//   - error: when the home directory cannot be determined
func ExpandPath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("config: expand %s: %w", path, err)
	}
	return expanded, nil
}

// Watch reloads the configuration at path whenever it is written and passes every valid result to
// onChange. Invalid edits are logged and skipped so the running demo keeps its last good settings.
// The parent directory is watched because editors often replace files instead of writing in place.
// Blocks until ctx is cancelled or the watcher fails.
//
// Parameters:
//   - ctx: cancels the watch
//   - path: the TOML file to watch
//   - onChange: called on the watcher goroutine with each newly loaded configuration
//
// Returns:
//   - error: a watcher setup error, or nil once ctx is done
func Watch(ctx context.Context, path string, onChange func(Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: create watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("config: resolve %s: %w", path, err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("config: watch %s: %w", filepath.Dir(abs), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			cfg, err := Load(abs)
			if err != nil {
				log.Printf("[Config] reload skipped: %v", err)
				continue
			}
			onChange(cfg)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[Config] watcher error: %v", err)
		}
	}
}
