package logsource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultWatchDebounce collapses bursts of write events into one run.
const DefaultWatchDebounce = 250 * time.Millisecond

// WatchConfig holds tunable parameters for Watch.
type WatchConfig struct {
	Debounce time.Duration
	Logger   *zap.Logger
}

// Watch calls onChange after path (a file, or a directory of log files) is
// written or created, until ctx is done. Events arriving within the
// debounce window trigger a single call. An onChange error stops the watch.
func Watch(ctx context.Context, path string, onChange func() error, conf ...WatchConfig) error {
	debounce := DefaultWatchDebounce
	logger := zap.NewNop()
	if len(conf) > 0 {
		if conf[0].Debounce > 0 {
			debounce = conf[0].Debounce
		}
		if conf[0].Logger != nil {
			logger = conf[0].Logger
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("logsource: watch %s: %w", path, err)
	}
	dir, target := path, ""
	if !info.IsDir() {
		// Watch the parent so rename-on-save editors keep working.
		dir, target = filepath.Dir(path), filepath.Clean(path)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("logsource: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("logsource: watch %s: %w", dir, err)
	}

	relevant := func(ev fsnotify.Event) bool {
		if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
			return false
		}
		if target != "" {
			return filepath.Clean(ev.Name) == target
		}
		return IsLogFile(ev.Name)
	}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if relevant(ev) {
				logger.Debug("logsource: change detected", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
				timer.Reset(debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("logsource: watcher error", zap.Error(err))
		case <-timer.C:
			if err := onChange(); err != nil {
				return err
			}
		}
	}
}
