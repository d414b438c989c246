package logsource

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestWatchCallsOnChangeAfterWrite(t *testing.T) {
	t.Parallel()
	path := writeFile(t, t.TempDir(), "app.log", "a\n")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	changed := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func() error {
			select {
			case changed <- struct{}{}:
			default:
			}
			return nil
		}, WatchConfig{Debounce: 20 * time.Millisecond})
	}()

	// Give the watcher time to register before writing.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-changed:
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("Watch returned %v", err)
			}
			return
		case <-tick.C:
			f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				t.Fatal(err)
			}
			_, _ = f.WriteString("b\n")
			_ = f.Close()
		case <-deadline:
			t.Fatal("onChange was not called")
		}
	}
}

func TestWatchMissingPath(t *testing.T) {
	t.Parallel()
	err := Watch(context.Background(), "/does/not/exist.log", func() error { return nil })
	if err == nil {
		t.Fatal("expected error watching a missing path")
	}
}
