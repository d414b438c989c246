package logsource

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestReaderSourceStopClosesLines(t *testing.T) {
	t.Parallel()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer func() { _ = w.Close() }()

	src := NewReaderSource(context.Background(), StdinName, r, r)
	src.Stop()

	select {
	case _, ok := <-src.Lines():
		if ok {
			t.Fatal("expected lines channel to be closed after Stop")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for lines channel to close")
	}
	if err := src.Err(); err != nil {
		t.Errorf("Err after Stop = %v, want nil", err)
	}
}

func TestReaderSourceStopIsIdempotent(t *testing.T) {
	t.Parallel()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer func() { _ = w.Close() }()

	src := NewReaderSource(context.Background(), StdinName, r, r)
	src.Stop()
	src.Stop()
}

func TestReaderSourceStreamsPipe(t *testing.T) {
	t.Parallel()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}

	src := NewReaderSource(context.Background(), StdinName, r, r)
	go func() {
		_, _ = w.WriteString("2023-12-01 10:00:00 [INFO] one\n2023-12-01 10:00:01 [INFO] two\n")
		_ = w.Close()
	}()

	got := drain(t, src)
	if len(got) != 2 || got[1] != "2023-12-01 10:00:01 [INFO] two" {
		t.Errorf("lines = %q", got)
	}
}
