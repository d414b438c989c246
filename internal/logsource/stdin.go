package logsource

import (
	"context"
	"os"
)

// StdinName is the source label used for standard input.
const StdinName = "stdin"

// NewStdinSource reads log lines from stdin in a background goroutine.
// Stdin is never closed by the source.
func NewStdinSource(ctx context.Context, conf ...Config) *ReaderSource {
	return NewReaderSource(ctx, StdinName, os.Stdin, nil, conf...)
}
