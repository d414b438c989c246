package logsource

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/tinytelemetry/logscope/internal/model"
)

const (
	// DefaultBuffer is the default channel buffer size for read lines.
	DefaultBuffer = 4096

	// DefaultMaxLineSize is the default maximum size (in bytes) of a single line.
	DefaultMaxLineSize = 1024 * 1024 // 1MB
)

// LogSource is a unified interface for line inputs (file, stdin, request body).
type LogSource interface {
	Lines() <-chan model.IngestEnvelope // closed when the input ends or Stop is called
	Err() error                         // read error, valid once Lines is closed
	Stop()                              // graceful shutdown
	Name() string                       // source label: a path, "stdin", ...
}

// Config holds tunable parameters shared by all sources.
type Config struct {
	BufferSize  int
	MaxLineSize int
	Logger      *zap.Logger
}

func resolveConfig(conf []Config) Config {
	c := Config{BufferSize: DefaultBuffer, MaxLineSize: DefaultMaxLineSize}
	if len(conf) > 0 {
		if conf[0].BufferSize > 0 {
			c.BufferSize = conf[0].BufferSize
		}
		if conf[0].MaxLineSize > 0 {
			c.MaxLineSize = conf[0].MaxLineSize
		}
		c.Logger = conf[0].Logger
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}

// ReaderSource streams the non-blank lines of an io.Reader.
type ReaderSource struct {
	name   string
	ch     chan model.IngestEnvelope
	cancel context.CancelFunc
	closer io.Closer
	logger *zap.Logger

	mu  sync.Mutex
	err error
}

// NewReaderSource starts reading r in a background goroutine. If r is an
// io.Closer owned by the source, pass it as closer so it is released when
// reading ends.
func NewReaderSource(ctx context.Context, name string, r io.Reader, closer io.Closer, conf ...Config) *ReaderSource {
	c := resolveConfig(conf)
	ctx, cancel := context.WithCancel(ctx)
	s := &ReaderSource{
		name:   name,
		ch:     make(chan model.IngestEnvelope, c.BufferSize),
		cancel: cancel,
		closer: closer,
		logger: c.Logger.With(zap.String("source", name)),
	}
	go s.read(ctx, r, c.MaxLineSize)
	return s
}

func (s *ReaderSource) read(ctx context.Context, r io.Reader, maxLineSize int) {
	defer close(s.ch)
	if s.closer != nil {
		defer func() { _ = s.closer.Close() }()
	}

	scanner := bufio.NewScanner(r)
	// Scanner caps tokens at max(maxLineSize, cap(buf)).
	scanner.Buffer(make([]byte, 0, min(64*1024, maxLineSize)), maxLineSize)

	// Scan blocks on stdin, so it runs on its own goroutine and the outer
	// loop watches for cancellation.
	type scanResult struct {
		line string
		err  error
	}
	results := make(chan scanResult)
	go func() {
		defer close(results)
		for scanner.Scan() {
			line := strings.TrimSuffix(scanner.Text(), "\r")
			if strings.TrimSpace(line) == "" {
				continue
			}
			select {
			case results <- scanResult{line: line}:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			if errors.Is(err, bufio.ErrTooLong) {
				err = fmt.Errorf("line exceeded max size (%d bytes): %w", maxLineSize, err)
			}
			select {
			case results <- scanResult{err: err}:
			case <-ctx.Done():
			}
		}
	}()

	lines := 0
	for {
		select {
		case <-ctx.Done():
			return
		case res, ok := <-results:
			if !ok {
				s.logger.Debug("logsource: input finished", zap.Int("lines", lines))
				return
			}
			if res.err != nil {
				s.logger.Warn("logsource: read failed", zap.Error(res.err))
				s.setErr(res.err)
				return
			}
			select {
			case s.ch <- model.IngestEnvelope{Source: s.name, Line: res.line}:
				lines++
			case <-ctx.Done():
				return
			}
		}
	}
}

func (s *ReaderSource) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *ReaderSource) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *ReaderSource) Lines() <-chan model.IngestEnvelope { return s.ch }
func (s *ReaderSource) Stop()                              { s.cancel() }
func (s *ReaderSource) Name() string                       { return s.name }
