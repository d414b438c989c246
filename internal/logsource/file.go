package logsource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// OpenFile opens path and streams its lines. An open failure is returned
// immediately; later read failures surface through Err. Every call starts
// a fresh pass over the file.
func OpenFile(ctx context.Context, path string, conf ...Config) (*ReaderSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("logsource: open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("logsource: stat %s: %w", path, err)
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("logsource: open %s: is a directory", path)
	}
	return NewReaderSource(ctx, path, f, f, conf...), nil
}

// LogExtensions are the file extensions Discover treats as log files.
var LogExtensions = []string{".log", ".json"}

// Discover lists the log files directly inside dir, sorted by name.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("logsource: read dir %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if IsLogFile(entry.Name()) {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// IsLogFile reports whether name carries one of LogExtensions.
func IsLogFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range LogExtensions {
		if ext == want {
			return true
		}
	}
	return false
}
