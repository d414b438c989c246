package socketrpc

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/tinytelemetry/logscope/internal/logparse"
	"github.com/tinytelemetry/logscope/internal/model"
)

// JSON-RPC 2.0 Method Reference
//
// The socket RPC server exposes an anomaly scoring Backend over a Unix
// domain socket, one JSON object per line in each direction.
//
//   Method    Params                                       Result
//   ───────   ──────────────────────────────────────────   ─────────────────
//   Detect    {records: []WireRecord, threshold: number}   []WireFinding
//   Train     {records: []WireRecord}                      true
//
// WireRecord: {timestamp: RFC 3339 string | null, level, message,
// source: string | null}.
// WireFinding: {type, confidence, description, related_indices, severity}.
//
// Error codes follow JSON-RPC 2.0:
//   -32700  Parse error (malformed JSON)
//   -32601  Method not found
//   -32602  Invalid params
//   -32603  Internal error (marshal failure)
//   -32000  Application error (backend failure)

const (
	MethodDetect = "Detect"
	MethodTrain  = "Train"
)

const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeAppError       = -32000
)

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError represents a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string { return e.Message }

// WireRecord is a record as the backend sees it. Absent timestamps and
// sources are sent as null.
type WireRecord struct {
	Timestamp *string `json:"timestamp"`
	Level     string  `json:"level"`
	Message   string  `json:"message"`
	Source    *string `json:"source"`
}

// DetectParams is the Detect request body.
type DetectParams struct {
	Records   []WireRecord `json:"records"`
	Threshold float64      `json:"threshold"`
}

// TrainParams is the Train request body.
type TrainParams struct {
	Records []WireRecord `json:"records"`
}

// WireFinding is one finding as returned by a backend.
type WireFinding struct {
	Type           string  `json:"type"`
	Confidence     float64 `json:"confidence"`
	Description    string  `json:"description"`
	RelatedIndices []int   `json:"related_indices"`
	Severity       int     `json:"severity"`
}

// Backend scores record batches. The server dispatches Detect and Train
// calls to it.
type Backend interface {
	Detect(ctx context.Context, params DetectParams) ([]WireFinding, error)
	Train(ctx context.Context, params TrainParams) error
}

// ToWireRecords converts records for the wire. Timestamps are sent in UTC.
func ToWireRecords(records []model.Record) []WireRecord {
	out := make([]WireRecord, len(records))
	for i, r := range records {
		w := WireRecord{Level: r.Level, Message: r.Message}
		if r.HasTimestamp() {
			ts := r.Timestamp.UTC().Format(time.RFC3339Nano)
			w.Timestamp = &ts
		}
		if r.Source != "" {
			src := r.Source
			w.Source = &src
		}
		out[i] = w
	}
	return out
}

// wireTimeLayouts are accepted when decoding wire timestamps. Offset-less
// values are read as UTC.
var wireTimeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", logparse.TimestampLayout}

// FromWireRecords converts wire records back to records. An unparseable
// timestamp becomes an absent one.
func FromWireRecords(wire []WireRecord) []model.Record {
	out := make([]model.Record, len(wire))
	for i, w := range wire {
		r := model.Record{Level: w.Level, Message: w.Message}
		if w.Timestamp != nil {
			for _, layout := range wireTimeLayouts {
				if ts, err := time.ParseInLocation(layout, *w.Timestamp, time.UTC); err == nil {
					r.Timestamp = ts.UTC()
					break
				}
			}
		}
		if w.Source != nil {
			r.Source = *w.Source
		}
		out[i] = r
	}
	return out
}

// DefaultSocketPath returns the default Unix socket path of the backend.
// It prefers $XDG_RUNTIME_DIR/logscope/backend.sock, falling back to
// ~/.local/state/logscope/backend.sock.
func DefaultSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "logscope", "backend.sock")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "/tmp/logscope-backend.sock"
	}
	return filepath.Join(home, ".local", "state", "logscope", "backend.sock")
}
