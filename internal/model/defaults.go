package model

import "time"

// Shared defaults used by the CLI, the HTTP API, and the analysis engines.
const (
	DefaultTopN             = 5
	DefaultMinAnomalySample = 10
	DefaultErrorThreshold   = 3
	DefaultBackendThreshold = 0.7
	DefaultBackendTimeout   = 10 * time.Second
)
