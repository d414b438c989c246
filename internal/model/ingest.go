package model

// IngestEnvelope carries one raw log line with source metadata.
// It is the transport contract between line sources and parsing.
type IngestEnvelope struct {
	Source string
	Line   string
}
