package model

// RecordQuerier provides read-only SQL access to one run's records.
type RecordQuerier interface {
	ExecuteQuery(query string) ([]map[string]interface{}, error)
	GetSchemaDescription() string
	TableRowCounts() (map[string]int64, error)
}

// RecordWriter replaces the queryable record set with a new run's records.
type RecordWriter interface {
	ReplaceRecords(records []Record) error
}

// RecordStore is the combined read/write contract used by the HTTP API.
type RecordStore interface {
	RecordQuerier
	RecordWriter
}
