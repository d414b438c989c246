package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"go.uber.org/zap"

	"github.com/tinytelemetry/logscope/internal/duckdb/migrate"
)

// DefaultQueryTimeout bounds every statement the store runs.
const DefaultQueryTimeout = 30 * time.Second

// StoreConfig holds optional store settings.
type StoreConfig struct {
	QueryTimeout time.Duration
	// MaxRows caps ExecuteQuery results. Zero means DefaultMaxRows.
	MaxRows int
	Logger  *zap.Logger
}

// Store holds one analysis run's records in an in-memory DuckDB database.
// Nothing is written to disk; the data is gone when the store is closed.
type Store struct {
	db           *sql.DB
	mu           sync.RWMutex
	logger       *zap.Logger
	maxRows      int
	QueryTimeout time.Duration
}

// NewStore opens an in-memory DuckDB database and applies the schema.
// dsn must be empty; file-backed databases are not supported.
func NewStore(dsn string, conf ...StoreConfig) (*Store, error) {
	if dsn != "" {
		return nil, fmt.Errorf("duckdb: only in-memory stores are supported, got %q", dsn)
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("duckdb: open: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), DefaultQueryTimeout)
	defer cancel()
	if err := migrate.NewRunner(db).Run(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("duckdb: migrate: %w", err)
	}

	s := &Store{
		db:           db,
		logger:       zap.NewNop(),
		maxRows:      DefaultMaxRows,
		QueryTimeout: DefaultQueryTimeout,
	}
	if len(conf) > 0 {
		if conf[0].QueryTimeout > 0 {
			s.QueryTimeout = conf[0].QueryTimeout
		}
		if conf[0].MaxRows > 0 {
			s.maxRows = conf[0].MaxRows
		}
		if conf[0].Logger != nil {
			s.logger = conf[0].Logger
		}
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
