package duckdb

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/tinytelemetry/logscope/internal/model"
)

// ReplaceRecords swaps the stored record set for records in one transaction.
// Row idx matches the record's position in the slice, which is the index
// anomaly findings refer to.
func (s *Store) ReplaceRecords(records []model.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("duckdb: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return fmt.Errorf("duckdb: clear records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (idx, timestamp, level, message, source) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("duckdb: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		var ts, src interface{}
		if r.HasTimestamp() {
			ts = r.Timestamp.UTC()
		}
		if r.Source != "" {
			src = r.Source
		}
		if _, err := stmt.ExecContext(ctx, i, ts, r.Level, r.Message, src); err != nil {
			return fmt.Errorf("duckdb: insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("duckdb: commit: %w", err)
	}
	s.logger.Debug("duckdb: records replaced", zap.Int("count", len(records)))
	return nil
}

// nullString maps SQL NULL to the empty string.
func nullString(v sql.NullString) string {
	if !v.Valid {
		return ""
	}
	return v.String
}
