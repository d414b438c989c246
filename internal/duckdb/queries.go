package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/tinytelemetry/logscope/internal/model"
)

// DefaultMaxRows caps the rows ExecuteQuery returns.
const DefaultMaxRows = 1000

// ErrQueryRejected is returned when a query fails the read-only checks.
var ErrQueryRejected = errors.New("duckdb: query rejected")

// dangerousKeywordPattern matches write and session keywords at word
// boundaries, so "RESET" does not match "SET".
var dangerousKeywordPattern = regexp.MustCompile(
	`(?i)\b(INSERT|UPDATE|DELETE|DROP|CREATE|ALTER|TRUNCATE|COPY|ATTACH|DETACH|LOAD|EXPORT|IMPORT|INSTALL|CALL|EXECUTE|PRAGMA|SET)\b`,
)

// blockCommentPattern matches C-style block comments (/* ... */).
var blockCommentPattern = regexp.MustCompile(`/\*[\s\S]*?\*/`)

// stripSQLComments removes -- line comments and /* */ block comments from a query.
func stripSQLComments(query string) string {
	cleaned := blockCommentPattern.ReplaceAllString(query, " ")
	var result strings.Builder
	for _, line := range strings.Split(cleaned, "\n") {
		if idx := strings.Index(line, "--"); idx >= 0 {
			line = line[:idx]
		}
		result.WriteString(line)
		result.WriteByte('\n')
	}
	return result.String()
}

// checkReadOnly validates query and returns the statement to execute.
// One trailing semicolon is tolerated; any other makes it a multi-statement
// query and is rejected.
func checkReadOnly(query string) (string, error) {
	stripped := strings.TrimSpace(stripSQLComments(query))
	stripped = strings.TrimSpace(strings.TrimSuffix(stripped, ";"))
	if stripped == "" {
		return "", fmt.Errorf("%w: empty query", ErrQueryRejected)
	}
	if strings.Contains(stripped, ";") {
		return "", fmt.Errorf("%w: multiple statements are not allowed", ErrQueryRejected)
	}

	upper := strings.ToUpper(stripped)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return "", fmt.Errorf("%w: only SELECT/WITH queries are allowed", ErrQueryRejected)
	}
	if match := dangerousKeywordPattern.FindString(stripped); match != "" {
		return "", fmt.Errorf("%w: disallowed keyword %s", ErrQueryRejected, strings.ToUpper(match))
	}
	return stripped, nil
}

// queryCtx returns a context with the store's configured query timeout.
func (s *Store) queryCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.QueryTimeout)
}

// ExecuteQuery runs a read-only SQL query against the records table and
// returns at most MaxRows rows keyed by column name.
func (s *Store) ExecuteQuery(query string) ([]map[string]interface{}, error) {
	stmt, err := checkReadOnly(query)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()
	rows, err := s.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("duckdb: query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("duckdb: columns: %w", err)
	}

	results := make([]map[string]interface{}, 0)
	for rows.Next() && len(results) < s.maxRows {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			s.logger.Warn("duckdb: scan error", zap.String("op", "ExecuteQuery"), zap.Error(err))
			continue
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		results = append(results, row)
	}

	return results, rows.Err()
}

// GetSchemaDescription returns a human-readable description of the queryable schema.
func (s *Store) GetSchemaDescription() string {
	return `Table 'records': idx (INTEGER, position in the analyzed sequence; anomaly related_indices refer to it), ` +
		`timestamp (TIMESTAMP, UTC, NULL when the line had none), level (VARCHAR, raw as logged), ` +
		`message (VARCHAR), source (VARCHAR, NULL when the format has no origin label).`
}

// TableRowCounts returns the row count for each known table using a hardcoded allowlist.
func (s *Store) TableRowCounts() (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	allowedTables := []string{"records"}
	counts := make(map[string]int64, len(allowedTables))

	for _, table := range allowedTables {
		var count int64
		// Table names are hardcoded constants, not user input.
		err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count)
		if err != nil {
			return nil, fmt.Errorf("duckdb: count %s: %w", table, err)
		}
		counts[table] = count
	}
	return counts, nil
}

// LevelCounts returns the number of stored records per raw level.
func (s *Store) LevelCounts() (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT level, COUNT(*) FROM records GROUP BY level`)
	if err != nil {
		return nil, fmt.Errorf("duckdb: level counts: %w", err)
	}
	defer rows.Close()

	result := make(map[string]int64)
	for rows.Next() {
		var level string
		var count int64
		if err := rows.Scan(&level, &count); err != nil {
			s.logger.Warn("duckdb: scan error", zap.String("op", "LevelCounts"), zap.Error(err))
			continue
		}
		result[level] = count
	}
	return result, rows.Err()
}

// Records returns the stored records in sequence order.
func (s *Store) Records() ([]model.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT timestamp, level, message, source FROM records ORDER BY idx`)
	if err != nil {
		return nil, fmt.Errorf("duckdb: records: %w", err)
	}
	defer rows.Close()

	var out []model.Record
	for rows.Next() {
		var (
			ts  sql.NullTime
			src sql.NullString
			r   model.Record
		)
		if err := rows.Scan(&ts, &r.Level, &r.Message, &src); err != nil {
			return nil, fmt.Errorf("duckdb: scan record: %w", err)
		}
		if ts.Valid {
			r.Timestamp = ts.Time.UTC()
		}
		r.Source = nullString(src)
		out = append(out, r)
	}
	return out, rows.Err()
}
