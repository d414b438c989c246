package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tinytelemetry/logscope/internal/duckdb"
)

func newQueryCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <path>",
		Short: "Load a log into in-memory DuckDB and run a read-only SQL query",
		Long: `Query parses the log at path into the "records" table and prints the rows
of a single SELECT/WITH statement as JSON. Use --schema to see the columns.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sql, _ := cmd.Flags().GetString("sql")
			schema, _ := cmd.Flags().GetBool("schema")
			return c.runQuery(cmd.Context(), cmd.OutOrStdout(), args[0], sql, schema)
		},
	}
	f := cmd.Flags()
	f.String("sql", "", "query to run against the records table")
	f.Bool("schema", false, "print the table schema instead of querying")
	f.Duration("query-timeout", defaultQueryTimeout, "timeout for the query")
	return cmd
}

func (c *cli) runQuery(ctx context.Context, out io.Writer, path, sql string, schema bool) error {
	store, err := duckdb.NewStore("", duckdb.StoreConfig{QueryTimeout: c.cfg.QueryTimeout, Logger: c.logger})
	if err != nil {
		return fmt.Errorf("failed to initialize DuckDB: %w", err)
	}
	defer store.Close()

	if schema {
		_, err := fmt.Fprintln(out, store.GetSchemaDescription())
		return err
	}
	if sql == "" {
		return errors.New("--sql is required")
	}

	p := c.newPipeline(nil)
	defer p.close()

	records, _, err := p.collect(ctx, path)
	if err != nil {
		return err
	}
	if err := store.ReplaceRecords(records); err != nil {
		return err
	}

	rows, err := store.ExecuteQuery(sql)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
