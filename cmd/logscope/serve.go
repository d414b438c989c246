package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tinytelemetry/logscope/internal/duckdb"
	"github.com/tinytelemetry/logscope/internal/httpserver"
	"github.com/tinytelemetry/logscope/internal/metrics"
)

func newServeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP analysis API",
		Long: `Serve accepts raw log text on POST /api/analyze, keeps the last report
(GET /api/report) and lets its records be queried with read-only SQL
(POST /api/query). Prometheus metrics are served on GET /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runServe(cmd.Context(), cmd.OutOrStdout())
		},
	}
	f := cmd.Flags()
	f.String("api-addr", defaultAPIAddr, "HTTP listen address")
	f.Bool("templates", false, "mine message templates with drain3")
	f.String("backend", backendLocal, "anomaly backend: local or socket")
	f.String("socket-path", "", "backend socket path (socket backend)")
	f.Duration("query-timeout", defaultQueryTimeout, "timeout for each SQL query")
	return cmd
}

func (c *cli) runServe(ctx context.Context, out io.Writer) error {
	store, err := duckdb.NewStore("", duckdb.StoreConfig{QueryTimeout: c.cfg.QueryTimeout, Logger: c.logger})
	if err != nil {
		return fmt.Errorf("failed to initialize DuckDB: %w", err)
	}
	defer store.Close()

	collector := metrics.New(metrics.Config{ProcessMetrics: true})
	p := c.newPipeline(collector)
	defer p.close()

	srv := httpserver.NewServer(c.cfg.APIAddr, store, p.agg, httpserver.Config{
		Metrics:    collector.Handler(),
		Dispatcher: p.dispatcher,
		Logger:     c.logger,
	})
	if err := srv.Start(); err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}

	printBanner(out, "HTTP API", []bannerLine{
		{label: "HTTP API", value: srv.Addr(), on: true},
		{label: "Metrics", value: "http://" + srv.Addr() + "/metrics", on: true},
		{label: "Backend", value: c.backendLabel(), on: c.cfg.Backend == backendSocket},
		{label: "Storage", value: "in-memory", on: true},
	})

	<-ctx.Done()
	c.logger.Info("logscope: shutting down HTTP API")
	if err := srv.Stop(); err != nil {
		c.logger.Warn("logscope: HTTP API shutdown", zap.Error(err))
	}
	return nil
}

func (c *cli) backendLabel() string {
	if c.cfg.Backend == backendSocket {
		return shortenPath(c.cfg.SocketPath)
	}
	return "local heuristic"
}
