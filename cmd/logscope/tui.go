package main

import (
	"context"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tinytelemetry/logscope/internal/logsource"
	"github.com/tinytelemetry/logscope/internal/model"
	"github.com/tinytelemetry/logscope/internal/tui"
)

func newTUICmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui <path>",
		Short: "Browse the report for one log file interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			watch, _ := cmd.Flags().GetBool("watch")
			return c.runTUI(cmd.Context(), args[0], watch)
		},
	}
	f := cmd.Flags()
	f.BoolP("watch", "w", false, "refresh the report whenever the file changes")
	f.Bool("templates", false, "mine message templates with drain3")
	f.String("backend", backendLocal, "anomaly backend: local or socket")
	f.String("socket-path", "", "backend socket path (socket backend)")
	return cmd
}

func (c *cli) runTUI(ctx context.Context, path string, watch bool) error {
	p := c.newPipeline(nil)
	defer p.close()

	// The reload key and the watcher may race; runs are serialized.
	var mu sync.Mutex
	reload := func(ctx context.Context) (model.AnalysisReport, error) {
		mu.Lock()
		defer mu.Unlock()
		return p.analyze(ctx, path)
	}
	rep, err := reload(ctx)
	if err != nil {
		return err
	}

	var updates chan tui.ReportMsg
	if watch {
		updates = make(chan tui.ReportMsg, 1)
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			err := logsource.Watch(ctx, path, func() error {
				rep, err := reload(ctx)
				select {
				case updates <- tui.ReportMsg{Report: rep, Err: err}:
				case <-ctx.Done():
				}
				return nil
			}, logsource.WatchConfig{Debounce: c.cfg.WatchDebounce, Logger: c.logger})
			if err != nil {
				c.logger.Warn("logscope: watch stopped", zap.String("path", path), zap.Error(err))
			}
		}()
	}

	return tui.Run(ctx, rep, reload, updates)
}
