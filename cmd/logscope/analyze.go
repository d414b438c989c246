package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tinytelemetry/logscope/internal/logsource"
	"github.com/tinytelemetry/logscope/internal/model"
	"github.com/tinytelemetry/logscope/internal/render"
)

func newAnalyzeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [path|-]...",
		Short: "Analyze log files, directories or stdin and print a report",
		Long: `Analyze reads each path (a file, a directory of .log/.json files, or "-"
for stdin; no path means stdin) and prints one report per file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			watch, _ := cmd.Flags().GetBool("watch")
			return c.runAnalyze(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args, watch)
		},
	}

	f := cmd.Flags()
	f.StringP("output", "o", defaultOutput, fmt.Sprintf("report format: %v", render.Formats))
	f.BoolP("watch", "w", false, "re-analyze whenever the file or directory changes")
	f.Bool("templates", false, "mine message templates with drain3")
	f.Int("top-n", model.DefaultTopN, "entries per pattern ranking")
	f.String("backend", backendLocal, "anomaly backend: local or socket")
	f.String("socket-path", "", "backend socket path (socket backend)")
	f.Float64("threshold", model.DefaultBackendThreshold, "anomaly threshold forwarded to the backend")
	return cmd
}

func (c *cli) runAnalyze(ctx context.Context, out, errOut io.Writer, args []string, watch bool) error {
	renderer, err := render.New(render.Format(c.cfg.Output))
	if err != nil {
		return err
	}

	p := c.newPipeline(nil)
	defer p.close()

	runOnce := func() error {
		paths, err := expandPaths(args)
		if err != nil {
			return err
		}
		for i, path := range paths {
			rep, err := p.analyze(ctx, path)
			if err != nil {
				return err
			}
			if i > 0 {
				fmt.Fprintln(out)
			}
			if err := renderer.Render(out, rep); err != nil {
				return fmt.Errorf("render %s: %w", path, err)
			}
		}
		return nil
	}

	if !watch {
		return runOnce()
	}

	if len(args) != 1 || args[0] == stdinArg {
		return errors.New("--watch needs exactly one file or directory path")
	}
	if err := runOnce(); err != nil {
		return err
	}
	err = logsource.Watch(ctx, args[0], func() error {
		// A file caught mid-rotation is reported and the watch goes on.
		if err := runOnce(); err != nil {
			c.logger.Warn("logscope: re-analyze failed", zap.String("path", args[0]), zap.Error(err))
			fmt.Fprintf(errOut, "Error: %v\n", err)
		}
		return nil
	}, logsource.WatchConfig{Debounce: c.cfg.WatchDebounce, Logger: c.logger})
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
