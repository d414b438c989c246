package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newTrainCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train <path>...",
		Short: "Send parsed records to the socket backend for training",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTrain(cmd.Context(), cmd.OutOrStdout(), args)
		},
	}
	cmd.Flags().String("socket-path", "", "backend socket path")
	return cmd
}

func (c *cli) runTrain(ctx context.Context, out io.Writer, args []string) error {
	paths, err := expandPaths(args)
	if err != nil {
		return err
	}

	p := c.newPipeline(nil)
	defer p.close()
	remote, client := c.newRemote()
	defer client.Close()

	for _, path := range paths {
		records, _, err := p.collect(ctx, path)
		if err != nil {
			return err
		}
		if err := remote.Train(ctx, records); err != nil {
			return fmt.Errorf("train on %s: %w", path, err)
		}
		c.logger.Info("logscope: trained", zap.String("path", path), zap.Int("records", len(records)))
		fmt.Fprintf(out, "trained on %d records from %s\n", len(records), path)
	}
	return nil
}
