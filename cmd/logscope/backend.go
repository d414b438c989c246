package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tinytelemetry/logscope/internal/anomaly"
	"github.com/tinytelemetry/logscope/internal/socketrpc"
)

func newBackendCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backend",
		Short: "Run the reference anomaly backend on a Unix socket",
		Long: `Backend serves the Detect and Train JSON-RPC methods with the local heuristic
detector, for developing against the socket backend contract.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runBackend(cmd.Context(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().String("socket-path", "", "socket to listen on")
	return cmd
}

func (c *cli) runBackend(ctx context.Context, out io.Writer) error {
	adapter := anomaly.NewBackendAdapter(c.newHeuristic(), nil)
	srv := socketrpc.NewServer(c.cfg.SocketPath, adapter, socketrpc.ServerConfig{Logger: c.logger})
	if err := srv.Start(); err != nil {
		return fmt.Errorf("failed to start backend: %w", err)
	}
	defer srv.Stop()

	printBanner(out, "Anomaly backend", []bannerLine{
		{label: "Unix Socket", value: shortenPath(c.cfg.SocketPath), on: true},
		{label: "Detector", value: anomaly.HeuristicName, on: true},
	})

	<-ctx.Done()
	return nil
}
