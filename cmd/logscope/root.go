package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// cli carries state shared by every subcommand of one invocation.
type cli struct {
	v          *viper.Viper
	configPath string
	cfg        appConfig
	logger     *zap.Logger
	closeLog   func()
}

// newRootCmd builds the command tree. Call the returned cli's close once
// the command has run.
func newRootCmd() (*cobra.Command, *cli) {
	c := &cli{v: newViper(), logger: zap.NewNop(), closeLog: func() {}}

	root := &cobra.Command{
		Use:           "logscope",
		Short:         "Analyze log files: statistics, recurring patterns and anomalies",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "config file (default is $HOME/.config/logscope/config.yml)")
	pf.String("log-level", defaultLogLevel, "log level: debug, info, warn, error")
	pf.String("log-file", "", `log file (default is $HOME/.local/state/logscope/logscope.log, "-" for stderr)`)

	root.AddCommand(
		newAnalyzeCmd(c),
		newTUICmd(c),
		newServeCmd(c),
		newQueryCmd(c),
		newBackendCmd(c),
		newTrainCmd(c),
		newVersionCmd(),
	)
	return root, c
}

// close flushes and closes the log file.
func (c *cli) close() {
	c.closeLog()
}

// setup binds the running command's flags, loads config and opens the log.
// Flags are bound per invocation so commands sharing a flag name do not
// shadow each other.
func (c *cli) setup(cmd *cobra.Command) error {
	if err := c.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	cfg, err := loadConfig(c.v, c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	logger, closeLog, err := newLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	c.logger, c.closeLog = logger, closeLog
	c.logger.Debug("logscope: config loaded",
		zap.String("command", cmd.Name()),
		zap.String("config", cfg.ConfigPath),
		zap.String("backend", cfg.Backend),
	)
	return nil
}
