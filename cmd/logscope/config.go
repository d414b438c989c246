package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tinytelemetry/logscope/internal/model"
	"github.com/tinytelemetry/logscope/internal/render"
	"github.com/tinytelemetry/logscope/internal/socketrpc"
)

const (
	defaultLogLevel       = "info"
	defaultOutput         = string(render.FormatText)
	defaultAPIAddr        = "127.0.0.1:3000"
	defaultQueryTimeout   = 30 * time.Second
	defaultAnomalyTimeout = 15 * time.Second
	defaultWatchDebounce  = 250 * time.Millisecond
	defaultMaxLineSize    = 1024 * 1024
)

// Backend modes for anomaly detection.
const (
	backendLocal  = "local"
	backendSocket = "socket"
)

// appConfig is internal runtime configuration.
// It is package-private to keep defaults and shape local to the CLI entrypoint.
type appConfig struct {
	LogLevel       string        `mapstructure:"log-level"`
	LogFile        string        `mapstructure:"log-file"`
	Output         string        `mapstructure:"output"`
	Templates      bool          `mapstructure:"templates"`
	TopN           int           `mapstructure:"top-n"`
	MinRecords     int           `mapstructure:"min-records"`
	ErrorThreshold int           `mapstructure:"error-threshold"`
	Backend        string        `mapstructure:"backend"`
	SocketPath     string        `mapstructure:"socket-path"`
	Threshold      float64       `mapstructure:"threshold"`
	BackendTimeout time.Duration `mapstructure:"backend-timeout"`
	AnomalyTimeout time.Duration `mapstructure:"anomaly-timeout"`
	APIAddr        string        `mapstructure:"api-addr"`
	QueryTimeout   time.Duration `mapstructure:"query-timeout"`
	MaxLineSize    int           `mapstructure:"max-line-size"`
	WatchDebounce  time.Duration `mapstructure:"watch-debounce"`
	ConfigPath     string        `mapstructure:"-"` // not from config file
}

// newViper returns a viper instance with env binding and every default set.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("LOGSCOPE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("log-level", defaultLogLevel)
	v.SetDefault("log-file", "")
	v.SetDefault("output", defaultOutput)
	v.SetDefault("templates", false)
	v.SetDefault("top-n", model.DefaultTopN)
	v.SetDefault("min-records", model.DefaultMinAnomalySample)
	v.SetDefault("error-threshold", model.DefaultErrorThreshold)
	v.SetDefault("backend", backendLocal)
	v.SetDefault("socket-path", socketrpc.DefaultSocketPath())
	v.SetDefault("threshold", model.DefaultBackendThreshold)
	v.SetDefault("backend-timeout", model.DefaultBackendTimeout)
	v.SetDefault("anomaly-timeout", defaultAnomalyTimeout)
	v.SetDefault("api-addr", defaultAPIAddr)
	v.SetDefault("query-timeout", defaultQueryTimeout)
	v.SetDefault("max-line-size", defaultMaxLineSize)
	v.SetDefault("watch-debounce", defaultWatchDebounce)
	return v
}

// loadConfig reads the optional config file into v and validates the result.
func loadConfig(v *viper.Viper, configPath string) (appConfig, error) {
	var cfg appConfig

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else if home, err := os.UserHomeDir(); err == nil {
		v.SetConfigFile(filepath.Join(home, ".config", "logscope", "config.yml"))
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
		// An explicitly named file must exist.
		if configPath != "" {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	cfg.ConfigPath = v.ConfigFileUsed()

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *appConfig) validate() error {
	if _, err := render.New(render.Format(c.Output)); err != nil {
		return fmt.Errorf("invalid output: %w", err)
	}
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.Backend == "" {
		c.Backend = backendLocal
	}
	if c.Backend != backendLocal && c.Backend != backendSocket {
		return fmt.Errorf("invalid backend %q (want %s or %s)", c.Backend, backendLocal, backendSocket)
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("invalid threshold %v: must be within [0, 1]", c.Threshold)
	}
	if c.TopN <= 0 {
		return fmt.Errorf("invalid top-n: %d", c.TopN)
	}
	if c.MinRecords <= 0 {
		return fmt.Errorf("invalid min-records: %d", c.MinRecords)
	}
	if c.ErrorThreshold < 0 {
		return fmt.Errorf("invalid error-threshold: %d", c.ErrorThreshold)
	}
	if c.MaxLineSize <= 0 {
		return fmt.Errorf("invalid max-line-size: %d", c.MaxLineSize)
	}
	if c.Backend == backendSocket && c.SocketPath == "" {
		return errors.New("socket-path is required with the socket backend")
	}
	if strings.HasPrefix(c.SocketPath, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			c.SocketPath = filepath.Join(home, c.SocketPath[2:])
		}
	}
	return nil
}
