package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/R167/lintbridge/internal/runner"
	"github.com/R167/lintbridge/internal/security"
)

// Environment variables read by LoadEnv.
const (
	EnvBinary    = "ARDUINO_LINT_PATH"
	EnvLogLevel  = "LINTBRIDGE_LOG_LEVEL"
	EnvLogFormat = "LINTBRIDGE_LOG_FORMAT"
)

const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

type Config struct {
	Binary         string
	LintTimeout    time.Duration
	VersionTimeout time.Duration
	LogLevel       string
	LogFormat      string
	Trace          bool

	// lint
	Compliance     string
	LibraryManager string
	JSON           bool
	Parallel       int

	// serve
	MetricsAddr string
	Rate        float64
	Burst       int
}

func DefaultConfig() *Config {
	return &Config{
		Binary:         runner.DefaultBinaryName,
		LintTimeout:    runner.DefaultLintTimeout,
		VersionTimeout: runner.DefaultVersionTimeout,
		LogLevel:       "warn",
		LogFormat:      LogFormatText,
		Compliance:     runner.DefaultCompliance,
		Parallel:       4,
		Rate:           security.DefaultToolRate,
		Burst:          security.DefaultToolBurst,
	}
}

// LoadEnv overrides fields from the environment. Empty variables are ignored.
func (c *Config) LoadEnv(getenv func(string) string) {
	if v := getenv(EnvBinary); v != "" {
		c.Binary = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := getenv(EnvLogFormat); v != "" {
		c.LogFormat = v
	}
}

func (c *Config) Validate() error {
	if c.LintTimeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.LintTimeout)
	}
	if c.VersionTimeout <= 0 {
		return fmt.Errorf("version timeout must be positive, got %v", c.VersionTimeout)
	}
	if c.VersionTimeout >= c.LintTimeout {
		return fmt.Errorf("version timeout (%v) must be shorter than the lint timeout (%v)", c.VersionTimeout, c.LintTimeout)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("unknown log format %q (want %s or %s)", c.LogFormat, LogFormatText, LogFormatJSON)
	}
	if c.Parallel < 1 {
		return fmt.Errorf("parallel must be at least 1, got %d", c.Parallel)
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return level, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

// NewLogger builds the process logger. It always writes to w (stderr in
// production) because stdout may carry the MCP protocol.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: level}

	if c.LogFormat == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// NewRunner builds the Runner described by the config.
func (c *Config) NewRunner(logger *slog.Logger) *runner.Runner {
	return runner.New(
		runner.WithBinaryName(c.Binary),
		runner.WithLintTimeout(c.LintTimeout),
		runner.WithVersionTimeout(c.VersionTimeout),
		runner.WithLogger(logger),
	)
}
