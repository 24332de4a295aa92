package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/R167/lintbridge/internal/telemetry"
)

// Exit codes of the lint command.
const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitNotInstalled = 2
)

// ExitError makes a command exit with Code after printing nothing further.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

type app struct {
	cfg     *Config
	version string
	stdout  io.Writer
	stderr  io.Writer

	logger    *slog.Logger
	telemetry *telemetry.Telemetry
}

func newApp(version string, getenv func(string) string, stdout, stderr io.Writer) *app {
	cfg := DefaultConfig()
	cfg.LoadEnv(getenv)
	return &app{cfg: cfg, version: version, stdout: stdout, stderr: stderr}
}

// NewRootCommand builds the command tree. Defaults come from DefaultConfig,
// overridden by the environment, overridden by flags.
func NewRootCommand(version string, getenv func(string) string, stdout, stderr io.Writer) *cobra.Command {
	return newApp(version, getenv, stdout, stderr).rootCommand()
}

func (a *app) rootCommand() *cobra.Command {
	cfg := a.cfg
	root := &cobra.Command{
		Use:           "lintbridge",
		Short:         "Run arduino-lint and return its findings as structured data",
		Version:       a.version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.start(cmd)
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.Binary, "binary", cfg.Binary, "arduino-lint name or path (env "+EnvBinary+")")
	flags.DurationVar(&cfg.LintTimeout, "timeout", cfg.LintTimeout, "wall-clock bound of one lint run")
	flags.DurationVar(&cfg.VersionTimeout, "version-timeout", cfg.VersionTimeout, "bound of the version probe")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error (env "+EnvLogLevel+")")
	flags.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "text or json (env "+EnvLogFormat+")")
	flags.BoolVar(&cfg.Trace, "trace", cfg.Trace, "print OpenTelemetry spans to stderr")

	root.AddCommand(
		newLintCommand(a),
		newVersionCommand(a),
		newServeCommand(a),
	)
	return root
}

func (a *app) start(cmd *cobra.Command) error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	a.logger = a.cfg.NewLogger(a.stderr)

	tcfg := telemetry.Config{Metrics: cmd.Name() == "serve" && a.cfg.MetricsAddr != ""}
	if a.cfg.Trace {
		tcfg.TraceWriter = a.stderr
	}
	tel, err := telemetry.Setup(tcfg)
	if err != nil {
		return err
	}
	a.telemetry = tel
	return nil
}

func (a *app) stop(ctx context.Context) error {
	if a.telemetry == nil {
		return nil
	}
	return a.telemetry.Shutdown(context.WithoutCancel(ctx))
}

// Run executes the command line and returns the process exit code.
func Run(ctx context.Context, version string, args []string, getenv func(string) string, stdout, stderr io.Writer) int {
	a := newApp(version, getenv, stdout, stderr)
	root := a.rootCommand()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	// Post-run hooks are skipped when a command fails, so flush here.
	if stopErr := a.stop(ctx); stopErr != nil {
		fmt.Fprintf(stderr, "Error: flushing telemetry: %v\n", stopErr)
	}
	if err == nil {
		return ExitOK
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return ExitFailure
}

// Main runs lintbridge with the process arguments and environment.
func Main(version string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Run(ctx, version, os.Args[1:], os.Getenv, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
