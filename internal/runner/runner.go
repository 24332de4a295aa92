package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultLintTimeout    = 60 * time.Second
	DefaultVersionTimeout = 5 * time.Second

	// waitDelay bounds how long Wait keeps draining pipes after the child
	// was killed, in case something outside the process group holds them.
	waitDelay = 2 * time.Second
)

// errTimedOut marks an execution that hit the wall-clock bound.
var errTimedOut = errors.New("process timed out")

// Runner runs arduino-lint for a fixed binary location.
//
// Thread Safety: Safe for concurrent use. Every field is set in New and never
// changes afterwards.
type Runner struct {
	path           string
	lintTimeout    time.Duration
	versionTimeout time.Duration
	logger         *slog.Logger
}

type settings struct {
	binaryPath     string
	binaryName     string
	lintTimeout    time.Duration
	versionTimeout time.Duration
	logger         *slog.Logger
}

// Option configures a Runner.
type Option func(*settings)

// WithBinaryPath uses path as-is instead of searching PATH.
func WithBinaryPath(path string) Option {
	return func(s *settings) {
		s.binaryPath = path
	}
}

// WithBinaryName sets the name searched on PATH when no explicit path is given.
func WithBinaryName(name string) Option {
	return func(s *settings) {
		s.binaryName = name
	}
}

// WithLintTimeout overrides the wall-clock bound of LintProject.
// Non-positive values keep the default.
func WithLintTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.lintTimeout = d
		}
	}
}

// WithVersionTimeout overrides the bound of the version probe.
// Non-positive values keep the default.
func WithVersionTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.versionTimeout = d
		}
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Runner and resolves its binary location once.
//
// An explicit path wins. Otherwise the binary name is searched on PATH and,
// if that fails, kept literally. New never fails and never touches the
// filesystem beyond that lookup.
func New(opts ...Option) *Runner {
	s := settings{
		binaryName:     DefaultBinaryName,
		lintTimeout:    DefaultLintTimeout,
		versionTimeout: DefaultVersionTimeout,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(&s)
	}

	path := s.binaryPath
	if path == "" {
		path = ResolveBinary(s.binaryName)
	}

	s.logger.Debug("Resolved arduino-lint location",
		slog.String("path", path),
		slog.Bool("explicit", s.binaryPath != ""),
	)

	return &Runner{
		path:           path,
		lintTimeout:    s.lintTimeout,
		versionTimeout: s.versionTimeout,
		logger:         s.logger,
	}
}

// Path returns the resolved binary location.
func (r *Runner) Path() string {
	return r.path
}

// LintTimeout returns the wall-clock bound applied to every LintProject call.
func (r *Runner) LintTimeout() time.Duration {
	return r.lintTimeout
}

// IsAvailable reports whether the binary location is set and exists.
// No process is spawned.
func (r *Runner) IsAvailable() bool {
	if r.path == "" {
		return false
	}
	_, err := os.Stat(r.path)
	return err == nil
}

// Version probes the binary with --version and returns the first token of its
// output. Every failure (missing binary, timeout, non-zero exit, empty output)
// yields ok == false; version probing is best-effort.
func (r *Runner) Version(ctx context.Context) (version string, ok bool) {
	ctx, span := tracer().Start(ctx, "Runner.Version")
	defer span.End()

	if r.path == "" {
		return "", false
	}

	res, err := r.execute(ctx, r.versionTimeout, "--version")
	if err != nil {
		r.logger.Debug("Version probe failed",
			slog.String("path", r.path),
			slog.String("error", err.Error()),
		)
		return "", false
	}
	if res.exitCode != 0 {
		return "", false
	}

	fields := strings.Fields(res.stdout)
	if len(fields) == 0 {
		return "", false
	}
	span.SetAttributes(attribute.String("lint.version", fields[0]))
	return fields[0], true
}

// LintProject runs the binary against req.Path.
//
// The only error it returns wraps ErrNotInstalled: either IsAvailable was
// false before spawning, or the binary disappeared before the spawn.
// Timeouts, non-zero exits and any other execution failure come back as an
// Outcome with Success == false and a nil error.
func (r *Runner) LintProject(ctx context.Context, req Request) (*Outcome, error) {
	ctx, span := startLintSpan(ctx, req)
	defer span.End()

	if !r.IsAvailable() {
		span.SetStatus(codes.Error, ErrNotInstalled.Error())
		return nil, notInstalled(r.path)
	}

	args := BuildArgs(req)
	start := time.Now()

	r.logger.Debug("Running arduino-lint",
		slog.String("path", r.path),
		slog.Any("args", args),
		slog.Duration("timeout", r.lintTimeout),
	)

	res, err := r.execute(ctx, r.lintTimeout, args...)
	duration := time.Since(start)

	var outcome *Outcome
	timedOut := false

	switch {
	case err == nil:
		outcome = NewCompletedOutcome(res.stdout, res.stderr, res.exitCode)

	case errors.Is(err, errTimedOut):
		timedOut = true
		outcome = NewFailedOutcome(fmt.Sprintf("linting operation timed out after %v seconds", r.lintTimeout.Seconds()))
		r.logger.Warn("arduino-lint timed out",
			slog.String("project", req.Path),
			slog.Duration("timeout", r.lintTimeout),
		)

	case isNotFound(err):
		span.SetStatus(codes.Error, err.Error())
		return nil, notInstalled(r.path)

	default:
		outcome = NewFailedOutcome(err.Error())
		r.logger.Error("arduino-lint failed to run",
			slog.String("project", req.Path),
			slog.String("error", err.Error()),
		)
	}

	setLintSpanResult(span, outcome, timedOut)
	recordLintMetrics(ctx, duration, outcome, timedOut)

	r.logger.Debug("arduino-lint finished",
		slog.String("project", req.Path),
		slog.Bool("success", outcome.Success),
		slog.Int("returncode", outcome.ReturnCode),
		slog.Bool("has_findings", outcome.HasFindings()),
		slog.Duration("duration", duration),
	)

	return outcome, nil
}

type execResult struct {
	stdout   string
	stderr   string
	exitCode int
}

// execute runs the binary with args and waits for it, bounded by timeout.
//
// A nil error means the process ran to completion; its exit code may still be
// non-zero. errTimedOut means the process was killed at the deadline and
// reaped. Any other error is a spawn or wait failure.
func (r *Runner) execute(ctx context.Context, timeout time.Duration, args ...string) (execResult, error) {
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	//nolint:gosec // G204: the binary location comes from configuration, args are passed without a shell
	cmd := exec.CommandContext(cmdCtx, r.path, args...)

	// A nil Stdin reads from the null device, so the tool can never block on input.
	cmd.Stdin = nil

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay
	configureProcess(cmd)

	// A bare name found only through a relative PATH entry is still run.
	if errors.Is(cmd.Err, exec.ErrDot) {
		cmd.Err = nil
	}

	err := cmd.Run()

	res := execResult{
		stdout:   decodeText(stdout.Bytes()),
		stderr:   decodeText(stderr.Bytes()),
		exitCode: ReturnCodeAbnormal,
	}
	if cmd.ProcessState != nil {
		res.exitCode = cmd.ProcessState.ExitCode()
	}

	if err == nil {
		return res, nil
	}

	if errors.Is(cmdCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return res, errTimedOut
	}
	if ctx.Err() != nil {
		return res, ctx.Err()
	}

	// A process that exited on its own, including one killed by a signal we
	// did not send, completed; its output is kept with whatever code it got.
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return res, nil
	}
	if errors.Is(err, exec.ErrWaitDelay) && cmd.ProcessState != nil {
		return res, nil
	}

	return res, err
}

// isNotFound reports whether a spawn error means the binary is missing.
func isNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) ||
		errors.Is(err, fs.ErrNotExist)
}
