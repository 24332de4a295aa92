package cli

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/R167/lintbridge/internal/output"
	"github.com/R167/lintbridge/internal/parallel"
	"github.com/R167/lintbridge/internal/runner"
	"github.com/R167/lintbridge/internal/security"
)

// jsonResult is one line of `lint --json` output.
type jsonResult struct {
	Path    string          `json:"path"`
	Outcome *runner.Outcome `json:"outcome,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func newLintCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint [paths...]",
		Short: "Lint one or more Arduino projects (default: current directory)",
		Long: `Lint runs arduino-lint on every given project directory and prints a
report per project, in argument order.

Exit status is 0 when every project passed, 1 when any project failed or
the run did not complete, and 2 when arduino-lint is not installed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			return a.lint(cmd, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&a.cfg.Compliance, "compliance", a.cfg.Compliance, "compliance level: permissive, specification or strict")
	flags.StringVar(&a.cfg.LibraryManager, "library-manager", a.cfg.LibraryManager, "Library Manager mode: submit, update or false")
	flags.BoolVar(&a.cfg.JSON, "json", a.cfg.JSON, "print one JSON outcome per line instead of a report")
	flags.IntVarP(&a.cfg.Parallel, "parallel", "p", a.cfg.Parallel, "number of projects linted at once")

	return cmd
}

func (a *app) lint(cmd *cobra.Command, paths []string) error {
	if err := security.ValidateOptionValue("compliance", a.cfg.Compliance); err != nil {
		return err
	}
	if err := security.ValidateOptionValue("library-manager", a.cfg.LibraryManager); err != nil {
		return err
	}

	reqs := make([]runner.Request, 0, len(paths))
	for _, p := range paths {
		abs, err := security.ValidateProjectPath(p)
		if err != nil {
			return err
		}
		reqs = append(reqs, runner.Request{
			Path:           abs,
			Compliance:     a.cfg.Compliance,
			LibraryManager: a.cfg.LibraryManager,
		})
	}

	r := a.cfg.NewRunner(a.logger)
	results := parallel.LintAll(cmd.Context(), r, reqs, a.cfg.Parallel)

	if a.cfg.JSON {
		if err := writeJSON(a, results); err != nil {
			return err
		}
	} else {
		writeReports(a, results)
	}

	for _, res := range results {
		if errors.Is(res.Err, runner.ErrNotInstalled) {
			return &ExitError{Code: ExitNotInstalled}
		}
	}
	if parallel.Failed(results) {
		return &ExitError{Code: ExitFailure}
	}
	return nil
}

func writeJSON(a *app, results []parallel.Result) error {
	enc := json.NewEncoder(a.stdout)
	for _, res := range results {
		line := jsonResult{Path: res.Request.Path, Outcome: res.Outcome}
		if res.Err != nil {
			line.Error = res.Err.Error()
		}
		if err := enc.Encode(line); err != nil {
			return err
		}
	}
	return nil
}

func writeReports(a *app, results []parallel.Result) {
	debug := a.logger.Enabled(context.Background(), slog.LevelDebug)
	notInstalledShown := false

	for _, res := range results {
		out := output.NewBufferedOutput(output.WithDebug(debug))
		switch {
		case errors.Is(res.Err, runner.ErrNotInstalled):
			if notInstalledShown {
				continue
			}
			notInstalledShown = true
			output.ReportNotInstalled(out, res.Err)
		case res.Err != nil:
			out.Error("%s: %v", res.Request.Path, res.Err)
		default:
			output.ReportOutcome(out, res.Request.Path, res.Outcome, debug)
		}
		out.Flush(a.stdout)
	}
}
