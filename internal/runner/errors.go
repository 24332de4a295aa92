package runner

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInstalled means the analysis binary is missing or unreachable.
	ErrNotInstalled = errors.New("arduino-lint is not installed or not in PATH")

	// ErrNoFindings is returned by Outcome.DecodeFindings when stdout did not
	// hold a JSON report.
	ErrNoFindings = errors.New("no structured findings in output")
)

// ToolError ties an installation failure to the binary location it concerns.
type ToolError struct {
	Path string
	Err  error
}

func (e *ToolError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v (location: %s)", e.Err, e.Path)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

func notInstalled(path string) error {
	return &ToolError{Path: path, Err: ErrNotInstalled}
}
