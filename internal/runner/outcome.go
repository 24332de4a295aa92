package runner

import (
	"bytes"
	"encoding/json"
)

// ReturnCodeAbnormal is the exit code reported when the process did not run
// to completion (timeout, spawn failure) or was killed by a signal.
const ReturnCodeAbnormal = -1

// Outcome is the normalized result of a lint run.
//
// A completed run carries Stdout, Stderr and ReturnCode. A run that never
// completed (timeout or spawn failure) carries Error and ReturnCodeAbnormal.
// Success is true exactly when the process exited with code zero.
type Outcome struct {
	Success    bool
	Stdout     string
	Stderr     string
	ReturnCode int
	Error      string

	// Findings holds stdout as raw JSON when it parsed as well-formed JSON,
	// nil otherwise. A literal JSON null report is kept as the raw value
	// "null", so it is never confused with an absent report.
	Findings json.RawMessage

	completed bool
}

// NewCompletedOutcome builds the outcome of a process that ran to completion.
// Findings are attached when stdout is well-formed JSON.
func NewCompletedOutcome(stdout, stderr string, code int) *Outcome {
	o := &Outcome{
		Success:    code == 0,
		Stdout:     stdout,
		Stderr:     stderr,
		ReturnCode: code,
		completed:  true,
	}
	if trimmed := bytes.TrimSpace([]byte(stdout)); len(trimmed) > 0 && json.Valid(trimmed) {
		o.Findings = json.RawMessage(trimmed)
	}
	return o
}

// NewFailedOutcome builds the outcome of a run that never completed.
func NewFailedOutcome(msg string) *Outcome {
	return &Outcome{
		Success:    false,
		ReturnCode: ReturnCodeAbnormal,
		Error:      msg,
	}
}

// Completed reports whether the process ran to completion, as opposed to
// timing out or failing to spawn.
func (o *Outcome) Completed() bool {
	return o.completed
}

// HasFindings reports whether stdout held a well-formed JSON report.
func (o *Outcome) HasFindings() bool {
	return o.Findings != nil
}

// DecodeFindings unmarshals the JSON report into v.
func (o *Outcome) DecodeFindings(v any) error {
	if o.Findings == nil {
		return ErrNoFindings
	}
	return json.Unmarshal(o.Findings, v)
}

type outcomeJSON struct {
	Success     bool            `json:"success"`
	Stdout      *string         `json:"stdout,omitempty"`
	Stderr      *string         `json:"stderr,omitempty"`
	ReturnCode  int             `json:"returncode"`
	Error       string          `json:"error,omitempty"`
	LintResults json.RawMessage `json:"lint_results,omitempty"`
}

// MarshalJSON renders the outcome in its wire shape. Completed outcomes
// always include stdout and stderr, even when empty.
func (o Outcome) MarshalJSON() ([]byte, error) {
	w := outcomeJSON{
		Success:     o.Success,
		ReturnCode:  o.ReturnCode,
		Error:       o.Error,
		LintResults: o.Findings,
	}
	if o.completed {
		w.Stdout = &o.Stdout
		w.Stderr = &o.Stderr
	}
	return json.Marshal(w)
}
