package mcp

import (
	"encoding/json"

	"github.com/R167/lintbridge/internal/runner"
)

type LintProjectInput struct {
	Path           string `json:"path" jsonschema:"path of the sketch or library directory to lint"`
	Compliance     string `json:"compliance,omitempty" jsonschema:"compliance level: permissive, specification (default) or strict"`
	LibraryManager string `json:"library_manager,omitempty" jsonschema:"Library Manager mode: submit, update or false; omitted when empty"`
}

// LintProjectOutput mirrors the JSON shape of runner.Outcome.
type LintProjectOutput struct {
	Success     bool    `json:"success"`
	Stdout      *string `json:"stdout,omitempty"`
	Stderr      *string `json:"stderr,omitempty"`
	ReturnCode  int     `json:"returncode"`
	Error       string  `json:"error,omitempty"`
	LintResults any     `json:"lint_results,omitempty"`
}

type LintStatusInput struct{}

type LintStatusOutput struct {
	Installed bool   `json:"installed"`
	Path      string `json:"path"`
	Version   string `json:"version,omitempty"`
}

func newLintProjectOutput(o *runner.Outcome) (LintProjectOutput, error) {
	out := LintProjectOutput{
		Success:    o.Success,
		ReturnCode: o.ReturnCode,
		Error:      o.Error,
	}
	if o.Completed() {
		stdout, stderr := o.Stdout, o.Stderr
		out.Stdout = &stdout
		out.Stderr = &stderr
	}
	if o.HasFindings() {
		// A JSON null report decodes to nil and is dropped from the output
		// here; the raw value is still in the text content.
		var findings any
		if err := json.Unmarshal(o.Findings, &findings); err != nil {
			return LintProjectOutput{}, err
		}
		out.LintResults = findings
	}
	return out, nil
}
