package output

import (
	"strings"

	"github.com/R167/lintbridge/internal/runner"
)

// InstallHint is shown whenever arduino-lint cannot be found.
const InstallHint = "Install arduino-lint (https://arduino.github.io/arduino-lint/) and put it on PATH, or point ARDUINO_LINT_PATH at it."

// ReportOutcome renders one lint outcome for a terminal. With verbose set the
// raw stdout and stderr are echoed line by line.
func ReportOutcome(out Output, project string, o *runner.Outcome, verbose bool) {
	out.Section("🔍", "Linting "+project)

	switch {
	case o.Success:
		out.Success("arduino-lint passed (exit 0)")
	case !o.Completed():
		out.Error("arduino-lint did not complete: %s", o.Error)
	default:
		out.Error("arduino-lint reported problems (exit %d)", o.ReturnCode)
	}

	if o.Completed() {
		if o.HasFindings() {
			out.Info("Structured report: %d bytes of JSON", len(o.Findings))
		} else if strings.TrimSpace(o.Stdout) != "" {
			out.Warning("Output was not JSON; raw text kept")
		}
	}

	if !verbose {
		return
	}
	writeBlock(out, "stdout", o.Stdout)
	writeBlock(out, "stderr", o.Stderr)
}

// ReportNotInstalled renders the installation failure branch.
func ReportNotInstalled(out Output, err error) {
	out.Error("%v", err)
	out.Detail(InstallHint)
}

func writeBlock(out Output, name, text string) {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return
	}
	out.Info("%s:", name)
	for _, l := range strings.Split(text, "\n") {
		out.Detail("%s", l)
	}
}
