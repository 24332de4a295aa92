package runner

import (
	"os/exec"
)

// DefaultBinaryName is the executable looked up when nothing else is configured.
const DefaultBinaryName = "arduino-lint"

// ResolveBinary looks name up on the executable search path.
//
// When the lookup fails the name itself is returned unchanged, so a bare name
// that is not on PATH ends up being checked relative to the working directory
// by IsAvailable. Callers get a graceful "not installed" later instead of an
// error here. A binary found only through a relative PATH entry (such as ".")
// is kept by name and still executed by LintProject.
func ResolveBinary(name string) string {
	if name == "" {
		return ""
	}
	if path, err := exec.LookPath(name); err == nil {
		return path
	}
	return name
}
