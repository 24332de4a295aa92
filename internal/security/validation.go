package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidateProjectPath validates a project path received from a client and
// returns it in absolute, cleaned form. It ensures the path:
// 1. Is not empty
// 2. Contains no NUL byte
// 3. Exists on disk
//
// The absolute form starts with a separator or a volume name, so the tool can
// never mistake it for a flag.
func ValidateProjectPath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", fmt.Errorf("project path cannot be empty")
	}
	if strings.ContainsRune(p, 0) {
		return "", fmt.Errorf("project path contains a NUL byte")
	}

	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolving project path %q: %w", p, err)
	}

	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("project path %q: %w", abs, err)
	}

	return abs, nil
}

// ValidateOptionValue rejects values that cannot be passed as a single
// command-line argument. Everything else is forwarded to the tool verbatim;
// the tool reports unknown values itself.
func ValidateOptionValue(name, v string) error {
	if strings.ContainsRune(v, 0) {
		return fmt.Errorf("%s contains a NUL byte", name)
	}
	if strings.ContainsAny(v, "\r\n") {
		return fmt.Errorf("%s contains a line break", name)
	}
	return nil
}
