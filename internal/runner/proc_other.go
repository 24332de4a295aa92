//go:build !unix && !windows

package runner

import "os/exec"

func configureProcess(_ *exec.Cmd) {}
