//go:build linux

package runner

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// processAlive reports whether pid is running. Zombies count as dead: they
// have exited and only wait for their parent to reap them.
func processAlive(t *testing.T, pid int) bool {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "stat"))
	if err != nil {
		return false
	}
	// Format: pid (comm) state ...
	fields := strings.Fields(string(data[strings.LastIndexByte(string(data), ')')+1:]))
	return len(fields) > 0 && fields[0] != "Z"
}

func readPID(t *testing.T, path string) int {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	require.NoError(t, err)
	return pid
}

func TestLintProject_TimeoutKillsChild(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "pid")
	r := newTestRunner(fakeTool(t, "echo $$ > '"+pidFile+"'; exec sleep 30"), WithLintTimeout(300*time.Millisecond))

	outcome, err := r.LintProject(context.Background(), Request{Path: "/proj"})
	require.NoError(t, err)
	require.False(t, outcome.Success)

	assert.False(t, processAlive(t, readPID(t, pidFile)), "child must be terminated and reaped")
}

func TestLintProject_TimeoutKillsProcessGroup(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "pid")
	// The backgrounded sleep inherits stdout; if only the shell were killed
	// the pipe would stay open until waitDelay.
	script := "sleep 30 &\necho $! > '" + pidFile + "'\nwait"
	r := newTestRunner(fakeTool(t, script), WithLintTimeout(300*time.Millisecond))

	start := time.Now()
	outcome, err := r.LintProject(context.Background(), Request{Path: "/proj"})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.False(t, outcome.Success)
	assert.Less(t, elapsed, waitDelay, "grandchild kept the output pipe open")

	grandchild := readPID(t, pidFile)
	require.Eventually(t, func() bool {
		return !processAlive(t, grandchild)
	}, 2*time.Second, 20*time.Millisecond)
}
