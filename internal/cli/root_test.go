package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R167/lintbridge/internal/output"
)

// fakeTool writes an executable arduino-lint script and returns its path.
func fakeTool(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tool scripts need a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "arduino-lint")
	//nolint:gosec // G306: test executable needs exec permission
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

const passingTool = `if [ "$1" = "--version" ]; then echo "1.3.0 2024-01-01"; exit 0; fi
echo '{"summary":{"errorCount":0}}'`

func run(t *testing.T, binary string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	env := envMap(map[string]string{EnvBinary: binary})
	code := Run(context.Background(), "test", args, env, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestLint_Success(t *testing.T) {
	tool := fakeTool(t, passingTool)
	project := t.TempDir()

	code, stdout, _ := run(t, tool, "lint", project)

	assert.Equal(t, ExitOK, code)
	assert.Contains(t, stdout, "Linting "+project)
	assert.Contains(t, stdout, "arduino-lint passed")
}

func TestLint_JSON(t *testing.T) {
	tool := fakeTool(t, passingTool)
	a, b := t.TempDir(), t.TempDir()

	code, stdout, _ := run(t, tool, "lint", "--json", "--parallel", "2", a, b)
	require.Equal(t, ExitOK, code)

	var got []jsonResult
	sc := bufio.NewScanner(strings.NewReader(stdout))
	for sc.Scan() {
		var line struct {
			Path    string          `json:"path"`
			Outcome json.RawMessage `json:"outcome"`
		}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &line))
		assert.JSONEq(t,
			`{"success":true,"stdout":"{\"summary\":{\"errorCount\":0}}\n","stderr":"","returncode":0,"lint_results":{"summary":{"errorCount":0}}}`,
			string(line.Outcome))
		got = append(got, jsonResult{Path: line.Path})
	}
	require.Len(t, got, 2)
	assert.Equal(t, a, got[0].Path)
	assert.Equal(t, b, got[1].Path)
}

func TestLint_FailingProject(t *testing.T) {
	tool := fakeTool(t, `echo '{"summary":{"errorCount":3}}'; exit 1`)

	code, stdout, _ := run(t, tool, "lint", t.TempDir())

	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "reported problems (exit 1)")
}

func TestLint_PassesFlagsThrough(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args")
	tool := fakeTool(t, `printf '%s\n' "$@" > `+argsFile+`; echo '{}'`)
	project := t.TempDir()

	code, _, _ := run(t, tool, "lint", "--compliance", "strict", "--library-manager", "update", project)
	require.Equal(t, ExitOK, code)

	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"--compliance", "strict", "--library-manager", "update", "--format", "json", project},
		strings.Split(strings.TrimSuffix(string(data), "\n"), "\n"))
}

func TestLint_NotInstalled(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "arduino-lint")

	code, stdout, _ := run(t, missing, "lint", t.TempDir(), t.TempDir())

	assert.Equal(t, ExitNotInstalled, code)
	assert.Contains(t, stdout, output.InstallHint)
	assert.Equal(t, 1, strings.Count(stdout, output.InstallHint), "hint is shown once")
}

func TestLint_InvalidPath(t *testing.T) {
	tool := fakeTool(t, passingTool)

	code, _, stderr := run(t, tool, "lint", filepath.Join(t.TempDir(), "nope"))

	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, "Error:")
}

func TestLint_InvalidConfig(t *testing.T) {
	code, _, stderr := run(t, "arduino-lint", "--timeout", "0s", "lint", t.TempDir())

	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, "timeout must be positive")
}

func TestVersion(t *testing.T) {
	tool := fakeTool(t, passingTool)

	code, stdout, _ := run(t, tool, "version")

	assert.Equal(t, ExitOK, code)
	assert.Contains(t, stdout, "lintbridge test\n")
	assert.Contains(t, stdout, "arduino-lint 1.3.0 ("+tool+")")
}

func TestVersion_NotInstalled(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "arduino-lint")

	code, stdout, _ := run(t, missing, "version")

	assert.Equal(t, ExitOK, code)
	assert.Contains(t, stdout, "arduino-lint not installed")
}

func TestTraceFlag(t *testing.T) {
	tool := fakeTool(t, passingTool)

	code, _, stderr := run(t, tool, "--trace", "lint", t.TempDir())

	assert.Equal(t, ExitOK, code)
	assert.Contains(t, stderr, "Runner.LintProject")
}
