// Package runner invokes the external arduino-lint binary and normalizes its
// results.
//
// The runner package owns the whole process-invocation contract: locating the
// binary, probing its version, building arguments, spawning it with a hard
// wall-clock timeout and turning whatever comes back into an Outcome.
//
// Key Components:
//
//   - Runner: Immutable handle on a resolved binary location
//   - Request: Project path plus the compliance and library-manager options
//   - Outcome: Normalized result record (success flag, raw output, exit code,
//     optional decoded findings)
//   - ErrNotInstalled: The only error LintProject ever returns
//
// Usage Example:
//
//	r := runner.New(runner.WithBinaryName("arduino-lint"))
//	if !r.IsAvailable() {
//	    // surface a setup message
//	}
//
//	outcome, err := r.LintProject(ctx, runner.Request{Path: "/path/to/sketch"})
//	if errors.Is(err, runner.ErrNotInstalled) {
//	    // binary vanished between the check and the spawn
//	}
//	if !outcome.Success {
//	    // timeout, non-zero exit, or spawn failure
//	}
//
// Process Lifetime:
//
// On Unix the child is started in its own process group and the whole group
// is killed when the timeout fires. The call only returns once the child has
// been reaped, so no process outlives a LintProject call. On Windows the child
// is started without a console window, and a timeout kills only the direct
// child; processes it started itself are not tracked.
package runner
