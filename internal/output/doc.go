// Package output provides output interfaces for lint reports, enabling both
// streaming and buffered output modes.
//
// The Output interface abstracts report rendering, allowing the same code to
// work when one project is linted and when several are linted in parallel:
//
//   - StreamingOutput: Writes directly to io.Writer
//   - BufferedOutput: Collects output in memory, flushed once a project is done
//
// Usage Example (Sequential):
//
//	out := output.NewStreamingOutput(os.Stdout)
//	output.ReportOutcome(out, "/path/to/sketch", outcome, false)
//
// Usage Example (Parallel):
//
//	out := output.NewBufferedOutput()
//	output.ReportOutcome(out, project, outcome, verbose)
//	out.Flush(os.Stdout)  // Write all buffered output at once
//
// All implementations are thread-safe with mutex protection.
package output
