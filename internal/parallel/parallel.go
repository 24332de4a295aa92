package parallel

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/R167/lintbridge/internal/runner"
)

// Linter is the part of *runner.Runner a batch needs.
type Linter interface {
	LintProject(ctx context.Context, req runner.Request) (*runner.Outcome, error)
}

// Result is the result of linting one request. Exactly one of Outcome and
// Err is set.
type Result struct {
	Request runner.Request
	Outcome *runner.Outcome
	Err     error
}

// LintAll lints every request with at most limit processes running at once
// and returns the results in input order. A limit below one means no bound.
//
// Errors are kept per result; one failing project never cancels the others.
func LintAll(ctx context.Context, l Linter, reqs []runner.Request, limit int) []Result {
	results := make([]Result, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, req := range reqs {
		results[i].Request = req
		g.Go(func() error {
			outcome, err := l.LintProject(gctx, req)
			results[i].Outcome = outcome
			results[i].Err = err
			return nil
		})
	}

	// Goroutines never return an error, so Wait only waits.
	_ = g.Wait()
	return results
}

// Failed reports whether any result is an error or an unsuccessful outcome.
func Failed(results []Result) bool {
	for _, r := range results {
		if r.Err != nil || r.Outcome == nil || !r.Outcome.Success {
			return true
		}
	}
	return false
}
