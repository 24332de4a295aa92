package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/R167/lintbridge/internal/mcp"
	"github.com/R167/lintbridge/internal/security"
	"github.com/R167/lintbridge/internal/telemetry"
)

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the lint tools over MCP on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&a.cfg.MetricsAddr, "metrics-addr", a.cfg.MetricsAddr, "serve Prometheus metrics on this address (e.g. :9464)")
	flags.Float64Var(&a.cfg.Rate, "rate", a.cfg.Rate, "lint processes started per second")
	flags.IntVar(&a.cfg.Burst, "burst", a.cfg.Burst, "lint processes started back to back before rate limiting")

	return cmd
}

func (a *app) serve(cmd *cobra.Command) error {
	r := a.cfg.NewRunner(a.logger)
	if !r.IsAvailable() {
		a.logger.Warn("arduino-lint not found; lint_project will report it as not installed",
			slog.String("binary", r.Path()))
	}

	server := mcp.NewServer(r,
		mcp.WithLimiter(security.NewToolLimiter(a.cfg.Rate, a.cfg.Burst)),
		mcp.WithLogger(a.logger),
		mcp.WithVersion(a.version),
	)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	if handler := a.telemetry.MetricsHandler(); handler != nil {
		g.Go(func() error {
			return telemetry.ServeMetrics(ctx, a.cfg.MetricsAddr, handler, a.logger)
		})
	}
	g.Go(func() error {
		// The metrics server stops once the MCP session ends.
		defer cancel()
		return server.Run(ctx)
	})
	return g.Wait()
}
