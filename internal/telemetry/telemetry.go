// Package telemetry installs the OpenTelemetry providers behind the otel
// globals used by the runner. Without Setup every span and instrument is a
// no-op.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type Config struct {
	// TraceWriter receives finished spans, and the final metric values on
	// Shutdown, as JSON. Nil disables both.
	TraceWriter io.Writer
	// Metrics enables the Prometheus exporter.
	Metrics bool
}

type Telemetry struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	registry       *prometheus.Registry
}

// Setup creates the requested providers and installs them as otel globals.
func Setup(cfg Config) (*Telemetry, error) {
	t := &Telemetry{}

	var readers []sdkmetric.Option

	if cfg.TraceWriter != nil {
		exp, err := stdouttrace.New(
			stdouttrace.WithWriter(cfg.TraceWriter),
			stdouttrace.WithPrettyPrint(),
		)
		if err != nil {
			return nil, fmt.Errorf("creating trace exporter: %w", err)
		}
		t.tracerProvider = sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
		otel.SetTracerProvider(t.tracerProvider)

		mexp, err := stdoutmetric.New(
			stdoutmetric.WithWriter(cfg.TraceWriter),
			stdoutmetric.WithPrettyPrint(),
		)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("creating metric writer: %w", err), t.Shutdown(context.Background()))
		}
		// The interval is long enough that values are normally written once,
		// on Shutdown.
		readers = append(readers, sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(mexp, sdkmetric.WithInterval(time.Hour)),
		))
	}

	if cfg.Metrics {
		t.registry = prometheus.NewRegistry()
		exp, err := otelprom.New(otelprom.WithRegisterer(t.registry))
		if err != nil {
			return nil, errors.Join(fmt.Errorf("creating metrics exporter: %w", err), t.Shutdown(context.Background()))
		}
		readers = append(readers, sdkmetric.WithReader(exp))
	}

	if len(readers) > 0 {
		t.meterProvider = sdkmetric.NewMeterProvider(readers...)
		otel.SetMeterProvider(t.meterProvider)
	}

	return t, nil
}

// MetricsHandler serves the Prometheus scrape endpoint, or nil when metrics
// are disabled.
func (t *Telemetry) MetricsHandler() http.Handler {
	if t.registry == nil {
		return nil
	}
	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{})
}

// Shutdown flushes pending spans and stops the providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.tracerProvider != nil {
		errs = append(errs, t.tracerProvider.Shutdown(ctx))
	}
	if t.meterProvider != nil {
		errs = append(errs, t.meterProvider.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

// ServeMetrics serves handler on addr under /metrics until ctx is done.
func ServeMetrics(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return serve(ctx, ln, handler, logger)
}

func serve(ctx context.Context, ln net.Listener, handler http.Handler, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics endpoint listening", slog.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
