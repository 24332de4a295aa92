package telemetry

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func restoreGlobals(t *testing.T) {
	tp, mp := otel.GetTracerProvider(), otel.GetMeterProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(tp)
		otel.SetMeterProvider(mp)
	})
}

func TestSetup_Disabled(t *testing.T) {
	tel, err := Setup(Config{})
	require.NoError(t, err)
	assert.Nil(t, tel.meterProvider)

	assert.Nil(t, tel.MetricsHandler())
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestSetup_TraceWriter(t *testing.T) {
	restoreGlobals(t)
	buf := &bytes.Buffer{}

	tel, err := Setup(Config{TraceWriter: buf})
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "Runner.LintProject")
	span.End()
	counter, err := otel.Meter("test").Int64Counter("lintbridge_trace_test_total")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)
	require.NoError(t, tel.Shutdown(context.Background()))

	assert.Contains(t, buf.String(), "Runner.LintProject")
	assert.Contains(t, buf.String(), "lintbridge_trace_test_total")
}

func TestSetup_Metrics(t *testing.T) {
	restoreGlobals(t)

	tel, err := Setup(Config{Metrics: true})
	require.NoError(t, err)
	defer tel.Shutdown(context.Background())

	counter, err := otel.Meter("test").Int64Counter("lintbridge_test_events_total")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	handler := tel.MetricsHandler()
	require.NotNil(t, handler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "lintbridge_test_events")
}

func TestServe_StopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "ok")
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, ln, handler, logger) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServeMetrics_BadAddr(t *testing.T) {
	err := ServeMetrics(context.Background(), "not-an-addr", http.NotFoundHandler(), slog.Default())
	assert.Error(t, err)
}
