package infrastructure

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Omega248/kintsugi-dashboard-sub000/internal/config"
)

func TestInitializeOTel_PrometheusMetrics(t *testing.T) {
	tel, err := InitializeOTel(config.TelemetryConfig{
		ServiceName:    "test",
		Environment:    "test",
		TraceExporter:  "none",
		MetricExporter: "prometheus",
		SampleRatio:    1,
	}, slog.Default())
	require.NoError(t, err)
	defer tel.Shutdown(context.Background())

	pm, err := NewPipelineMetrics(tel.Meter)
	require.NoError(t, err)
	pm.RecordsNormalized.Add(context.Background(), 3, metric.WithAttributes(attribute.String("dataset", "orders")))

	rec := httptest.NewRecorder()
	tel.MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pipeline_records_normalized_total")
}

func TestInitializeOTel_UnsupportedExporter(t *testing.T) {
	_, err := InitializeOTel(config.TelemetryConfig{TraceExporter: "jaeger"}, slog.Default())
	assert.Error(t, err)

	_, err = InitializeOTel(config.TelemetryConfig{MetricExporter: "statsd"}, slog.Default())
	assert.Error(t, err)
}

func TestNoopTelemetry(t *testing.T) {
	tel := NewNoopTelemetry()
	require.NotNil(t, tel.Tracer)
	require.NotNil(t, tel.Meter)

	_, err := NewPipelineMetrics(tel.Meter)
	assert.NoError(t, err)
	assert.NoError(t, tel.Shutdown(context.Background()))
}
