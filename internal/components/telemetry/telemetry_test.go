package telemetry

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestScopedAPI(t *testing.T) {
	rec := &Recorder{}
	scoped := NewScopedAPI("ona", rec)

	scoped.ReportBroken("client.projects", "boom")
	scoped.ReportWarning("client.form-list")
	scoped.ReportCount("submissions", 3)

	require.Equal(t, []string{"ona: client.projects"}, rec.Broken())
	require.Len(t, rec.Reports(""), 3)
	require.Equal(t, []any{int64(3)}, rec.Reports("count")[0].Params)
}

func TestFormatHeadersRedactsCredentials(t *testing.T) {
	headers := http.Header{}
	headers.Set("Authorization", "Basic dXNlcjpwYXNz")
	headers.Set("Accept", "application/json")

	rendered := formatHeaders(headers)
	require.Equal(t, "Accept: application/json\nAuthorization: <REDACTED>", rendered)
}

func TestReportCountRecordsGauge(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)
	t.Cleanup(func() {
		require.NoError(t, provider.Shutdown(context.Background()))
	})

	cases := []struct {
		id    string
		count int64
	}{
		{id: "client.projects", count: 3},
		{id: "client.form-list", count: 0},
	}
	scoped := NewScopedAPI("ona", SlogAPI{})
	for _, c := range cases {
		scoped.ReportCount(c.id, c.count)
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	points := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "odk.count" {
				continue
			}
			gauge, ok := m.Data.(metricdata.Gauge[int64])
			require.True(t, ok, "odk.count should be an int64 gauge")
			for _, dp := range gauge.DataPoints {
				id, ok := dp.Attributes.Value(attribute.Key("id"))
				require.True(t, ok)
				points[id.AsString()] = dp.Value
			}
		}
	}
	require.Equal(t, map[string]int64{
		"ona: client.projects":  3,
		"ona: client.form-list": 0,
	}, points)
}

func TestSetupValidatesEndpoints(t *testing.T) {
	both := OtlpConnConfig{
		GrpcEndpoint: "http://localhost:4317",
		HttpEndpoint: "http://localhost:4318",
	}
	cases := []struct {
		name   string
		config Config
		err    error
	}{
		{name: "nothing configured", config: Config{}},
		{
			name:   "ambiguous traces",
			config: Config{Otlp: OtlpConfig{Traces: both}},
			err:    ErrAmbiguousEndpoint,
		},
		{
			name:   "ambiguous metrics",
			config: Config{Otlp: OtlpConfig{Metrics: both}},
			err:    ErrAmbiguousEndpoint,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tel, err := Setup(context.Background(), "odk-pull-test", c.config)
			if c.err != nil {
				require.ErrorIs(t, err, c.err)
				return
			}
			require.NoError(t, err)
			require.Nil(t, tel.TracerProvider)
			require.Nil(t, tel.MeterProvider)
			require.NoError(t, tel.Shutdown(context.Background()))
		})
	}
}

func TestMetricInterval(t *testing.T) {
	require.Equal(t, defaultMetricInterval, OtlpConfig{}.metricInterval())
	require.Equal(t, 30*time.Second, OtlpConfig{MetricIntervalSeconds: 30}.metricInterval())
}
