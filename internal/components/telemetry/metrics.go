package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// the global meter delegates to whichever MeterProvider Setup installs,
// so instruments can be created before telemetry is configured.
var meter = otel.Meter("odk-pull")

var countGauge, _ = meter.Int64Gauge(
	"odk.count",
	metric.WithDescription("Number of items returned by the last call of a component."),
)

func recordCount(ctx context.Context, id string, count int64) {
	countGauge.Record(ctx, count, metric.WithAttributes(attribute.String("id", id)))
}
