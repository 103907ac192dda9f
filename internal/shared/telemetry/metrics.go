package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Submission outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Package-level instruments delegate to the first MeterProvider installed
// globally, so they report once Init has run.
var (
	entryMeter          = otel.Meter("spendlog/entries")
	entriesSubmitted, _ = entryMeter.Int64Counter("entries.submitted",
		metric.WithDescription("Entry submissions by kind, mode and outcome"),
	)
	batchSize, _ = entryMeter.Int64Histogram("entries.batch.size",
		metric.WithDescription("Rows stored per successful submission"),
		metric.WithExplicitBucketBoundaries(1, 2, 5, 10, 20, 50, 100),
	)
)

// RecordSubmission counts one submission. rows is the number of stored
// records and is only observed for successful submissions.
func RecordSubmission(ctx context.Context, kind, mode, outcome string, rows int) {
	attrs := metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("mode", mode),
		attribute.String("outcome", outcome),
	)
	entriesSubmitted.Add(ctx, 1, attrs)
	if outcome == OutcomeOK && rows > 0 {
		batchSize.Record(ctx, int64(rows), metric.WithAttributes(
			attribute.String("kind", kind),
			attribute.String("mode", mode),
		))
	}
}
