// Package observe provides observability primitives for Quillcast:
// OpenTelemetry metrics with a Prometheus scrape endpoint.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is installed via [InitProvider] so that metrics can be
// scraped from the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all Quillcast metrics.
const meterName = "github.com/tmarkko/quillcast"

// Metrics holds all OpenTelemetry metric instruments for the pipeline.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// SegmentsCaptured counts half-window chunks read from the capture
	// source.
	SegmentsCaptured metric.Int64Counter

	// WindowsStitched counts full overlapping windows assembled by the
	// stitch stage.
	WindowsStitched metric.Int64Counter

	// WindowsDispatched counts window copies handed to analysis stages.
	// Use with attribute.String("stage", ...).
	WindowsDispatched metric.Int64Counter

	// AnnotationsProduced counts annotations emitted by analysis stages.
	// Use with attribute.String("stage", ...).
	AnnotationsProduced metric.Int64Counter

	// StageErrors counts per-stage failures that did not stop the
	// pipeline. Use with attribute.String("stage", ...).
	StageErrors metric.Int64Counter

	// CaptureRestarts counts capture reads retried after a single
	// failure.
	CaptureRestarts metric.Int64Counter

	// StageLatency tracks per-window processing time of analysis stages.
	// Use with attribute.String("stage", ...).
	StageLatency metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// per-window analysis work on 50ms windows.
var latencyBuckets = []float64{
	0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.SegmentsCaptured, err = m.Int64Counter("quillcast.capture.segments",
		metric.WithDescription("Total half-window chunks read from the capture source."),
	); err != nil {
		return nil, err
	}
	if met.WindowsStitched, err = m.Int64Counter("quillcast.stitch.windows",
		metric.WithDescription("Total overlapping windows assembled by the stitch stage."),
	); err != nil {
		return nil, err
	}
	if met.WindowsDispatched, err = m.Int64Counter("quillcast.dispatch.windows",
		metric.WithDescription("Total window copies handed to analysis stages, by stage."),
	); err != nil {
		return nil, err
	}
	if met.AnnotationsProduced, err = m.Int64Counter("quillcast.analysis.annotations",
		metric.WithDescription("Total annotations emitted by analysis stages, by stage."),
	); err != nil {
		return nil, err
	}
	if met.StageErrors, err = m.Int64Counter("quillcast.stage.errors",
		metric.WithDescription("Total non-fatal stage failures, by stage."),
	); err != nil {
		return nil, err
	}
	if met.CaptureRestarts, err = m.Int64Counter("quillcast.capture.restarts",
		metric.WithDescription("Total capture reads retried after a single failure."),
	); err != nil {
		return nil, err
	}
	if met.StageLatency, err = m.Float64Histogram("quillcast.stage.latency",
		metric.WithDescription("Per-window processing time of analysis stages, by stage."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it
// on first call using [otel.GetMeterProvider]. Subsequent calls return the
// same pointer. Panics if instrument creation fails (should not happen with
// the global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// StageAttr is the standard per-stage attribute used by the dispatch,
// analysis, and error instruments.
func StageAttr(stage string) attribute.KeyValue {
	return attribute.String("stage", stage)
}

// RecordStageError records a non-fatal stage failure.
func (m *Metrics) RecordStageError(ctx context.Context, stage string) {
	m.StageErrors.Add(ctx, 1, metric.WithAttributes(StageAttr(stage)))
}

// RecordAnnotation records an annotation emitted by an analysis stage.
func (m *Metrics) RecordAnnotation(ctx context.Context, stage string) {
	m.AnnotationsProduced.Add(ctx, 1, metric.WithAttributes(StageAttr(stage)))
}
