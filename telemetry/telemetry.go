// Package telemetry times named operations. A benchmark is purely
// observational: it records a trace span, a duration histogram sample and a
// debug log line, then hands back exactly what the wrapped function returned.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/jmgilman/gitfarm/errors"
)

const instrumentationName = "github.com/jmgilman/gitfarm/telemetry"

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder records benchmarks into one histogram and one tracer.
type Recorder struct {
	tracer   oteltrace.Tracer
	duration *prometheus.HistogramVec
}

// NewRecorder registers the duration histogram with reg and returns a
// Recorder using the global OpenTelemetry tracer provider.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	return &Recorder{
		tracer: otel.Tracer(instrumentationName),
		duration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gitfarm_operation_duration_seconds",
				Help:    "Duration of gitfarm operations",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
			},
			[]string{"operation", "outcome"},
		),
	}
}

var (
	defaultOnce     sync.Once
	defaultRecorder *Recorder
)

// Default returns the process-wide Recorder registered with the default
// Prometheus registerer.
func Default() *Recorder {
	defaultOnce.Do(func() {
		defaultRecorder = NewRecorder(prometheus.DefaultRegisterer)
	})
	return defaultRecorder
}

// Benchmark runs fn under the Default recorder.
func Benchmark(ctx context.Context, name string, fn func(context.Context) error) error {
	return Default().Benchmark(ctx, name, fn)
}

// Benchmark runs fn inside a span named name and records how long it took.
// The error returned is fn's error, unchanged.
func (r *Recorder) Benchmark(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := r.tracer.Start(ctx, name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("error.code", string(errors.GetCode(err))))
	} else {
		span.SetStatus(codes.Ok, "")
	}

	r.duration.WithLabelValues(name, outcome).Observe(elapsed.Seconds())
	clog.FromContext(ctx).Debug("benchmark",
		"operation", name,
		"outcome", outcome,
		"duration", elapsed)

	return err
}
