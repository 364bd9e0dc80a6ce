package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// GatewayRecorder counts gateway dispatches and records their latency,
// tagged by operation and outcome. It satisfies gateway.Recorder by
// structural typing, so this package never has to import internal/gateway.
type GatewayRecorder struct {
	once     sync.Once
	calls    metric.Int64Counter
	duration metric.Float64Histogram
}

// NewGatewayRecorder builds a recorder backed by the "corevault/gateway"
// meter. Instruments are created lazily on first RecordCall so a Recorder
// can be constructed before Init installs the real meter provider.
func NewGatewayRecorder() *GatewayRecorder {
	return &GatewayRecorder{}
}

func (r *GatewayRecorder) ensureInstruments() {
	r.once.Do(func() {
		m := Meter("corevault/gateway")
		r.calls, _ = m.Int64Counter("corevault.gateway.calls",
			metric.WithDescription("Gateway operations dispatched"),
			metric.WithUnit("{call}"),
		)
		r.duration, _ = m.Float64Histogram("corevault.gateway.duration",
			metric.WithDescription("Gateway dispatch latency"),
			metric.WithUnit("ms"),
		)
	})
}

// RecordCall implements gateway.Recorder.
func (r *GatewayRecorder) RecordCall(operation string, latency time.Duration, success bool) {
	r.ensureInstruments()
	if r.calls == nil || r.duration == nil {
		return
	}
	attrs := attribute.NewSet(
		attribute.String("operation", operation),
		attribute.Bool("success", success),
	)
	ctx := context.Background()
	r.calls.Add(ctx, 1, metric.WithAttributeSet(attrs))
	r.duration.Record(ctx, float64(latency.Milliseconds()), metric.WithAttributeSet(attrs))
}
