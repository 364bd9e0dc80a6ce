// Package telemetry sets up the OTel meter provider the gateway's Recorder
// reports through, and exposes the package-scoped Meter/Tracer accessors
// (the enhancer uses Tracer).
package telemetry

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	initOnce sync.Once
	provider *sdkmetric.MeterProvider
)

// Init installs a stdout-exporting MeterProvider as the global provider.
// Safe to call more than once; only the first call takes effect. Returns a
// shutdown func that flushes and stops the exporter.
func Init() (shutdown func(context.Context) error, err error) {
	var setupErr error
	initOnce.Do(func() {
		exporter, e := stdoutmetric.New()
		if e != nil {
			setupErr = fmt.Errorf("telemetry: building stdout exporter: %w", e)
			return
		}
		provider = sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		)
		otel.SetMeterProvider(provider)
	})
	if setupErr != nil {
		return nil, setupErr
	}
	return func(ctx context.Context) error {
		if provider == nil {
			return nil
		}
		return provider.Shutdown(ctx)
	}, nil
}

// Meter returns a named meter from the global provider. Safe to call before
// Init: the no-op provider is used until Init installs the real one.
func Meter(name string) metric.Meter {
	return otel.GetMeterProvider().Meter(name)
}

// Tracer returns a named tracer from the global trace provider. corevault
// doesn't install a span-exporting trace provider of its own, so this
// resolves to the no-op tracer unless a host process configures one.
func Tracer(name string) trace.Tracer {
	return otel.GetTracerProvider().Tracer(name)
}
