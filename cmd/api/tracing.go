package main

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"findoss/internal/config"
)

// setupTracing wires a stdout span exporter when TRACE_STDOUT is set.
// Without it the default no-op provider stays in place. Returns a
// shutdown func for main to defer.
func setupTracing() func() {
	if !config.TraceStdout {
		return func() {}
	}
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		slog.Warn("tracing disabled: exporter init failed", "err", err)
		return func() {}
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)
	return func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			slog.Warn("tracer shutdown failed", "err", err)
		}
	}
}
