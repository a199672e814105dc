package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Observer records discovery and dispatch signals into OpenTelemetry.
// A nil *Observer is valid and records nothing.
type Observer struct {
	tracer trace.Tracer

	cycles         metric.Int64Counter
	serverFailures metric.Int64Counter
	dispatches     metric.Int64Counter
	cycleDuration  metric.Float64Histogram
	callDuration   metric.Float64Histogram
}

// NewObserver creates an observer bound to the provided meter/tracer.
func NewObserver(meter metric.Meter, tracer trace.Tracer) (*Observer, error) {
	cycles, err := meter.Int64Counter(
		"toolmux.discovery.cycles",
		metric.WithDescription("Number of completed discovery cycles"),
	)
	if err != nil {
		return nil, err
	}
	serverFailures, err := meter.Int64Counter(
		"toolmux.discovery.server_failures",
		metric.WithDescription("Number of per-server discovery failures"),
	)
	if err != nil {
		return nil, err
	}
	dispatches, err := meter.Int64Counter(
		"toolmux.dispatch.calls",
		metric.WithDescription("Number of dispatched tool calls"),
	)
	if err != nil {
		return nil, err
	}
	cycleDuration, err := meter.Float64Histogram(
		"toolmux.discovery.duration",
		metric.WithDescription("Discovery cycle duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	callDuration, err := meter.Float64Histogram(
		"toolmux.dispatch.duration",
		metric.WithDescription("Tool dispatch duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &Observer{
		tracer:         tracer,
		cycles:         cycles,
		serverFailures: serverFailures,
		dispatches:     dispatches,
		cycleDuration:  cycleDuration,
		callDuration:   callDuration,
	}, nil
}

// ObserveCycle records one completed discovery cycle.
func (o *Observer) ObserveCycle(cycleID string, elapsed time.Duration, servers, failures, toolCount int) {
	if o == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("cycle_id", cycleID),
		attribute.Int("servers", servers),
		attribute.Int("failures", failures),
		attribute.Int("tool_count", toolCount),
	}

	ctx := context.Background()
	options := metric.WithAttributes(attrs...)
	o.cycles.Add(ctx, 1, options)
	o.serverFailures.Add(ctx, int64(failures), metric.WithAttributes(attrs...))
	o.cycleDuration.Record(ctx, elapsed.Seconds(), options)

	if o.tracer == nil {
		return
	}
	_, span := o.tracer.Start(ctx, "discovery.cycle", trace.WithAttributes(attrs...))
	if failures > 0 {
		span.SetStatus(codes.Error, "partial discovery failure")
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// ObserveServerDiscovery records one per-server discovery outcome.
func (o *Observer) ObserveServerDiscovery(server string, elapsed time.Duration, err error) {
	if o == nil || o.tracer == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("server", server),
		attribute.Bool("success", err == nil),
		attribute.Float64("duration_s", elapsed.Seconds()),
	}
	_, span := o.tracer.Start(context.Background(), "discovery.server", trace.WithAttributes(attrs...))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// ObserveDispatch records one tool dispatch result. errKind is empty on
// success, otherwise the error taxonomy name ("transport", "tool",
// "not_found", "unavailable", "backpressure").
func (o *Observer) ObserveDispatch(tool, server string, elapsed time.Duration, errKind string) {
	if o == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("tool_name", tool),
		attribute.String("server", server),
		attribute.Bool("success", errKind == ""),
	}
	if errKind != "" {
		attrs = append(attrs, attribute.String("error_kind", errKind))
	}

	ctx := context.Background()
	options := metric.WithAttributes(attrs...)
	o.dispatches.Add(ctx, 1, options)
	o.callDuration.Record(ctx, elapsed.Seconds(), options)

	if o.tracer == nil {
		return
	}
	_, span := o.tracer.Start(ctx, "tool.dispatch", trace.WithAttributes(attrs...))
	if errKind != "" {
		span.SetStatus(codes.Error, errKind)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
