package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics.
type Metrics struct {
	meter metric.Meter

	// Chat metrics
	MessagesReceivedTotal metric.Int64Counter
	MessageHandleDuration metric.Float64Histogram

	// Action metrics
	ActionsDispatchedTotal metric.Int64Counter

	// Backend metrics
	BackendQueriesTotal     metric.Int64Counter
	BackendQueryDuration    metric.Float64Histogram
	BackendQueryErrorsTotal metric.Int64Counter
}

// NewMetrics creates and registers all application metrics.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{meter: meter}

	var err error

	m.MessagesReceivedTotal, err = meter.Int64Counter(
		"chat.messages.received.total",
		metric.WithDescription("Total number of chat messages received"),
		metric.WithUnit("{messages}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating messages_received_total: %w", err)
	}

	m.MessageHandleDuration, err = meter.Float64Histogram(
		"chat.message.handle.duration",
		metric.WithDescription("Chat message handling duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating message_handle_duration: %w", err)
	}

	m.ActionsDispatchedTotal, err = meter.Int64Counter(
		"actions.dispatched.total",
		metric.WithDescription("Total number of acknowledgements and downtimes dispatched"),
		metric.WithUnit("{actions}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating actions_dispatched_total: %w", err)
	}

	m.BackendQueriesTotal, err = meter.Int64Counter(
		"backend.queries.total",
		metric.WithDescription("Total number of monitoring backend queries"),
		metric.WithUnit("{queries}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating backend_queries_total: %w", err)
	}

	m.BackendQueryDuration, err = meter.Float64Histogram(
		"backend.query.duration",
		metric.WithDescription("Monitoring backend query duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating backend_query_duration: %w", err)
	}

	m.BackendQueryErrorsTotal, err = meter.Int64Counter(
		"backend.query.errors.total",
		metric.WithDescription("Total number of failed monitoring backend queries"),
		metric.WithUnit("{errors}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating backend_query_errors_total: %w", err)
	}

	return m, nil
}

// RecordMessage records one handled chat message.
func (m *Metrics) RecordMessage(ctx context.Context, intent string, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("intent", intent),
	}
	m.MessagesReceivedTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.MessageHandleDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordAction records one dispatched acknowledgement or downtime.
func (m *Metrics) RecordAction(ctx context.Context, action string, success bool) {
	m.ActionsDispatchedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", action),
		attribute.Bool("success", success),
	))
}

// RecordBackendQuery records one monitoring backend call.
func (m *Metrics) RecordBackendQuery(ctx context.Context, operation string, duration time.Duration, success bool) {
	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.Bool("success", success),
	}
	m.BackendQueriesTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.BackendQueryDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	if !success {
		m.BackendQueryErrorsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}
