package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/workforce/backend/internal/domain/form"
	"github.com/workforce/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope of the form lifecycle metrics
const MeterName = "forms-backend/forms"

var deliveryLagBuckets = []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 300}

// FormMetrics turns form lifecycle events into counters. It subscribes to the
// event bus like any other handler, so counts follow outbox delivery.
type FormMetrics struct {
	templateEvents metric.Int64Counter
	transitions    metric.Int64Counter
	decisions      metric.Int64Counter
	deliveryLag    metric.Float64Histogram
	now            func() time.Time
}

// NewFormMetrics creates the instruments on meter
func NewFormMetrics(meter metric.Meter) (*FormMetrics, error) {
	templateEvents, err := meter.Int64Counter("forms.template.events",
		metric.WithDescription("Template lifecycle events by type"),
		metric.WithUnit("{event}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create template events counter: %w", err)
	}
	transitions, err := meter.Int64Counter("forms.submission.transitions",
		metric.WithDescription("Submission status transitions"),
		metric.WithUnit("{transition}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create transitions counter: %w", err)
	}
	decisions, err := meter.Int64Counter("forms.submission.decisions",
		metric.WithDescription("Approval decisions by outcome"),
		metric.WithUnit("{decision}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create decisions counter: %w", err)
	}
	deliveryLag, err := meter.Float64Histogram("forms.event.delivery_lag",
		metric.WithDescription("Time from event occurrence to handling"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(deliveryLagBuckets...))
	if err != nil {
		return nil, fmt.Errorf("failed to create delivery lag histogram: %w", err)
	}

	return &FormMetrics{
		templateEvents: templateEvents,
		transitions:    transitions,
		decisions:      decisions,
		deliveryLag:    deliveryLag,
		now:            time.Now,
	}, nil
}

// Name identifies the handler in idempotency keys
func (m *FormMetrics) Name() string { return "form-metrics" }

// EventTypes returns every form event type
func (m *FormMetrics) EventTypes() []string {
	return []string{
		form.EventTypeFormTemplateCreated,
		form.EventTypeFormTemplateUpdated,
		form.EventTypeFormTemplateStatusChanged,
		form.EventTypeSubmissionDraftCreated,
		form.EventTypeSubmissionSubmitted,
		form.EventTypeSubmissionDecided,
		form.EventTypeSubmissionReopened,
		form.EventTypeSubmissionDraftDeleted,
	}
}

// Handle records the event. It never fails.
func (m *FormMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	typeAttr := attribute.String("event_type", event.EventType())
	m.deliveryLag.Record(ctx, m.now().Sub(event.OccurredAt()).Seconds(), metric.WithAttributes(typeAttr))

	switch evt := event.(type) {
	case *form.FormTemplateCreatedEvent:
		m.templateEvents.Add(ctx, 1, metric.WithAttributes(typeAttr,
			attribute.String("category", string(evt.Category))))
	case *form.FormTemplateStatusChangedEvent:
		m.templateEvents.Add(ctx, 1, metric.WithAttributes(typeAttr,
			attribute.String("status", string(evt.NewStatus))))
	case form.SubmissionTransitionEvent:
		t := evt.Transition()
		attrs := []attribute.KeyValue{
			typeAttr,
			attribute.String("from_status", string(t.FromStatus)),
			attribute.String("to_status", string(t.ToStatus)),
		}
		m.transitions.Add(ctx, 1, metric.WithAttributes(attrs...))
		if event.EventType() == form.EventTypeSubmissionDecided {
			m.decisions.Add(ctx, 1, metric.WithAttributes(attribute.String("decision", string(t.ToStatus))))
		}
	default:
		m.templateEvents.Add(ctx, 1, metric.WithAttributes(typeAttr))
	}
	return nil
}

var _ shared.EventHandler = (*FormMetrics)(nil)
