package form

import (
	"github.com/google/uuid"
	"github.com/workforce/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeFormTemplate   = "FormTemplate"
	AggregateTypeFormSubmission = "FormSubmission"
)

// Event type constants for FormTemplate
const (
	EventTypeFormTemplateCreated       = "FormTemplateCreated"
	EventTypeFormTemplateUpdated       = "FormTemplateUpdated"
	EventTypeFormTemplateStatusChanged = "FormTemplateStatusChanged"
)

// Event type constants for FormSubmission
const (
	EventTypeSubmissionDraftCreated = "SubmissionDraftCreated"
	EventTypeSubmissionSubmitted    = "SubmissionSubmitted"
	EventTypeSubmissionDecided      = "SubmissionDecided"
	EventTypeSubmissionReopened     = "SubmissionReopened"
	EventTypeSubmissionDraftDeleted = "SubmissionDraftDeleted"
)

// SubmissionTransitionEventTypes lists the events that move a submission between statuses
func SubmissionTransitionEventTypes() []string {
	return []string{
		EventTypeSubmissionDraftCreated,
		EventTypeSubmissionSubmitted,
		EventTypeSubmissionDecided,
		EventTypeSubmissionReopened,
	}
}

// ============================================================================
// FormTemplate Events
// ============================================================================

// FormTemplateCreatedEvent is published when a template is first saved
type FormTemplateCreatedEvent struct {
	shared.BaseDomainEvent
	TemplateID uuid.UUID      `json:"template_id"`
	Name       string         `json:"name"`
	Category   FormCategory   `json:"category"`
	Status     TemplateStatus `json:"status"`
	FieldCount int            `json:"field_count"`
}

// NewFormTemplateCreatedEvent creates a new FormTemplateCreatedEvent
func NewFormTemplateCreatedEvent(t *FormTemplate) *FormTemplateCreatedEvent {
	return &FormTemplateCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeFormTemplateCreated,
			AggregateTypeFormTemplate,
			t.ID,
			t.TenantID,
		),
		TemplateID: t.ID,
		Name:       t.Name,
		Category:   t.Category,
		Status:     t.Status,
		FieldCount: t.FieldCount(),
	}
}

// FormTemplateUpdatedEvent is published when a template definition is replaced
type FormTemplateUpdatedEvent struct {
	shared.BaseDomainEvent
	TemplateID uuid.UUID `json:"template_id"`
	Name       string    `json:"name"`
	FieldCount int       `json:"field_count"`
}

// NewFormTemplateUpdatedEvent creates a new FormTemplateUpdatedEvent
func NewFormTemplateUpdatedEvent(t *FormTemplate) *FormTemplateUpdatedEvent {
	return &FormTemplateUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeFormTemplateUpdated,
			AggregateTypeFormTemplate,
			t.ID,
			t.TenantID,
		),
		TemplateID: t.ID,
		Name:       t.Name,
		FieldCount: t.FieldCount(),
	}
}

// FormTemplateStatusChangedEvent is published on archive and activate
type FormTemplateStatusChangedEvent struct {
	shared.BaseDomainEvent
	TemplateID uuid.UUID      `json:"template_id"`
	OldStatus  TemplateStatus `json:"old_status"`
	NewStatus  TemplateStatus `json:"new_status"`
}

// NewFormTemplateStatusChangedEvent creates a new FormTemplateStatusChangedEvent
func NewFormTemplateStatusChangedEvent(t *FormTemplate, old TemplateStatus) *FormTemplateStatusChangedEvent {
	return &FormTemplateStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeFormTemplateStatusChanged,
			AggregateTypeFormTemplate,
			t.ID,
			t.TenantID,
		),
		TemplateID: t.ID,
		OldStatus:  old,
		NewStatus:  t.Status,
	}
}

// ============================================================================
// FormSubmission Events
// ============================================================================

// SubmissionTransition is the status change carried by every submission event
type SubmissionTransition struct {
	SubmissionID uuid.UUID        `json:"submission_id"`
	TemplateID   uuid.UUID        `json:"template_id"`
	FromStatus   SubmissionStatus `json:"from_status,omitempty"`
	ToStatus     SubmissionStatus `json:"to_status,omitempty"`
	ChangedBy    string           `json:"changed_by"`
	Reason       string           `json:"reason,omitempty"`
}

// Transition returns the carried status change
func (t SubmissionTransition) Transition() SubmissionTransition {
	return t
}

// SubmissionTransitionEvent is implemented by every submission event
type SubmissionTransitionEvent interface {
	shared.DomainEvent
	Transition() SubmissionTransition
}

func newSubmissionEvent(eventType string, s *FormSubmission) shared.BaseDomainEvent {
	return shared.NewBaseDomainEvent(eventType, AggregateTypeFormSubmission, s.ID, s.TenantID)
}

// SubmissionDraftCreatedEvent is published when a user starts a draft
type SubmissionDraftCreatedEvent struct {
	shared.BaseDomainEvent
	SubmissionTransition
}

// NewSubmissionDraftCreatedEvent creates a new SubmissionDraftCreatedEvent
func NewSubmissionDraftCreatedEvent(s *FormSubmission) *SubmissionDraftCreatedEvent {
	return &SubmissionDraftCreatedEvent{
		BaseDomainEvent: newSubmissionEvent(EventTypeSubmissionDraftCreated, s),
		SubmissionTransition: SubmissionTransition{
			SubmissionID: s.ID,
			TemplateID:   s.TemplateID,
			ToStatus:     SubmissionStatusDraft,
			ChangedBy:    s.UserID,
			Reason:       "draft created",
		},
	}
}

// SubmissionSubmittedEvent is published when a draft passes validation
type SubmissionSubmittedEvent struct {
	shared.BaseDomainEvent
	SubmissionTransition
}

// NewSubmissionSubmittedEvent creates a new SubmissionSubmittedEvent
func NewSubmissionSubmittedEvent(s *FormSubmission) *SubmissionSubmittedEvent {
	return &SubmissionSubmittedEvent{
		BaseDomainEvent: newSubmissionEvent(EventTypeSubmissionSubmitted, s),
		SubmissionTransition: SubmissionTransition{
			SubmissionID: s.ID,
			TemplateID:   s.TemplateID,
			FromStatus:   SubmissionStatusDraft,
			ToStatus:     s.Status,
			ChangedBy:    s.UserID,
			Reason:       "submitted",
		},
	}
}

// SubmissionDecidedEvent is published when an approver approves or denies
type SubmissionDecidedEvent struct {
	shared.BaseDomainEvent
	SubmissionTransition
}

// NewSubmissionDecidedEvent creates a new SubmissionDecidedEvent
func NewSubmissionDecidedEvent(s *FormSubmission, old SubmissionStatus, approverID string, comment *string) *SubmissionDecidedEvent {
	reason := ""
	if comment != nil {
		reason = *comment
	}
	return &SubmissionDecidedEvent{
		BaseDomainEvent: newSubmissionEvent(EventTypeSubmissionDecided, s),
		SubmissionTransition: SubmissionTransition{
			SubmissionID: s.ID,
			TemplateID:   s.TemplateID,
			FromStatus:   old,
			ToStatus:     s.Status,
			ChangedBy:    approverID,
			Reason:       reason,
		},
	}
}

// SubmissionReopenedEvent is published when an admin edit sends a decided submission back to review
type SubmissionReopenedEvent struct {
	shared.BaseDomainEvent
	SubmissionTransition
}

// NewSubmissionReopenedEvent creates a new SubmissionReopenedEvent
func NewSubmissionReopenedEvent(s *FormSubmission, old SubmissionStatus, editorID string) *SubmissionReopenedEvent {
	return &SubmissionReopenedEvent{
		BaseDomainEvent: newSubmissionEvent(EventTypeSubmissionReopened, s),
		SubmissionTransition: SubmissionTransition{
			SubmissionID: s.ID,
			TemplateID:   s.TemplateID,
			FromStatus:   old,
			ToStatus:     s.Status,
			ChangedBy:    editorID,
			Reason:       "admin edit",
		},
	}
}

// SubmissionDraftDeletedEvent is published when a draft is discarded
type SubmissionDraftDeletedEvent struct {
	shared.BaseDomainEvent
	SubmissionTransition
}

// NewSubmissionDraftDeletedEvent creates a new SubmissionDraftDeletedEvent
func NewSubmissionDraftDeletedEvent(s *FormSubmission, actorID string) *SubmissionDraftDeletedEvent {
	return &SubmissionDraftDeletedEvent{
		BaseDomainEvent: newSubmissionEvent(EventTypeSubmissionDraftDeleted, s),
		SubmissionTransition: SubmissionTransition{
			SubmissionID: s.ID,
			TemplateID:   s.TemplateID,
			FromStatus:   s.Status,
			ChangedBy:    actorID,
			Reason:       "draft deleted",
		},
	}
}
