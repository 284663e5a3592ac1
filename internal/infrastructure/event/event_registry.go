package event

import (
	"github.com/workforce/backend/internal/domain/form"
)

// RegisterAllEvents registers every form event with the serializer so the
// outbox processor can decode stored payloads
func RegisterAllEvents(serializer *EventSerializer) {
	// Templates
	serializer.Register(form.EventTypeFormTemplateCreated, &form.FormTemplateCreatedEvent{})
	serializer.Register(form.EventTypeFormTemplateUpdated, &form.FormTemplateUpdatedEvent{})
	serializer.Register(form.EventTypeFormTemplateStatusChanged, &form.FormTemplateStatusChangedEvent{})

	// Submissions
	serializer.Register(form.EventTypeSubmissionDraftCreated, &form.SubmissionDraftCreatedEvent{})
	serializer.Register(form.EventTypeSubmissionSubmitted, &form.SubmissionSubmittedEvent{})
	serializer.Register(form.EventTypeSubmissionDecided, &form.SubmissionDecidedEvent{})
	serializer.Register(form.EventTypeSubmissionReopened, &form.SubmissionReopenedEvent{})
	serializer.Register(form.EventTypeSubmissionDraftDeleted, &form.SubmissionDraftDeletedEvent{})
}
