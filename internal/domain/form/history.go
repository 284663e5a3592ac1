package form

import (
	"time"

	"github.com/google/uuid"
)

// StatusHistoryEntry records one status change of a submission.
// Entries are append only.
type StatusHistoryEntry struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	SubmissionID uuid.UUID
	EventID      uuid.UUID
	FromStatus   SubmissionStatus // empty for the first entry
	ToStatus     SubmissionStatus
	ChangedBy    string
	Reason       string
	OccurredAt   time.Time
}

// NewStatusHistoryEntry builds an entry from a submission event
func NewStatusHistoryEntry(evt SubmissionTransitionEvent) StatusHistoryEntry {
	tr := evt.Transition()
	return StatusHistoryEntry{
		ID:           uuid.New(),
		TenantID:     evt.TenantID(),
		SubmissionID: tr.SubmissionID,
		EventID:      evt.EventID(),
		FromStatus:   tr.FromStatus,
		ToStatus:     tr.ToStatus,
		ChangedBy:    tr.ChangedBy,
		Reason:       tr.Reason,
		OccurredAt:   evt.OccurredAt(),
	}
}
